package compress

import (
	"errors"
	"net/http"
)

// Domain errors for compression operations.
var (
	ErrInvalidOptions   = errors.New("invalid compression options")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrInvalidFile      = errors.New("invalid or unreadable file")
	ErrFileTooLarge     = errors.New("file exceeds maximum upload size")
)

// MapHTTPStatus maps domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidOptions) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrUnsupportedMedia) {
		return http.StatusUnsupportedMediaType
	}
	if errors.Is(err, ErrInvalidFile) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}
