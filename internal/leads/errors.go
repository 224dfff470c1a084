package leads

import (
	"errors"
	"net/http"
)

// Domain errors for lead operations.
var (
	ErrNotFound       = errors.New("lead not found")
	ErrDuplicate      = errors.New("conversation already recorded")
	ErrInvalidCommand = errors.New("invalid lead command")
)

// MapHTTPStatus maps domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidCommand) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
