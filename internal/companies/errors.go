package companies

import (
	"errors"
	"net/http"
)

// Domain errors for company operations.
var (
	ErrNotFound       = errors.New("company not found")
	ErrDuplicate      = errors.New("company already exists")
	ErrInvalidCommand = errors.New("invalid company command")
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
