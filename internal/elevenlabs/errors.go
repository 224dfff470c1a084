package elevenlabs

import (
	"errors"
	"fmt"
)

// ErrNotConfigured indicates no vendor API key is present in the service
// configuration. Vendor routes report this as an internal error so the
// dashboard shows a single fixed failure instead of leaking key state.
var ErrNotConfigured = errors.New("elevenlabs api key not configured")

// APIError represents a non-2xx response from the vendor API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("elevenlabs api error (%d): %s", e.Status, e.Message)
}
