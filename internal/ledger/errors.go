// internal/ledger/errors.go
package ledger

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the {status, message} shape the ledger API returns for non-2xx responses.
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ledger api: status %d", e.Status)
	}
	return fmt.Sprintf("ledger api: status %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0 for transport failures.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the ledger API.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}
