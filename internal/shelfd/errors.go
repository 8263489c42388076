package shelfd

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the backend's machine-readable error envelope. Code and Message
// may be empty when the server returned a non-JSON body.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error renders the most specific description available.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return fmt.Sprintf("api error %s (status %d)", e.Code, e.Status)
	}
	return fmt.Sprintf("api returned status %d", e.Status)
}

// IsNotFound reports whether err represents a 404-class "already gone"
// response. This is the only status distinction the sync layer cares about.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusNotFound || apiErr.Code == "NOT_FOUND"
}

// UserMessage extracts the provider-supplied message from err, falling back
// to the given per-operation message when the error carries none.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
