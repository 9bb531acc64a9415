package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuth means the credentials or token were rejected.
	ErrAuth = errors.New("authentication failed")
	// ErrNotFound means the field, asset or dependent list is absent.
	// Callers treat it as a legitimate empty state.
	ErrNotFound = errors.New("not found")
	// ErrExhausted means the asset has no balance left or its object expired.
	ErrExhausted = errors.New("credits used up or package expired")
)

// HTTPError represents a non-2xx HTTP response from the node.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps auth and not-found statuses onto the sentinel errors so callers
// can use errors.Is.
func (e *HTTPError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuth
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusPaymentRequired:
		return ErrExhausted
	}
	return nil
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}
