package errors

import (
	stdErrors "errors"
	"fmt"
)

// ProviderError represents a failed call to an external book provider.
// StatusCode is zero when the request never produced an HTTP response.
type ProviderError struct {
	Provider   string
	Op         string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d: %v", e.Provider, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a ProviderError for the given provider operation.
func NewProviderError(provider, op string, statusCode int, err error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Op:         op,
		StatusCode: statusCode,
		Err:        err,
	}
}

// IsProviderError reports whether err is a ProviderError (even when wrapped).
func IsProviderError(err error) bool {
	var providerErr *ProviderError
	return stdErrors.As(err, &providerErr)
}
