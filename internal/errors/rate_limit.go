package errors

import (
	stdErrors "errors"
	"fmt"
	"time"
)

// RateLimitError represents a provider refusing a request because of rate limiting
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", e.Message, e.RetryAfter)
	}
	return e.Message
}

// NewRateLimitError creates a new RateLimitError with the given message
func NewRateLimitError(message string) *RateLimitError {
	return &RateLimitError{Message: message}
}

// NewRateLimitErrorWithRetry creates a RateLimitError carrying the provider's
// requested back-off.
func NewRateLimitErrorWithRetry(message string, retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{Message: message, RetryAfter: retryAfter}
}

// IsRateLimitError reports whether err is a RateLimitError (even when wrapped).
func IsRateLimitError(err error) bool {
	var rateLimitErr *RateLimitError
	return stdErrors.As(err, &rateLimitErr)
}

// RetryAfter returns the back-off requested by a RateLimitError in err's
// chain. It reports false when there is none or no duration was given.
func RetryAfter(err error) (time.Duration, bool) {
	var rateLimitErr *RateLimitError
	if !stdErrors.As(err, &rateLimitErr) || rateLimitErr.RetryAfter <= 0 {
		return 0, false
	}
	return rateLimitErr.RetryAfter, true
}
