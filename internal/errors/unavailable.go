package errors

import (
	stdErrors "errors"
	"fmt"
)

// UnavailableError is returned when every configured book source failed for
// a search. It is terminal for the search session.
type UnavailableError struct {
	Primary  error
	Fallback error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("both sources unavailable (primary: %v; fallback: %v)", e.Primary, e.Fallback)
}

// Unwrap exposes both underlying causes to errors.Is and errors.As.
func (e *UnavailableError) Unwrap() []error {
	return []error{e.Primary, e.Fallback}
}

// NewUnavailableError creates an UnavailableError from the primary and fallback failures.
func NewUnavailableError(primary, fallback error) *UnavailableError {
	return &UnavailableError{Primary: primary, Fallback: fallback}
}

// IsUnavailableError reports whether err is an UnavailableError (even when wrapped).
func IsUnavailableError(err error) bool {
	var unavailable *UnavailableError
	return stdErrors.As(err, &unavailable)
}
