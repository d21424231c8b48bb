package loan

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("loan not found")
	ErrInvalidState = errors.New("loan is not in an editable state")
	ErrStorage      = errors.New("storage failure")
)

// ValidationError carries the offending field so boundaries can build a
// structured error payload instead of matching message text.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
