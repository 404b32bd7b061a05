package calendar

import (
	"errors"
	"fmt"
)

// ErrorType classifies input-validation failures.
type ErrorType string

const (
	ErrInvalidRecurrence ErrorType = "invalid_recurrence"
	ErrInvalidDateRange  ErrorType = "invalid_date_range"
	ErrMalformedKey      ErrorType = "malformed_key"
)

// Error represents a rejected input. These failures are terminal: nothing is
// partially expanded or persisted before they are returned.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsErrorType reports whether err is (or wraps) an Error of the given type.
func IsErrorType(err error, t ErrorType) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Type == t
}
