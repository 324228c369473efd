package errors

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the front door. Handlers map these to responses with Is.
var (
	// Caller errors, returned before the identity authority is contacted
	ErrValidation            = errors.New("validation error")
	ErrPreconditionFailed    = errors.New("precondition failed")
	ErrUnrecognizedTokenType = errors.New("unrecognized token type")

	// Identity authority outcomes
	ErrAuthentication = errors.New("authentication failed")
	ErrService        = errors.New("identity service error")
	ErrDelivery       = errors.New("login link delivery failed")

	// Lookup errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Kindf builds a new error of the given kind with a formatted message
func Kindf(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
