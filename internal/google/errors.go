package google

import (
	"errors"
	"fmt"
)

// ErrConsentRequired indicates that no usable cached credentials exist and the
// interactive consent flow has to be run (calchat auth).
var ErrConsentRequired = errors.New("interactive consent required, run: calchat auth")

// Error represents an authentication failure.
type Error struct {
	// Op is the operation that failed (e.g., "token", "refresh", "exchange")
	Op string

	// Account is the token cache account the operation was for
	Account string

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Account != "" {
		return fmt.Sprintf("google auth %s (account: %s): %v", e.Op, e.Account, e.Err)
	}
	return fmt.Sprintf("google auth %s: %v", e.Op, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is an authentication failure from this package.
func IsAuthError(err error) bool {
	var authErr *Error
	return errors.As(err, &authErr)
}
