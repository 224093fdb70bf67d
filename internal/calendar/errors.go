package calendar

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// ErrMalformedTimeRange indicates an event or query where the end does not
// come after the start. Rejected locally, before any remote call.
var ErrMalformedTimeRange = errors.New("end time must be after start time")

// ErrorKind classifies a calendar API failure.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindPermissionDenied ErrorKind = "permission_denied"
	KindRateLimited      ErrorKind = "rate_limited"
	KindInvalidInput     ErrorKind = "invalid_input"
	KindAuth             ErrorKind = "auth"
	KindUnavailable      ErrorKind = "unavailable"
	KindUnknown          ErrorKind = "unknown"
)

// Error represents a failure of one calendar operation.
type Error struct {
	// Op is the operation that failed (e.g., "list", "create", "update", "delete")
	Op string

	// Kind classifies the failure for callers that branch on it
	Kind ErrorKind

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("calendar %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the error kind of err, or KindUnknown for foreign errors.
func KindOf(err error) ErrorKind {
	var calErr *Error
	if errors.As(err, &calErr) {
		return calErr.Kind
	}
	return KindUnknown
}

// wrapAPIError maps a googleapi error to a typed *Error for the operation.
func wrapAPIError(op string, err error) error {
	if err == nil {
		return nil
	}

	kind := KindUnknown
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound, http.StatusGone:
			kind = KindNotFound
		case http.StatusForbidden:
			kind = KindPermissionDenied
		case http.StatusTooManyRequests:
			kind = KindRateLimited
		case http.StatusBadRequest:
			kind = KindInvalidInput
		case http.StatusUnauthorized:
			kind = KindAuth
		case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
			kind = KindUnavailable
		}
	}

	return &Error{Op: op, Kind: kind, Err: err}
}
