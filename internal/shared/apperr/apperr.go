package apperr

import (
	"errors"
	"net/http"
)

// Error kinds shared by every bounded context. Domain errors wrap exactly one of them so
// infra layers can translate without knowing each sentinel.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidState  = errors.New("invalid state")
	ErrValidation    = errors.New("validation failed")
	ErrAuthorization = errors.New("not authorized")
	ErrConflict      = errors.New("conflict")
)

// Error is a domain error tagged with its kind
type Error struct {
	kind error
	msg  string
}

// New creates a sentinel error of the given kind. errors.Is matches both the sentinel itself
// and its kind.
func New(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// Kind returns the kind wrapped by err, or nil when err carries none.
func Kind(err error) error {
	for _, k := range []error{ErrNotFound, ErrInvalidState, ErrValidation, ErrAuthorization, ErrConflict} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// HTTPStatus maps an error to the status code the HTTP layer should answer with.
func HTTPStatus(err error) int {
	switch Kind(err) {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrInvalidState:
		return http.StatusUnprocessableEntity
	case ErrValidation:
		return http.StatusBadRequest
	case ErrAuthorization:
		return http.StatusForbidden
	case ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
