package model

import "errors"

// Error taxonomy shared by all controllers. Handlers wrap these with context
// and map them back to HTTP codes via HTTPStatus.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("not authorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state transition")
	ErrValidation   = errors.New("validation failed")
)

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrUnauthorized):
		return 401
	case errors.Is(err, ErrForbidden):
		return 403
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrValidation):
		return 400
	default:
		return 500
	}
}
