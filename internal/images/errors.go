package images

import "errors"

// Request-scoped error kinds. The HTTP layer maps these to status codes:
// ErrValidation -> 400, ErrPermissionDenied -> 403, ErrTokenExpired -> 403
// with a "Token expired" body, ErrNotFound -> 404.
var (
	ErrValidation       = errors.New("validation failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrTokenExpired     = errors.New("token expired")
	ErrNotFound         = errors.New("not found")
)
