package usecase

import "errors"

// Sentinel errors shared by all use cases. Handlers map these to HTTP
// statuses; wrap them with fmt.Errorf("%w: ...") to add detail.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
