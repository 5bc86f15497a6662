package apperrors

import "errors"

var (
	// ErrInvalidInput marks validation failures: the caller must correct the request.
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	// ErrStorage marks failures of the persistence layer (I/O, quota, closed handle).
	ErrStorage = errors.New("storage failure")
)

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
