package posts

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing or malformed caller input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound means no post exists with the requested id.
	ErrNotFound = errors.New("post not found")
	// ErrForbidden means the caller is not the post's author.
	ErrForbidden = errors.New("not authorized")
)

// ValidationError describes invalid input. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// StorageError wraps a backend failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s post: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }
