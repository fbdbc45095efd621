// Package apperrors defines the error taxonomy shared by the catalog,
// the management services and the plugin lifecycle coordinator.
package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Every *Error wraps exactly one of these so callers can
// branch with errors.Is.
var (
	ErrConflict              = errors.New("conflict")
	ErrImmutable             = errors.New("immutable")
	ErrReferentialConstraint = errors.New("referential constraint")
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("validation error")
	ErrSyncFailure           = errors.New("plugin permission sync failure")
	ErrCacheWriteFailure     = errors.New("cache write failure")
	ErrCacheAbsent           = errors.New("cache absent")
)

// Error carries a caller-facing message together with its kind and an
// optional underlying cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

// Error implements error.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

func Conflict(format string, args ...any) *Error {
	return newError(ErrConflict, nil, format, args...)
}

func Immutable(format string, args ...any) *Error {
	return newError(ErrImmutable, nil, format, args...)
}

func Referential(format string, args ...any) *Error {
	return newError(ErrReferentialConstraint, nil, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newError(ErrNotFound, nil, format, args...)
}

func Validation(cause error, format string, args ...any) *Error {
	return newError(ErrValidation, cause, format, args...)
}

func SyncFailure(cause error, format string, args ...any) *Error {
	return newError(ErrSyncFailure, cause, format, args...)
}

func CacheWriteFailure(cause error, format string, args ...any) *Error {
	return newError(ErrCacheWriteFailure, cause, format, args...)
}

// Message returns the caller-facing message of err when it is an *Error,
// and err.Error() otherwise.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
