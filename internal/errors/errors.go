// Package errors provides centralized error definitions and error handling
// utilities for the spoolio codebase. It defines domain-specific errors,
// semantic error types, error constructors with context wrapping, and
// error classification helpers.
//
// # Error Types
//
// Domain-specific errors represent errors from specific subsystems:
//   - SpoolError: errors opening or operating on a spool directory
//   - StateError: an operation applied to a transaction in the wrong state
//   - KeyError: a caller-supplied element key that cannot name a file
//
// Semantic errors represent common error conditions:
//   - NotFoundError: an element does not exist in any queried state
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewSpoolError("open spool root", baseErr).WithPath("/var/spool/q")
//	err := errors.NewStateError("commit", "cur")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrSpoolEmpty) { ... }
//
//	var stateErr *errors.StateError
//	if errors.As(err, &stateErr) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

var (
	// ErrSpoolEmpty indicates that Pick found no claimable element. This
	// is a normal outcome for polling consumers, not a failure.
	ErrSpoolEmpty = New("no spool elements available")
	// ErrInvalidTransition indicates a commit or rollback was applied to
	// a transaction whose state does not permit it. Always a programming
	// error; never retried.
	ErrInvalidTransition = New("invalid transaction state transition")
	// ErrNotDirectory indicates the given spool root exists but is not a
	// directory.
	ErrNotDirectory = New("spool root is not a directory")
	// ErrSpoolClosed indicates an operation on a spool whose directory
	// handles have been released.
	ErrSpoolClosed = New("spool is closed")
	// ErrKeyNotFound indicates a delete or lookup named an element that
	// is not present in any of the queried states.
	ErrKeyNotFound = New("spool element not found")
)

// -----------------------------------------------------------------------------
// Base Error
// -----------------------------------------------------------------------------

// baseError provides the common fields shared by all domain error types.
type baseError struct {
	message    string
	cause      error
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool { return e.retryable }

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool { return e.userFacing }

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// SpoolError represents an I/O failure while opening or operating on a
// spool directory. The underlying platform error is preserved so callers
// can decide retry policy.
//
// Example:
//
//	err := errors.NewSpoolError("link element into wip", unixErr).WithPath("/var/spool/q")
type SpoolError struct {
	baseError
	Path string
}

// NewSpoolError creates a SpoolError with a message and optional cause.
func NewSpoolError(message string, cause error) *SpoolError {
	return &SpoolError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			retryable:  true,
			userFacing: false,
		},
	}
}

// WithPath attaches the spool root path to the error.
func (e *SpoolError) WithPath(path string) *SpoolError {
	e.Path = path
	return e
}

// Error returns the error message.
func (e *SpoolError) Error() string {
	if e.Path != "" {
		if e.cause != nil {
			return fmt.Sprintf("spool %s: %s: %v", e.Path, e.message, e.cause)
		}
		return fmt.Sprintf("spool %s: %s", e.Path, e.message)
	}
	return e.baseError.Error()
}

// StateError represents a commit or rollback applied to a transaction
// whose lifecycle state does not permit that edge. It always wraps
// ErrInvalidTransition.
type StateError struct {
	baseError
	Op     string // "commit" or "rollback"
	Status string // the transaction's state at the time of the call
}

// NewStateError creates a StateError for the given operation and state.
func NewStateError(op, status string) *StateError {
	return &StateError{
		baseError: baseError{
			message:    fmt.Sprintf("cannot %s a transaction in state %s", op, status),
			cause:      ErrInvalidTransition,
			retryable:  false,
			userFacing: true,
		},
		Op:     op,
		Status: status,
	}
}

// KeyError represents a caller-supplied key that cannot be used as an
// element filename.
type KeyError struct {
	baseError
	Key string
}

// NewKeyError creates a KeyError for the offending key.
func NewKeyError(key, reason string) *KeyError {
	return &KeyError{
		baseError: baseError{
			message:    fmt.Sprintf("invalid key %q: %s", key, reason),
			retryable:  false,
			userFacing: true,
		},
		Key: key,
	}
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError indicates an element is not present in any queried state.
// It wraps ErrKeyNotFound.
type NotFoundError struct {
	baseError
	Key string
}

// NewNotFoundError creates a NotFoundError for the given element key.
func NewNotFoundError(key string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("element '%s' not found", key),
			cause:      ErrKeyNotFound,
			retryable:  false,
			userFacing: true,
		},
		Key: key,
	}
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// classifier is implemented by all domain error types.
type classifier interface {
	IsRetryable() bool
	IsUserFacing() bool
}

// IsRetryable reports whether err (or any error in its chain) is a
// transient failure that may succeed on retry.
func IsRetryable(err error) bool {
	var c classifier
	if As(err, &c) {
		return c.IsRetryable()
	}
	return false
}

// IsUserFacing reports whether err carries a message safe to display to
// users.
func IsUserFacing(err error) bool {
	var c classifier
	if As(err, &c) {
		return c.IsUserFacing()
	}
	return false
}
