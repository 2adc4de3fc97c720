// Package errors provides error types and error codes for the catalog package.
// This is a leaf package with no internal dependencies, designed to be imported
// by the catalog interface and every store implementation without causing
// circular imports.
//
// Import graph: errors <- catalog <- store implementations <- field
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents the type of error that occurred.
type ErrorCode int

const (
	// ErrNotFound indicates the requested folder or asset does not exist.
	ErrNotFound ErrorCode = iota + 1

	// ErrAlreadyExists indicates a folder with the same (parent, name) or an
	// asset with the same (folder, filename) already exists. For folder
	// creation this is the expected race outcome, not a failure: callers
	// recover by treating the existing entry as authoritative.
	ErrAlreadyExists

	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument

	// ErrIOError indicates a persistence or storage failure.
	ErrIOError

	// ErrClosed indicates the store has been closed.
	ErrClosed
)

// String returns a human-readable name for the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrNotFound:
		return "NotFound"
	case ErrAlreadyExists:
		return "AlreadyExists"
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrIOError:
		return "IOError"
	case ErrClosed:
		return "Closed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(e))
	}
}

// StoreError is the error type returned by catalog store operations.
//
// The Code field allows callers to branch on the failure class without
// string matching; Path carries the folder path or filename involved.
type StoreError struct {
	Code    ErrorCode
	Message string
	Path    string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a StoreError with the same code.
func (e *StoreError) Is(target error) bool {
	var se *StoreError
	if !errors.As(target, &se) {
		return false
	}
	return se.Code == e.Code
}

// IsCode reports whether err is a *StoreError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var se *StoreError
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == code
}

// IsNotFound reports whether err indicates a missing folder or asset.
func IsNotFound(err error) bool {
	return IsCode(err, ErrNotFound)
}

// IsConflict reports whether err indicates a uniqueness violation.
func IsConflict(err error) bool {
	return IsCode(err, ErrAlreadyExists)
}

// NewNotFoundError creates a StoreError for a missing folder or asset.
func NewNotFoundError(path, entityType string) *StoreError {
	return &StoreError{
		Code:    ErrNotFound,
		Message: entityType + " not found",
		Path:    path,
	}
}

// NewConflictError creates a StoreError for a uniqueness violation.
func NewConflictError(path string) *StoreError {
	return &StoreError{
		Code:    ErrAlreadyExists,
		Message: "already exists",
		Path:    path,
	}
}

// NewInvalidArgumentError creates a StoreError for invalid arguments.
func NewInvalidArgumentError(message string) *StoreError {
	return &StoreError{
		Code:    ErrInvalidArgument,
		Message: message,
	}
}

// NewIOError creates a StoreError wrapping an underlying persistence failure.
func NewIOError(message string, cause error) *StoreError {
	return &StoreError{
		Code:    ErrIOError,
		Message: message,
		Err:     cause,
	}
}
