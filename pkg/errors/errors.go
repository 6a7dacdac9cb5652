// Package errors provides typed errors for the application
package errors

import "errors"

// ErrorType represents the type of error
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeConflict
	ErrorTypePermission
	ErrorTypeInternal
)

// baseError is the base implementation for all error types
type baseError struct {
	msg   string
	cause error
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *baseError) Unwrap() error {
	return e.cause
}

// ValidationError is a user-correctable input error.
// The conversation re-prompts in the same state instead of failing.
type ValidationError struct {
	baseError
}

// NewValidationError creates a new ValidationError
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{baseError{msg: msg}}
}

// NotFoundError represents a missing record
type NotFoundError struct {
	baseError
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(msg string) *NotFoundError {
	return &NotFoundError{baseError{msg: msg}}
}

// ConflictError represents a conflicting state
type ConflictError struct {
	baseError
}

// NewConflictError creates a new ConflictError
func NewConflictError(msg string) *ConflictError {
	return &ConflictError{baseError{msg: msg}}
}

// PermissionError represents an action the user is not allowed to perform
type PermissionError struct {
	baseError
}

// NewPermissionError creates a new PermissionError
func NewPermissionError(msg string) *PermissionError {
	return &PermissionError{baseError{msg: msg}}
}

// InternalError represents a collaborator or infrastructure failure
type InternalError struct {
	baseError
}

// NewInternalError creates a new InternalError
func NewInternalError(msg string) *InternalError {
	return &InternalError{baseError{msg: msg}}
}

// WrapInternal wraps cause into an InternalError with msg as prefix
func WrapInternal(msg string, cause error) *InternalError {
	return &InternalError{baseError{msg: msg, cause: cause}}
}

// WrapValidation wraps cause into a ValidationError with msg as prefix
func WrapValidation(msg string, cause error) *ValidationError {
	return &ValidationError{baseError{msg: msg, cause: cause}}
}

// IsValidationError checks if err or any error it wraps is a ValidationError
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFoundError checks if err or any error it wraps is a NotFoundError
func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConflictError checks if err or any error it wraps is a ConflictError
func IsConflictError(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsPermissionError checks if err or any error it wraps is a PermissionError
func IsPermissionError(err error) bool {
	var target *PermissionError
	return errors.As(err, &target)
}

// IsInternalError checks if err or any error it wraps is an InternalError
func IsInternalError(err error) bool {
	var target *InternalError
	return errors.As(err, &target)
}

// TypeOf classifies err, defaulting to ErrorTypeInternal for untyped errors
func TypeOf(err error) ErrorType {
	switch {
	case IsValidationError(err):
		return ErrorTypeValidation
	case IsNotFoundError(err):
		return ErrorTypeNotFound
	case IsConflictError(err):
		return ErrorTypeConflict
	case IsPermissionError(err):
		return ErrorTypePermission
	default:
		return ErrorTypeInternal
	}
}
