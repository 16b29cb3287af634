package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeSourceUnavailable: the raw export is missing or unreadable.
	ErrTypeSourceUnavailable ErrorType = "SOURCE_UNAVAILABLE"
	// ErrTypeMalformedSource: the raw export is readable but lacks required columns.
	ErrTypeMalformedSource ErrorType = "MALFORMED_SOURCE"
	// ErrTypeSchemaMismatch: an expected column is absent when the output schema is bound.
	ErrTypeSchemaMismatch ErrorType = "SCHEMA_MISMATCH"
	ErrTypeStorage        ErrorType = "STORAGE"
	ErrTypeValidation     ErrorType = "VALIDATION"
	ErrTypeConfig         ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewSourceUnavailableError reports a raw export that cannot be opened or read.
func NewSourceUnavailableError(path string, cause error) *AppError {
	return NewAppError(ErrTypeSourceUnavailable, fmt.Sprintf("raw source %s is unavailable", path), cause).
		WithContext("path", path)
}

// NewMalformedSourceError reports a raw export whose header cannot be bound.
func NewMalformedSourceError(message string) *AppError {
	return NewAppError(ErrTypeMalformedSource, message, nil)
}

// NewSchemaMismatchError reports a column that an upstream stage should have provided.
func NewSchemaMismatchError(column string) *AppError {
	return NewAppError(ErrTypeSchemaMismatch, fmt.Sprintf("expected column %q is missing", column), nil).
		WithContext("column", column)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the ErrorType of the first AppError in err's chain.
func TypeOf(err error) (ErrorType, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type, true
	}
	return "", false
}

// IsType reports whether err's chain carries an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	t, ok := TypeOf(err)
	return ok && t == errType
}
