package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrNameTooLong  ErrorCode = "NAME_TOO_LONG"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Package errors
	ErrPackageNotFound ErrorCode = "PACKAGE_NOT_FOUND"
	ErrPackageInvalid  ErrorCode = "PACKAGE_INVALID"
	ErrPackageFormat   ErrorCode = "PACKAGE_FORMAT"
	ErrInfoParse       ErrorCode = "INFO_PARSE"
	ErrVersionNotFound ErrorCode = "VERSION_NOT_FOUND"

	// Prerequisite errors
	ErrPrereqParse ErrorCode = "PREREQ_PARSE"
	ErrPrereqUnmet ErrorCode = "PREREQ_UNMET"

	// Lifecycle script errors
	ErrScriptFailed ErrorCode = "SCRIPT_FAILED"

	// FileSystem errors
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
	ErrRemove        ErrorCode = "REMOVE"
	ErrLogWrite      ErrorCode = "LOG_WRITE"
)

// EncapError represents a structured error with code and details
type EncapError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *EncapError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *EncapError) Unwrap() error {
	return e.Wrapped
}

// Is matches any EncapError carrying the same code
func (e *EncapError) Is(target error) bool {
	var targetErr *EncapError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new EncapError with the given code and message
func New(code ErrorCode, message string) *EncapError {
	return &EncapError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new EncapError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *EncapError {
	return &EncapError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an EncapError. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) *EncapError {
	if err == nil {
		return nil
	}
	return &EncapError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *EncapError {
	if err == nil {
		return nil
	}
	return &EncapError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *EncapError) WithDetail(key string, value interface{}) *EncapError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var encapErr *EncapError
	if errors.As(err, &encapErr) {
		return encapErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not an EncapError
func GetErrorCode(err error) ErrorCode {
	var encapErr *EncapError
	if errors.As(err, &encapErr) {
		return encapErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not an EncapError
func GetErrorDetails(err error) map[string]interface{} {
	var encapErr *EncapError
	if errors.As(err, &encapErr) {
		return encapErr.Details
	}
	return nil
}

// Message returns the human readable message of err without its code
// prefix. Errors that are not EncapErrors are rendered with Error().
func Message(err error) string {
	var encapErr *EncapError
	if errors.As(err, &encapErr) {
		if encapErr.Wrapped != nil {
			return encapErr.Message + ": " + Message(encapErr.Wrapped)
		}
		return encapErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
