package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies failures; the CLI and the viewer map each type to
// a message style and an HTTP status.
type ErrorType string

const (
	ErrTypeNotFound          ErrorType = "NOT_FOUND"
	ErrTypeUnsupportedFormat ErrorType = "UNSUPPORTED_FORMAT"
	ErrTypeSelection         ErrorType = "SELECTION"
	ErrTypeMethod            ErrorType = "METHOD"
	ErrTypeParsing           ErrorType = "PARSING"
	ErrTypeStorage           ErrorType = "STORAGE"
	ErrTypeValidation        ErrorType = "VALIDATION"
	ErrTypeConfig            ErrorType = "CONFIG"
	ErrTypeTransform         ErrorType = "TRANSFORM"
)

// AppError is the error every tabprep package returns for expected failures.
// Context carries the offending identifier, path or value.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext records key=value on e and returns e for chaining
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or "".
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsType reports whether err carries an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}

// Message returns the human-readable message of an AppError without the type prefix.
// Other errors are returned verbatim.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Cause != nil {
			return fmt.Sprintf("%s: %v", appErr.Message, appErr.Cause)
		}
		return appErr.Message
	}
	return err.Error()
}

// NewNotFoundError creates a file-not-found error
func NewNotFoundError(path string, cause error) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("file %s does not exist", path), cause).
		WithContext("path", path)
}

// NewUnsupportedFormatError creates an error for a file extension no reader or writer handles
func NewUnsupportedFormatError(ext string, supported []string) *AppError {
	return NewAppError(ErrTypeUnsupportedFormat,
		fmt.Sprintf("unsupported file format %q; supported: %v", ext, supported), nil).
		WithContext("extension", ext)
}

// NewSelectionError creates an invalid column selection error
func NewSelectionError(message string) *AppError {
	return NewAppError(ErrTypeSelection, message, nil)
}

// NewMethodError creates an invalid transform/method choice error
func NewMethodError(message string) *AppError {
	return NewAppError(ErrTypeMethod, message, nil)
}

// NewParsingError reports a file that exists but cannot be read as a table
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError reports an I/O failure writing or reading a file
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError reports a malformed request or argument
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewTransformError creates an error for input a transform cannot handle
func NewTransformError(message string) *AppError {
	return NewAppError(ErrTypeTransform, message, nil)
}
