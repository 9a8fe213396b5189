package operations

import (
	"context"
	"errors"
	"fmt"

	apperrors "tabprep/internal/errors"
)

// ErrorType classifies why a run stopped
type ErrorType string

const (
	// ErrorTypeInput covers problems with what the caller asked for: paths,
	// formats, method and column choices.
	ErrorTypeInput        ErrorType = "input"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeCancellation ErrorType = "cancellation"
)

// OperationError records the step a run failed in
type OperationError struct {
	Type    ErrorType
	Step    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e == nil {
		return "unknown operation error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Step, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Step, e.Message)
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewStepError wraps the error a step returned and classifies it
func NewStepError(step string, cause error) *OperationError {
	return &OperationError{
		Type:    classify(cause),
		Step:    step,
		Message: "step failed",
		Cause:   cause,
	}
}

// NewCancellationError reports a run stopped before step could start
func NewCancellationError(step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeCancellation,
		Step:    step,
		Message: "operation was cancelled",
		Cause:   cause,
	}
}

func classify(err error) ErrorType {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeCancellation
	}
	switch apperrors.TypeOf(err) {
	case apperrors.ErrTypeNotFound, apperrors.ErrTypeUnsupportedFormat,
		apperrors.ErrTypeSelection, apperrors.ErrTypeMethod,
		apperrors.ErrTypeValidation, apperrors.ErrTypeTransform:
		return ErrorTypeInput
	}
	return ErrorTypeExecution
}

// GetErrorType returns the type of the first OperationError in err's chain
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ""
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Type
	}
	return ErrorTypeExecution
}

// FailedStep returns the step a run failed in, or ""
func FailedStep(err error) string {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Step
	}
	return ""
}
