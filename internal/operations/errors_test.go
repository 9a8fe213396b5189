package operations

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "tabprep/internal/errors"
)

func TestNewStepErrorClassification(t *testing.T) {
	tests := []struct {
		name  string
		cause error
		want  ErrorType
	}{
		{"selection", apperrors.NewSelectionError("no columns selected"), ErrorTypeInput},
		{"method", apperrors.NewMethodError("please enter a number"), ErrorTypeInput},
		{"not found", apperrors.NewNotFoundError("x.csv", nil), ErrorTypeInput},
		{"wrapped format", fmt.Errorf("open: %w", apperrors.NewUnsupportedFormatError(".txt", nil)), ErrorTypeInput},
		{"storage", apperrors.NewStorageError("rename failed", nil), ErrorTypeExecution},
		{"plain", errors.New("fit failed"), ErrorTypeExecution},
		{"cancelled", fmt.Errorf("fit: %w", context.Canceled), ErrorTypeCancellation},
		{"deadline", context.DeadlineExceeded, ErrorTypeCancellation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewStepError("step", tt.cause)
			assert.Equal(t, tt.want, err.Type)
			assert.Equal(t, tt.want, GetErrorType(fmt.Errorf("run: %w", err)))
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestOperationErrorMessages(t *testing.T) {
	err := NewStepError("transform", apperrors.NewSelectionError(`column "x" does not exist`))
	assert.Equal(t, `transform: [SELECTION] column "x" does not exist`, err.Error())
	assert.Equal(t, `column "x" does not exist`, apperrors.Message(err))
	assert.Equal(t, "transform", FailedStep(err))

	cancelled := NewCancellationError("read", context.Canceled)
	assert.Equal(t, ErrorTypeCancellation, cancelled.Type)
	assert.Equal(t, "read: context canceled", cancelled.Error())

	var nilErr *OperationError
	assert.Equal(t, "unknown operation error", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())

	assert.Equal(t, ErrorType(""), GetErrorType(nil))
	assert.Equal(t, ErrorTypeExecution, GetErrorType(errors.New("other")))
	assert.Empty(t, FailedStep(errors.New("other")))
}
