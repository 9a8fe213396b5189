package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewSelectionError("column index 7 is out of range"),
			expected: "[SELECTION] column index 7 is out of range",
		},
		{
			name:     "with cause",
			err:      NewParsingError("failed to read csv", fmt.Errorf("bare quote")),
			expected: "[PARSING] failed to read csv: bare quote",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("failed to write output", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeSelection, Message: "bad"}
	err.WithContext("token", "x").WithContext("index", 3)

	assert.Equal(t, "x", err.Context["token"])
	assert.Equal(t, 3, err.Context["index"])
}

func TestTypeOf(t *testing.T) {
	wrapped := fmt.Errorf("transform: %w", NewMethodError("unknown transform"))

	assert.Equal(t, ErrTypeMethod, TypeOf(wrapped))
	assert.True(t, IsType(wrapped, ErrTypeMethod))
	assert.False(t, IsType(wrapped, ErrTypeSelection))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "column \"x\" does not exist", Message(NewSelectionError("column \"x\" does not exist")))
	assert.Equal(t, "read failed: eof", Message(NewParsingError("read failed", errors.New("eof"))))
	assert.Equal(t, "plain", Message(errors.New("plain")))
}

func TestConstructors(t *testing.T) {
	nf := NewNotFoundError("data.csv", nil)
	assert.Equal(t, ErrTypeNotFound, nf.Type)
	assert.Equal(t, "data.csv", nf.Context["path"])
	assert.Contains(t, nf.Message, "does not exist")

	uf := NewUnsupportedFormatError(".txt", []string{".csv", ".xlsx"})
	require.Equal(t, ErrTypeUnsupportedFormat, uf.Type)
	assert.Contains(t, uf.Message, ".txt")
	assert.Equal(t, ".txt", uf.Context["extension"])

	assert.Equal(t, ErrTypeConfig, NewConfigError("bad", nil).Type)
	assert.Equal(t, ErrTypeValidation, NewAppValidationError("bad").Type)
	assert.Equal(t, ErrTypeTransform, NewTransformError("bad").Type)
}
