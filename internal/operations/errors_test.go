package operations

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "dhsclean/internal/errors"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *OperationError
		want string
	}{
		{
			name: "validation",
			err:  NewValidationError("filter_rows", "raw table not loaded"),
			want: "[validation] filter_rows: raw table not loaded",
		},
		{
			name: "execution with cause",
			err:  NewExecutionError("load_raw", errors.New("disk error")),
			want: "[execution] load_raw: step execution failed: disk error",
		},
		{
			name: "without step",
			err:  &OperationError{Type: ErrorTypeExecution, Message: "failed"},
			want: "[execution] failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}

	var nilErr *OperationError
	assert.Equal(t, "unknown operation error", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "load_raw"))

	cause := apperrors.NewSchemaMismatchError("Men_Overweight_Pct")
	wrapped := WrapError(cause, "bind_output")

	step, ok := FailedStep(wrapped)
	require.True(t, ok)
	assert.Equal(t, "bind_output", step)
	assert.True(t, apperrors.IsType(wrapped, apperrors.ErrTypeSchemaMismatch))

	existing := NewValidationError("", "bad input")
	assert.Same(t, existing, WrapError(existing, "filter_rows"))
	assert.Equal(t, "filter_rows", existing.Step)

	outer := fmt.Errorf("run: %w", NewValidationError("derive_fields", "x"))
	step, ok = FailedStep(outer)
	require.True(t, ok)
	assert.Equal(t, "derive_fields", step)

	_, ok = FailedStep(errors.New("plain"))
	assert.False(t, ok)
}
