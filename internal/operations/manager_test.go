package operations

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestManager(t *testing.T, steps ...Step) (*Manager, *tracetest.SpanRecorder) {
	t.Helper()
	r := NewRegistry()
	for _, s := range steps {
		require.NoError(t, r.Register(s))
	}
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return NewManager(r, nil, tp.Tracer(TracerName), nil), recorder
}

func TestManager_ExecuteInOrder(t *testing.T) {
	var calls []string
	record := func(id string) *funcStep {
		return newFuncStep(id, func(ctx context.Context, state *OperationState) error {
			calls = append(calls, id)
			return nil
		})
	}

	m, recorder := newTestManager(t, record("first"), record("second"), record("third"))
	state := NewOperationState("run-1", "raw.csv")

	require.NoError(t, m.Execute(context.Background(), state))

	assert.Equal(t, []string{"first", "second", "third"}, calls)
	assert.Equal(t, OperationStatusCompleted, state.Status)
	for _, s := range state.Steps() {
		assert.Equal(t, StepStatusCompleted, s.Status, s.ID)
	}

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.ElementsMatch(t, []string{"step.first", "step.second", "step.third", "pipeline.execute"}, names)
}

func TestManager_StopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	ran := false

	m, recorder := newTestManager(t,
		newFuncStep("ok", nil),
		newFuncStep("fails", func(context.Context, *OperationState) error { return boom }),
		newFuncStep("after", func(context.Context, *OperationState) error { ran = true; return nil }),
	)
	state := NewOperationState("run-2", "raw.csv")

	err := m.Execute(context.Background(), state)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, ran)

	step, ok := FailedStep(err)
	require.True(t, ok)
	assert.Equal(t, "fails", step)

	assert.Equal(t, OperationStatusFailed, state.Status)
	assert.Equal(t, StepStatusCompleted, state.GetStep("ok").Status)
	assert.Equal(t, StepStatusFailed, state.GetStep("fails").Status)
	assert.Equal(t, StepStatusSkipped, state.GetStep("after").Status)

	for _, span := range recorder.Ended() {
		if span.Name() == "step.fails" {
			assert.Equal(t, codes.Error, span.Status().Code)
		}
	}
}

func TestManager_ValidationFailure(t *testing.T) {
	executed := false
	step := newFuncStep("needs_input", func(context.Context, *OperationState) error { executed = true; return nil })
	step.validate = func(*OperationState) error { return NewValidationError("", "input missing") }

	m, _ := newTestManager(t, step)
	err := m.Execute(context.Background(), NewOperationState("run-3", ""))

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrorTypeValidation, opErr.Type)
	assert.Equal(t, "needs_input", opErr.Step)
	assert.False(t, executed)
}

func TestManager_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m, _ := newTestManager(t, newFuncStep("a", nil), newFuncStep("b", nil))
	state := NewOperationState("run-4", "raw.csv")

	err := m.Execute(ctx, state)
	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrorTypeCancellation, opErr.Type)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StepStatusSkipped, state.GetStep("a").Status)
	assert.Equal(t, StepStatusSkipped, state.GetStep("b").Status)
}

func TestManager_NilTracer(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newFuncStep("only", nil)))

	m := NewManager(r, nil, nil, nil)
	assert.NoError(t, m.Execute(context.Background(), NewOperationState("run-5", "raw.csv")))
	assert.Same(t, r, m.Registry())
}

func TestOperationState_StepSummaries(t *testing.T) {
	state := NewOperationState("run-6", "raw.csv")
	state.AddStep("a", "Step A").Start()
	state.GetStep("a").Complete()
	state.AddStep("b", "Step B").Skip("not needed")
	state.AddStep("a", "ignored duplicate")

	summaries := state.StepSummaries()
	require.Len(t, summaries, 2)
	assert.Equal(t, "Step A", summaries[0].Name)
	assert.Equal(t, "completed", summaries[0].Status)
	assert.Equal(t, "skipped", summaries[1].Status)
	assert.Equal(t, 0, state.RawRows())
}
