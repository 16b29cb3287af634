package operations

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"dhsclean/internal/infrastructure"
)

// TracerName is the instrumentation scope of step spans
const TracerName = "dhsclean.operations"

// Manager runs the registered steps in order. The first failing step aborts
// the run and the steps after it are marked skipped.
type Manager struct {
	registry *Registry
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *infrastructure.PipelineMetrics
}

// NewManager creates a step manager. A nil tracer disables spans and nil
// metrics disable step metrics.
func NewManager(registry *Registry, logger *slog.Logger, tracer trace.Tracer, metrics *infrastructure.PipelineMetrics) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(TracerName)
	}
	return &Manager{
		registry: registry,
		logger:   logger,
		tracer:   tracer,
		metrics:  metrics,
	}
}

// Registry returns the manager's step registry
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Execute runs every registered step against state.
func (m *Manager) Execute(ctx context.Context, state *OperationState) error {
	steps := m.registry.List()
	for _, step := range steps {
		state.AddStep(step.ID(), step.Name())
	}

	ctx, span := m.tracer.Start(ctx, "pipeline.execute",
		trace.WithAttributes(
			attribute.String("operation.id", state.ID),
			attribute.String("source.path", state.SourcePath),
			attribute.Int("step.count", len(steps)),
		))
	defer span.End()

	state.Start()
	m.logger.InfoContext(ctx, "Pipeline started",
		slog.String("operation_id", state.ID),
		slog.Int("step_count", len(steps)))

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			opErr := NewCancellationError(step.ID(), err)
			m.skipRemaining(state, steps[i:], "operation was cancelled")
			state.Fail(opErr)
			span.SetStatus(codes.Error, opErr.Error())
			return opErr
		}

		if err := m.executeStep(ctx, state, step, i+1, len(steps)); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			state.Fail(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	state.Complete()
	m.logger.InfoContext(ctx, "Pipeline completed",
		slog.String("operation_id", state.ID),
		slog.Int("rows_in", state.RawRows()),
		slog.Int("rows_out", state.Table.Len()))
	return nil
}

// executeStep runs one step inside its own span
func (m *Manager) executeStep(ctx context.Context, state *OperationState, step Step, number, total int) error {
	stepState := state.GetStep(step.ID())

	ctx, span := m.tracer.Start(ctx, "step."+step.ID(),
		trace.WithAttributes(
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
			attribute.Int("step.number", number),
		))
	defer span.End()

	m.logger.DebugContext(ctx, "Executing step",
		slog.String("step", step.ID()),
		slog.Int("step_number", number),
		slog.Int("total_steps", total))

	stepState.Start()

	err := step.Validate(state)
	if err == nil {
		err = step.Execute(ctx, state)
	}
	if err != nil {
		err = WrapError(err, step.ID())
		stepState.Fail(err)
		m.metrics.RecordStep(ctx, step.ID(), string(StepStatusFailed), stepState.Duration().Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.logger.ErrorContext(ctx, "Step failed",
			slog.String("step", step.ID()),
			slog.String("error", err.Error()))
		return err
	}

	stepState.Complete()
	m.metrics.RecordStep(ctx, step.ID(), string(stepState.Status), stepState.Duration().Seconds())
	m.logger.DebugContext(ctx, "Step completed",
		slog.String("step", step.ID()),
		slog.Duration("duration", stepState.Duration()),
		slog.String("result", stepState.Message))
	return nil
}

// skipRemaining marks steps that will not run
func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStep(step.ID()); s != nil && s.Status == StepStatusPending {
			s.Skip(reason)
		}
	}
}
