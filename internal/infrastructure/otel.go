package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"dhsclean/internal/config"
)

const (
	ServiceName = "dhsclean"
	MeterName   = "dhsclean"
)

// Telemetry holds the tracer and meter used by one pipeline run. Metrics
// are collected into a private Prometheus registry so they can be written
// to a textfile when the run ends.
type Telemetry struct {
	Tracer   trace.Tracer
	Meter    metric.Meter
	Metrics  *PipelineMetrics
	Registry *prometheus.Registry

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	traceOut       io.Closer
	logger         *slog.Logger
}

// NewTelemetry initializes tracing and metrics from configuration.
func NewTelemetry(cfg config.TelemetryConfig, version string, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(version),
	)

	t := &Telemetry{logger: logger}

	if err := t.initializeTracing(cfg, res, version); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := t.initializeMetrics(res, version); err != nil {
		_ = t.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Debug("Telemetry initialized",
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metrics_file", cfg.MetricsFile))

	return t, nil
}

// initializeTracing sets up the span exporter
func (t *Telemetry) initializeTracing(cfg config.TelemetryConfig, res *resource.Resource, version string) error {
	var opts []stdouttrace.Option

	switch cfg.TraceExporter {
	case "", "none":
		t.Tracer = noop.NewTracerProvider().Tracer(MeterName)
		return nil
	case "stdout":
		opts = append(opts, stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
	case "file":
		file, err := openLogFile(cfg.TraceFile)
		if err != nil {
			return err
		}
		t.traceOut = file
		opts = append(opts, stdouttrace.WithWriter(file))
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// A batch run is short, so spans are exported synchronously.
	t.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	t.Tracer = t.tracerProvider.Tracer(MeterName, trace.WithInstrumentationVersion(version))
	return nil
}

// initializeMetrics sets up a meter provider backed by a Prometheus registry
func (t *Telemetry) initializeMetrics(res *resource.Resource, version string) error {
	t.Registry = prometheus.NewRegistry()

	exporter, err := otelprom.New(
		otelprom.WithRegisterer(t.Registry),
		otelprom.WithoutScopeInfo(),
		otelprom.WithoutTargetInfo(),
	)
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	t.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	t.Meter = t.meterProvider.Meter(MeterName, metric.WithInstrumentationVersion(version))

	t.Metrics, err = CreatePipelineMetrics(t.Meter)
	return err
}

// WriteMetrics writes the current metric values to path in the Prometheus
// text exposition format. An empty path is a no-op.
func (t *Telemetry) WriteMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, t.Registry); err != nil {
		return fmt.Errorf("failed to write metrics file %s: %w", path, err)
	}
	t.logger.Debug("Metrics written", slog.String("path", path))
	return nil
}

// Shutdown flushes and releases the providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.tracerProvider != nil {
		errs = append(errs, t.tracerProvider.Shutdown(ctx))
	}
	if t.meterProvider != nil {
		errs = append(errs, t.meterProvider.Shutdown(ctx))
	}
	if t.traceOut != nil {
		errs = append(errs, t.traceOut.Close())
		t.traceOut = nil
	}
	return errors.Join(errs...)
}

// PipelineMetrics holds the cleaning run's instruments
type PipelineMetrics struct {
	RowsRead      metric.Int64Counter
	RowsRemoved   metric.Int64Counter
	RowsWritten   metric.Int64Counter
	StepDuration  metric.Float64Histogram
	StepsTotal    metric.Int64Counter
	MissingValues metric.Int64Counter
}

// CreatePipelineMetrics creates the cleaning run's instruments
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsRead, err := meter.Int64Counter(
		"dhsclean_rows_read",
		metric.WithDescription("Data rows read from the raw export"),
	)
	if err != nil {
		return nil, err
	}

	rowsRemoved, err := meter.Int64Counter(
		"dhsclean_rows_removed",
		metric.WithDescription("Rows removed as contamination, by predicate"),
	)
	if err != nil {
		return nil, err
	}

	rowsWritten, err := meter.Int64Counter(
		"dhsclean_rows_written",
		metric.WithDescription("Rows written to the cleaned table"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"dhsclean_step_duration_seconds",
		metric.WithDescription("Pipeline step duration in seconds"),
	)
	if err != nil {
		return nil, err
	}

	stepsTotal, err := meter.Int64Counter(
		"dhsclean_steps",
		metric.WithDescription("Pipeline steps executed, by status"),
	)
	if err != nil {
		return nil, err
	}

	missingValues, err := meter.Int64Counter(
		"dhsclean_missing_values",
		metric.WithDescription("Missing metric values in the cleaned table, by column"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsRead:      rowsRead,
		RowsRemoved:   rowsRemoved,
		RowsWritten:   rowsWritten,
		StepDuration:  stepDuration,
		StepsTotal:    stepsTotal,
		MissingValues: missingValues,
	}, nil
}

// RecordRemoved counts rows removed by one contamination predicate.
func (m *PipelineMetrics) RecordRemoved(ctx context.Context, predicate string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsRemoved.Add(ctx, int64(n), metric.WithAttributes(attribute.String("predicate", predicate)))
}

// RecordStep records one step execution.
func (m *PipelineMetrics) RecordStep(ctx context.Context, step, status string, seconds float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("step", step), attribute.String("status", status))
	m.StepDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String("step", step)))
	m.StepsTotal.Add(ctx, 1, attrs)
}

// RecordMissing counts missing values of one output column.
func (m *PipelineMetrics) RecordMissing(ctx context.Context, column string, n int) {
	if m == nil {
		return
	}
	m.MissingValues.Add(ctx, int64(n), metric.WithAttributes(attribute.String("column", column)))
}

// RecordWritten counts rows persisted to the cleaned output.
func (m *PipelineMetrics) RecordWritten(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.RowsWritten.Add(ctx, int64(n))
}
