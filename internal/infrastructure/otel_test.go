package infrastructure

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dhsclean/internal/config"
)

func TestNewTelemetry_NoTracing(t *testing.T) {
	tel, err := NewTelemetry(config.TelemetryConfig{TraceExporter: "none"}, "test", nil)
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	require.NotNil(t, tel.Tracer)
	require.NotNil(t, tel.Metrics)

	_, span := tel.Tracer.Start(context.Background(), "noop")
	span.End()
	assert.False(t, span.SpanContext().IsValid())
}

func TestNewTelemetry_UnsupportedExporter(t *testing.T) {
	_, err := NewTelemetry(config.TelemetryConfig{TraceExporter: "otlp"}, "test", nil)
	assert.Error(t, err)
}

func TestTelemetry_TraceFile(t *testing.T) {
	traceFile := filepath.Join(t.TempDir(), "trace.json")

	tel, err := NewTelemetry(config.TelemetryConfig{TraceExporter: "file", TraceFile: traceFile}, "test", nil)
	require.NoError(t, err)

	_, span := tel.Tracer.Start(context.Background(), "load_raw")
	span.End()
	require.NoError(t, tel.Shutdown(context.Background()))

	content, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "load_raw")
}

func TestTelemetry_WriteMetrics(t *testing.T) {
	tel, err := NewTelemetry(config.TelemetryConfig{TraceExporter: "none"}, "test", nil)
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	ctx := context.Background()
	tel.Metrics.RowsRead.Add(ctx, 5)
	tel.Metrics.RecordRemoved(ctx, "citation_marker", 2)
	tel.Metrics.RecordRemoved(ctx, "restated_header", 0)
	tel.Metrics.RecordStep(ctx, "filter_rows", "completed", 0.01)
	tel.Metrics.RecordMissing(ctx, "Men_Overweight_Pct", 1)

	path := filepath.Join(t.TempDir(), "run.prom")
	require.NoError(t, tel.WriteMetrics(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "dhsclean_rows_read_total 5")
	assert.Contains(t, text, `dhsclean_rows_removed_total{predicate="citation_marker"} 2`)
	assert.NotContains(t, text, "restated_header")
	assert.Contains(t, text, `dhsclean_missing_values_total{column="Men_Overweight_Pct"} 1`)
	assert.Contains(t, text, "dhsclean_step_duration_seconds_bucket")
}

func TestTelemetry_WriteMetricsNoPath(t *testing.T) {
	tel, err := NewTelemetry(config.TelemetryConfig{}, "test", nil)
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	assert.NoError(t, tel.WriteMetrics(""))
}

func TestPipelineMetrics_NilSafe(t *testing.T) {
	var m *PipelineMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordRemoved(ctx, "citation_marker", 1)
		m.RecordStep(ctx, "load", "completed", 1)
		m.RecordMissing(ctx, "Women_Overweight_Pct", 1)
	})
}
