package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/trace"

	"dhsclean/internal/config"
	"dhsclean/internal/dataprocessing"
	apperrors "dhsclean/internal/errors"
	"dhsclean/internal/exporter"
	"dhsclean/internal/files"
	"dhsclean/internal/infrastructure"
	"dhsclean/internal/operations"
	"dhsclean/internal/validation"
)

// RunResult describes a finished cleaning run
type RunResult struct {
	RunID    string
	State    *operations.OperationState
	Report   *dataprocessing.QualityReport
	Outputs  []string
	Duration time.Duration
}

// CleaningService drives one cleaning run from raw export to persisted output
type CleaningService struct {
	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	telemetry *infrastructure.Telemetry
	files     *files.Manager
	validator *validation.FileValidator
	out       io.Writer
}

// NewCleaningService creates a cleaning service. The quality report is
// printed to out; telemetry may be nil.
func NewCleaningService(cfg *config.Config, paths *config.Paths, logger *slog.Logger, telemetry *infrastructure.Telemetry, out io.Writer) (*CleaningService, error) {
	if cfg == nil || paths == nil {
		return nil, fmt.Errorf("cleaning service requires config and paths")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = os.Stdout
	}
	return &CleaningService{
		cfg:       cfg,
		paths:     paths,
		logger:    infrastructure.WithComponent(logger, "cleaning_service"),
		telemetry: telemetry,
		files:     files.NewManager(paths),
		validator: validation.NewFileValidator(logger),
		out:       out,
	}, nil
}

// Run executes the pipeline and, only when every step succeeds, writes the
// outputs and prints the quality report. A failed run writes no output.
func (s *CleaningService) Run(ctx context.Context) (*RunResult, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	result := &RunResult{RunID: infrastructure.GetRunID(ctx)}
	started := time.Now()
	defer func() {
		result.Duration = time.Since(started)
		s.writeMetrics(ctx)
	}()

	s.paths.LogPathResolution(s.logger)
	s.logger.InfoContext(ctx, "Starting cleaning run",
		slog.String("source", s.paths.RawFile),
		slog.String("output", s.paths.CleanCSV))

	if err := s.validator.ValidateSource(s.paths.RawFile); err != nil {
		return result, operations.WrapError(err, operations.StepIDLoad)
	}

	manager, err := s.newManager()
	if err != nil {
		return result, err
	}

	state := operations.NewOperationState(result.RunID, s.paths.RawFile)
	result.State = state
	if err := manager.Execute(ctx, state); err != nil {
		infrastructure.WithError(s.logger, err).ErrorContext(ctx, "Cleaning run failed, no output written")
		return result, err
	}

	outputs, err := s.persist(ctx, state)
	if err != nil {
		infrastructure.WithError(s.logger, err).ErrorContext(ctx, "Failed to persist cleaned table")
		return result, err
	}
	result.Outputs = outputs

	report := state.Report
	report.Steps = state.StepSummaries()
	result.Report = report
	if err := exporter.NewReportRenderer(s.out, s.cfg.Report.Color).Render(report); err != nil {
		return result, fmt.Errorf("failed to print quality report: %w", err)
	}

	s.logger.InfoContext(ctx, "Cleaning run completed",
		slog.Int("rows_in", state.RawRows()),
		slog.Int("rows_removed", len(state.Removed)),
		slog.Int("rows_out", state.Table.Len()),
		slog.Any("outputs", outputs))
	return result, nil
}

// Report prints the quality report of a previously written cleaned table
func (s *CleaningService) Report(ctx context.Context, path string) (*dataprocessing.QualityReport, error) {
	s.logger.InfoContext(ctx, "Reporting on cleaned table", slog.String("path", path))

	if err := s.validator.ValidateSource(path); err != nil {
		return nil, err
	}
	table, err := dataprocessing.LoadCleanTable(path)
	if err != nil {
		return nil, err
	}

	report := s.newReporter().Report(table)
	if err := exporter.NewReportRenderer(s.out, s.cfg.Report.Color).Render(report); err != nil {
		return report, fmt.Errorf("failed to print quality report: %w", err)
	}
	return report, nil
}

func (s *CleaningService) newManager() (*operations.Manager, error) {
	var (
		tracer  trace.Tracer
		metrics *infrastructure.PipelineMetrics
	)
	if s.telemetry != nil {
		tracer = s.telemetry.Tracer
		metrics = s.telemetry.Metrics
	}

	registry, err := operations.NewCleaningRegistry(operations.StageOptions{
		Logger: s.logger,
		Loader: dataprocessing.NewLoader(s.logger, dataprocessing.LoaderConfig{
			SkipRows:   s.cfg.Input.SkipRows,
			MinColumns: s.cfg.Input.MinColumns,
			Sheet:      s.cfg.Input.Sheet,
		}),
		Detector: dataprocessing.NewDetector(),
		Reporter: s.newReporter(),
		Metrics:  metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register cleaning steps: %w", err)
	}
	return operations.NewManager(registry, s.logger, tracer, metrics), nil
}

func (s *CleaningService) newReporter() *dataprocessing.QualityReporter {
	return dataprocessing.NewQualityReporter(s.logger, dataprocessing.QualityConfig{
		SampleRows: s.cfg.Report.SampleRows,
	})
}

// persist writes the cleaned table to every configured destination. All
// outputs are staged first and the CSV is replaced last, so a failed
// spreadsheet write leaves the previous CSV in place.
func (s *CleaningService) persist(ctx context.Context, state *operations.OperationState) ([]string, error) {
	for _, dir := range s.paths.OutputDirectories() {
		if err := s.validator.ValidateOutputDirectory(dir); err != nil {
			return nil, err
		}
	}

	csvFile, err := exporter.NewCSVWriter(s.files, s.cfg.Output.BOM, s.logger).Stage(s.paths.CleanCSV, state.Table)
	if err != nil {
		return nil, err
	}
	defer csvFile.Discard()

	var outputs []string
	if s.paths.CleanXLSX != "" {
		xlsxFile, err := exporter.NewXLSXWriter(s.files, s.logger).Stage(s.paths.CleanXLSX, state.Table)
		if err != nil {
			return nil, err
		}
		if err := xlsxFile.Commit(); err != nil {
			return nil, apperrors.NewStorageError("failed to replace cleaned XLSX", err).WithContext("path", s.paths.CleanXLSX)
		}
		outputs = append(outputs, s.paths.CleanXLSX)
	}

	if err := csvFile.Commit(); err != nil {
		return outputs, apperrors.NewStorageError("failed to replace cleaned CSV", err).WithContext("path", s.paths.CleanCSV)
	}
	outputs = append([]string{s.paths.CleanCSV}, outputs...)

	if s.telemetry != nil {
		s.telemetry.Metrics.RecordWritten(ctx, state.Table.Len())
	}
	return outputs, nil
}

func (s *CleaningService) writeMetrics(ctx context.Context) {
	if s.telemetry == nil || s.paths.MetricsFile == "" {
		return
	}
	err := s.files.EnsureDirectory(filepath.Dir(s.paths.MetricsFile))
	if err == nil {
		err = s.telemetry.WriteMetrics(s.paths.MetricsFile)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to write metrics file",
			slog.String("path", s.paths.MetricsFile),
			slog.String("error", err.Error()))
	}
}
