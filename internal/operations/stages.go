package operations

import (
	"context"
	"fmt"
	"log/slog"

	"dhsclean/internal/dataprocessing"
	"dhsclean/internal/infrastructure"
	"dhsclean/pkg/contracts/domain"
)

// Step IDs in pipeline order
const (
	StepIDLoad       = "load_raw"
	StepIDDetect     = "detect_contamination"
	StepIDFilter     = "filter_rows"
	StepIDDecompose  = "decompose_characteristic"
	StepIDNormalize  = "normalize_metrics"
	StepIDSurveyYear = "extract_survey_years"
	StepIDDerive     = "derive_fields"
	StepIDBind       = "bind_output"
	StepIDReport     = "quality_report"
)

// StageOptions carries the collaborators of the cleaning steps
type StageOptions struct {
	Logger   *slog.Logger
	Loader   *dataprocessing.Loader
	Detector *dataprocessing.Detector
	Reporter *dataprocessing.QualityReporter
	Metrics  *infrastructure.PipelineMetrics
}

// NewCleaningRegistry registers the cleaning steps in pipeline order
func NewCleaningRegistry(opts StageOptions) (*Registry, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Loader == nil {
		opts.Loader = dataprocessing.NewLoader(opts.Logger, dataprocessing.LoaderConfig{SkipRows: 1})
	}
	if opts.Detector == nil {
		opts.Detector = dataprocessing.NewDetector()
	}
	if opts.Reporter == nil {
		opts.Reporter = dataprocessing.NewQualityReporter(opts.Logger, dataprocessing.QualityConfig{})
	}

	registry := NewRegistry()
	steps := []Step{
		&LoadStep{BaseStep: NewBaseStep(StepIDLoad, "Raw Loader"), opts: opts},
		&DetectStep{BaseStep: NewBaseStep(StepIDDetect, "Contamination Detector"), opts: opts},
		&FilterStep{BaseStep: NewBaseStep(StepIDFilter, "Row Filter"), opts: opts},
		newRecordStep(StepIDDecompose, "Field Decomposer", dataprocessing.DecomposeCharacteristics),
		newRecordStep(StepIDNormalize, "Type Normalizer", dataprocessing.NormalizeMetrics),
		newRecordStep(StepIDSurveyYear, "Survey-Year Extractor", dataprocessing.ExtractSurveyYears),
		newRecordStep(StepIDDerive, "Derived-Field Synthesizer", dataprocessing.DeriveFields),
		&BindStep{BaseStep: NewBaseStep(StepIDBind, "Column Renamer")},
		&ReportStep{BaseStep: NewBaseStep(StepIDReport, "Quality Reporter"), opts: opts},
	}
	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// LoadStep reads the raw export
type LoadStep struct {
	BaseStep
	opts StageOptions
}

// Validate checks that a source path is set
func (s *LoadStep) Validate(state *OperationState) error {
	if state.SourcePath == "" {
		return NewValidationError(s.ID(), "no source path")
	}
	return nil
}

// Execute loads the raw table
func (s *LoadStep) Execute(ctx context.Context, state *OperationState) error {
	raw, err := s.opts.Loader.Load(ctx, state.SourcePath)
	if err != nil {
		return err
	}
	state.Raw = raw
	if s.opts.Metrics != nil {
		s.opts.Metrics.RowsRead.Add(ctx, int64(len(raw.Rows)))
	}
	state.SetStepMessage(s.ID(), fmt.Sprintf("%d rows", len(raw.Rows)))
	return nil
}

// DetectStep evaluates the contamination predicates
type DetectStep struct {
	BaseStep
	opts StageOptions
}

// Validate checks that the raw table is loaded
func (s *DetectStep) Validate(state *OperationState) error {
	if state.Raw == nil {
		return NewValidationError(s.ID(), "raw table not loaded")
	}
	return nil
}

// Execute stores one verdict per raw row
func (s *DetectStep) Execute(ctx context.Context, state *OperationState) error {
	state.Verdicts = s.opts.Detector.Detect(state.Raw)

	flagged := 0
	for _, v := range state.Verdicts {
		if v.Contaminated() {
			flagged++
		}
	}
	state.SetStepMessage(s.ID(), fmt.Sprintf("%d rows flagged", flagged))
	return nil
}

// FilterStep removes contaminated rows
type FilterStep struct {
	BaseStep
	opts StageOptions
}

// Validate checks that verdicts exist for every raw row
func (s *FilterStep) Validate(state *OperationState) error {
	if state.Raw == nil {
		return NewValidationError(s.ID(), "raw table not loaded")
	}
	if len(state.Verdicts) != len(state.Raw.Rows) {
		return NewValidationError(s.ID(),
			fmt.Sprintf("have %d verdicts for %d rows", len(state.Verdicts), len(state.Raw.Rows)))
	}
	return nil
}

// Execute keeps the clean rows and logs every removed one
func (s *FilterStep) Execute(ctx context.Context, state *OperationState) error {
	result := dataprocessing.FilterRows(state.Raw, state.Verdicts)
	state.Records = result.Records
	state.Removed = result.Removed

	for _, removed := range result.Removed {
		s.opts.Logger.InfoContext(ctx, "Removed contaminated row",
			slog.Int("row", removed.SourceIndex),
			slog.String("country", removed.Country),
			slog.String("survey", removed.Survey),
			slog.Any("predicates", removed.Predicates))
		if len(removed.Predicates) > 0 {
			s.opts.Metrics.RecordRemoved(ctx, removed.Predicates[0], 1)
		}
	}

	s.opts.Logger.InfoContext(ctx, "Contaminated rows removed",
		slog.Int("rows_before", len(state.Raw.Rows)),
		slog.Int("rows_after", len(state.Records)),
		slog.Int("removed", len(result.Removed)))
	state.SetStepMessage(s.ID(), fmt.Sprintf("%d removed, %d kept", len(result.Removed), len(result.Records)))
	return nil
}

// RecordStep applies a pure transformation to the filtered records
type RecordStep struct {
	BaseStep
	transform func([]domain.CleanRecord) []domain.CleanRecord
}

func newRecordStep(id, name string, transform func([]domain.CleanRecord) []domain.CleanRecord) *RecordStep {
	return &RecordStep{BaseStep: NewBaseStep(id, name), transform: transform}
}

// Validate checks that the row filter has run
func (s *RecordStep) Validate(state *OperationState) error {
	if state.Records == nil && state.RawRows() > 0 {
		return NewValidationError(s.ID(), "rows have not been filtered")
	}
	return nil
}

// Execute replaces the records with the transformed copy
func (s *RecordStep) Execute(ctx context.Context, state *OperationState) error {
	state.Records = s.transform(state.Records)
	return nil
}

// BindStep fixes the output schema
type BindStep struct {
	BaseStep
}

// Validate checks that the raw schema is available
func (s *BindStep) Validate(state *OperationState) error {
	if state.Raw == nil {
		return NewValidationError(s.ID(), "raw table not loaded")
	}
	return nil
}

// Execute binds the records to the output column contract
func (s *BindStep) Execute(ctx context.Context, state *OperationState) error {
	table, err := dataprocessing.BindOutput(state.Raw, state.Records)
	if err != nil {
		return err
	}
	state.Table = table
	state.SetStepMessage(s.ID(), fmt.Sprintf("%d columns", len(table.Columns)))
	return nil
}

// ReportStep computes the quality report
type ReportStep struct {
	BaseStep
	opts StageOptions
}

// Validate checks that the output table exists
func (s *ReportStep) Validate(state *OperationState) error {
	if state.Table == nil {
		return NewValidationError(s.ID(), "output table not bound")
	}
	return nil
}

// Execute stores the report and records per-column missingness
func (s *ReportStep) Execute(ctx context.Context, state *OperationState) error {
	report := s.opts.Reporter.Report(state.Table)
	report.RawRows = state.RawRows()
	report.Removed = state.Removed
	state.Report = report

	for _, m := range report.Missing {
		s.opts.Metrics.RecordMissing(ctx, m.Column, m.Missing)
	}
	return nil
}
