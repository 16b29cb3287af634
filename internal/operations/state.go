package operations

import (
	"time"

	"dhsclean/internal/dataprocessing"
	"dhsclean/pkg/contracts/domain"
)

// OperationStatus represents the overall operation status
type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "pending"
	OperationStatusRunning   OperationStatus = "running"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusFailed    OperationStatus = "failed"
)

// OperationState is the state of one pipeline run. Each step reads the
// output of the previous one from here and stores its own.
type OperationState struct {
	ID        string
	Status    OperationStatus
	StartTime time.Time
	EndTime   *time.Time
	Error     error

	steps map[string]*StepState
	order []string

	// SourcePath is the raw export to load.
	SourcePath string

	Raw      *domain.RawTable
	Verdicts []dataprocessing.Verdict
	Removed  []dataprocessing.RemovedRow
	Records  []domain.CleanRecord
	Table    *domain.CleanTable
	Report   *dataprocessing.QualityReport
}

// NewOperationState creates a new operation state
func NewOperationState(id, sourcePath string) *OperationState {
	return &OperationState{
		ID:         id,
		Status:     OperationStatusPending,
		SourcePath: sourcePath,
		steps:      make(map[string]*StepState),
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// AddStep registers a pending step state, keeping registration order
func (p *OperationState) AddStep(id, name string) *StepState {
	if s, ok := p.steps[id]; ok {
		return s
	}
	s := NewStepState(id, name)
	p.steps[id] = s
	p.order = append(p.order, id)
	return s
}

// GetStep returns the state of a step, or nil if unknown
func (p *OperationState) GetStep(id string) *StepState {
	return p.steps[id]
}

// SetStepMessage records a short result message for a step
func (p *OperationState) SetStepMessage(id, message string) {
	if s, ok := p.steps[id]; ok {
		s.Message = message
	}
}

// Steps returns the step states in execution order
func (p *OperationState) Steps() []*StepState {
	out := make([]*StepState, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.steps[id])
	}
	return out
}

// StepSummaries converts the step states for the quality report
func (p *OperationState) StepSummaries() []dataprocessing.StepSummary {
	out := make([]dataprocessing.StepSummary, 0, len(p.order))
	for _, s := range p.Steps() {
		out = append(out, dataprocessing.StepSummary{
			Name:     s.Name,
			Status:   string(s.Status),
			Duration: s.Duration(),
		})
	}
	return out
}

// RawRows returns the number of data rows loaded, or zero before loading
func (p *OperationState) RawRows() int {
	if p.Raw == nil {
		return 0
	}
	return len(p.Raw.Rows)
}
