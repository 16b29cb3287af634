package dataprocessing

import (
	"dhsclean/pkg/contracts/domain"
)

// PreviewWidth bounds the Country and Survey previews of removed rows.
const PreviewWidth = 50

// RemovedRow is the audit entry of one contaminated row.
type RemovedRow struct {
	SourceIndex int
	Country     string
	Survey      string
	Predicates  []string
}

// FilterResult is the Row Filter's output: the surviving rows, renumbered
// from zero in their original order, and the audit of removed rows.
type FilterResult struct {
	Records []domain.CleanRecord
	Removed []RemovedRow
}

// FilterRows drops every row whose verdict is contaminated. verdicts must
// hold one entry per row of table.
func FilterRows(table *domain.RawTable, verdicts []Verdict) FilterResult {
	result := FilterResult{
		Records: make([]domain.CleanRecord, 0, len(table.Rows)),
	}

	for i, row := range table.Rows {
		if i < len(verdicts) && verdicts[i].Contaminated() {
			result.Removed = append(result.Removed, RemovedRow{
				SourceIndex: row.Index,
				Country:     Preview(table.Country(row), PreviewWidth),
				Survey:      Preview(table.Survey(row), PreviewWidth),
				Predicates:  verdicts[i].Matched,
			})
			continue
		}

		rec := domain.CleanRecord{
			SourceIndex:    row.Index,
			Country:        table.Country(row),
			Survey:         table.Survey(row),
			Characteristic: table.Characteristic(row),
		}
		for _, kind := range domain.MetricKinds {
			rec.RawMetrics[kind] = table.MetricText(row, kind)
		}
		result.Records = append(result.Records, rec)
	}

	return result
}

// Preview returns at most width runes of the value, or NULL for null.
func Preview(t domain.Text, width int) string {
	if !t.Valid {
		return "NULL"
	}
	runes := []rune(t.Value)
	if len(runes) > width {
		return string(runes[:width])
	}
	return t.Value
}
