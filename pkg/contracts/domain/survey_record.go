package domain

import "strings"

// Text is a nullable cell value. Blank cells load as null.
type Text struct {
	Value string
	Valid bool
}

// TextOf returns a non-null Text.
func TextOf(s string) Text {
	return Text{Value: s, Valid: true}
}

// String returns the value, or the empty string for null.
func (t Text) String() string {
	if !t.Valid {
		return ""
	}
	return t.Value
}

// Metric is a prevalence percentage. An invalid Metric is the missing-value
// sentinel and is distinct from zero.
type Metric struct {
	Value float64
	Valid bool
}

// MetricOf returns a present Metric.
func MetricOf(v float64) Metric {
	return Metric{Value: v, Valid: true}
}

// Missing reports whether the metric is the missing-value sentinel.
func (m Metric) Missing() bool { return !m.Valid }

// Year is a nullable calendar year.
type Year struct {
	Value int
	Valid bool
}

// YearOf returns a present Year.
func YearOf(y int) Year {
	return Year{Value: y, Valid: true}
}

// SourceSchema binds the columns of a raw export by position.
// A negative index means the column was not found in the header.
type SourceSchema struct {
	Country        int
	Survey         int
	Characteristic int
	Metrics        [MetricCount]int
}

// RawRow is one data row of the raw export.
type RawRow struct {
	Index int // position among the data rows, before any filtering
	Cells []Text
}

// Cell returns the cell at col, or null when the row is short or col is unbound.
func (r RawRow) Cell(col int) Text {
	if col < 0 || col >= len(r.Cells) {
		return Text{}
	}
	return r.Cells[col]
}

// RawTable is the raw export as loaded: header plus data rows.
type RawTable struct {
	Source string
	Header []string
	Schema SourceSchema
	Rows   []RawRow
}

// Country returns the Country cell of row.
func (t *RawTable) Country(row RawRow) Text { return row.Cell(t.Schema.Country) }

// Survey returns the Survey cell of row.
func (t *RawTable) Survey(row RawRow) Text { return row.Cell(t.Schema.Survey) }

// Characteristic returns the Characteristic cell of row.
func (t *RawTable) Characteristic(row RawRow) Text { return row.Cell(t.Schema.Characteristic) }

// MetricText returns the unparsed metric cell of row.
func (t *RawTable) MetricText(row RawRow, kind MetricKind) Text {
	return row.Cell(t.Schema.Metrics[kind])
}

// HasMetric reports whether the metric column was found in the header.
func (t *RawTable) HasMetric(kind MetricKind) bool {
	return t.Schema.Metrics[kind] >= 0
}

// CleanRecord is one row of the cleaned table. Fields are filled stage by
// stage; once the pipeline completes every field honours the output contract.
type CleanRecord struct {
	SourceIndex int

	Country        Text
	Survey         Text
	Characteristic Text

	Category    Text
	Subcategory Text

	SurveyStartYear Year
	SurveyEndYear   Year
	SurveyYear      Year

	// RawMetrics keeps the metric cells as exported, before coercion.
	RawMetrics [MetricCount]Text
	Metrics    [MetricCount]Metric

	Complete      [MetricCount]bool
	HasAllMetrics bool
}

// Metric returns the coerced value of the given metric.
func (r CleanRecord) Metric(kind MetricKind) Metric { return r.Metrics[kind] }

// InCategory reports whether the record belongs to the given Category label.
func (r CleanRecord) InCategory(category string) bool {
	return r.Category.Valid && r.Category.Value == category
}

// CleanTable is the terminal artifact of a pipeline run.
type CleanTable struct {
	Columns []string
	Records []CleanRecord
}

// Len returns the number of records.
func (t *CleanTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// HeaderEquals reports whether header matches the output contract exactly.
func HeaderEquals(header []string) bool {
	if len(header) != len(OutputColumns) {
		return false
	}
	for i, name := range OutputColumns {
		if strings.TrimPrefix(header[i], "\ufeff") != name {
			return false
		}
	}
	return true
}
