package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "dhsclean/internal/errors"
	"dhsclean/pkg/contracts/domain"
)

// BindOutput maps the long metric headers of the raw export to their
// canonical names and fixes the column order of the cleaned table. It
// fails with SCHEMA_MISMATCH when a metric column was never bound.
func BindOutput(table *domain.RawTable, records []domain.CleanRecord) (*domain.CleanTable, error) {
	if table == nil {
		return nil, apperrors.NewSchemaMismatchError(domain.ColumnCountry)
	}
	for _, kind := range domain.MetricKinds {
		if !table.HasMetric(kind) {
			return nil, apperrors.NewSchemaMismatchError(kind.SourceColumn()).
				WithContext("output_column", kind.OutputColumn())
		}
	}

	columns := make([]string, len(domain.OutputColumns))
	copy(columns, domain.OutputColumns)

	out := make([]domain.CleanRecord, len(records))
	copy(out, records)

	return &domain.CleanTable{Columns: columns, Records: out}, nil
}

// LoadCleanTable reads a cleaned table previously written by the exporter.
// The header must match the output column contract exactly.
func LoadCleanTable(path string) (*domain.CleanTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError(path, err)
	}
	defer f.Close()
	return ReadCleanTable(f)
}

// ReadCleanTable parses a cleaned table from r.
func ReadCleanTable(r io.Reader) (*domain.CleanTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewSchemaMismatchError(domain.OutputColumns[0])
	}
	if err != nil {
		return nil, apperrors.NewMalformedSourceError(fmt.Sprintf("failed to read header: %v", err))
	}
	if !domain.HeaderEquals(header) {
		return nil, apperrors.NewSchemaMismatchError(firstHeaderDifference(header))
	}

	table := &domain.CleanTable{Columns: append([]string(nil), domain.OutputColumns...)}
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewMalformedSourceError(fmt.Sprintf("failed to read row %d: %v", len(table.Records)+1, err))
		}
		table.Records = append(table.Records, parseCleanRow(len(table.Records), rec))
	}
	return table, nil
}

// firstHeaderDifference names the first contract column the header lacks.
func firstHeaderDifference(header []string) string {
	for i, name := range domain.OutputColumns {
		if i >= len(header) || strings.TrimPrefix(header[i], "\ufeff") != name {
			return name
		}
	}
	return header[len(domain.OutputColumns)]
}

func parseCleanRow(index int, rec []string) domain.CleanRecord {
	cell := func(i int) string {
		if i < len(rec) {
			return rec[i]
		}
		return ""
	}
	text := func(i int) domain.Text {
		if cell(i) == "" {
			return domain.Text{}
		}
		return domain.TextOf(cell(i))
	}
	year := func(i int) domain.Year {
		v, ok := ParseNumber(cell(i))
		if !ok {
			return domain.Year{}
		}
		return domain.YearOf(int(v))
	}

	out := domain.CleanRecord{
		SourceIndex:     index,
		Country:         text(0),
		Survey:          text(1),
		SurveyYear:      year(2),
		SurveyStartYear: year(3),
		SurveyEndYear:   year(4),
		Category:        text(5),
		Subcategory:     text(6),
		Characteristic:  text(7),
		HasAllMetrics:   parseFlag(cell(14)),
	}
	for _, kind := range domain.MetricKinds {
		out.RawMetrics[kind] = text(8 + int(kind))
		out.Metrics[kind] = CoerceMetric(out.RawMetrics[kind])
		out.Complete[kind] = parseFlag(cell(11 + int(kind)))
	}
	return out
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	}
	return false
}
