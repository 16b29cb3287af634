package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	apperrors "dhsclean/internal/errors"
	"dhsclean/pkg/contracts/domain"
)

// nullTokens are cell values read as null, matching what spreadsheet
// tooling writes for "no value".
var nullTokens = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-NaN":     true,
	"-nan":     true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// LoaderConfig holds options for reading the raw export.
type LoaderConfig struct {
	SkipRows   int    // physical lines before the header row
	MinColumns int    // minimum header fields
	Sheet      string // worksheet for .xlsx input; empty means the first sheet
}

// Loader reads a raw DHS export into a RawTable.
type Loader struct {
	logger *slog.Logger
	config LoaderConfig
}

// NewLoader creates a raw loader.
func NewLoader(logger *slog.Logger, config LoaderConfig) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if config.SkipRows < 0 {
		config.SkipRows = 0
	}
	if config.MinColumns <= 0 {
		config.MinColumns = 6
	}
	return &Loader{logger: logger, config: config}
}

// Load reads the export at path. A missing or unreadable file yields a
// SOURCE_UNAVAILABLE error; a header that cannot be bound yields
// MALFORMED_SOURCE.
func (l *Loader) Load(ctx context.Context, path string) (*domain.RawTable, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		records, err = l.readWorkbook(path)
	default:
		records, err = l.readDelimited(path)
	}
	if err != nil {
		return nil, err
	}

	table, err := l.buildTable(path, records)
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "Raw source loaded",
		slog.String("path", path),
		slog.Int("rows", len(table.Rows)),
		slog.Int("columns", len(table.Header)))
	return table, nil
}

// readDelimited reads a CSV export, skipping the configured leading lines.
func (l *Loader) readDelimited(path string) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError(path, err)
	}

	data, err := decodeSource(raw)
	if err != nil {
		return nil, apperrors.NewMalformedSourceError("failed to decode raw source").WithContext("cause", err.Error())
	}
	data = skipLines(data, l.config.SkipRows)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewMalformedSourceError(fmt.Sprintf("failed to parse delimited source: %v", err))
	}
	return records, nil
}

// readWorkbook reads the configured sheet of an Excel export.
func (l *Loader) readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError(path, err)
	}
	defer f.Close()

	sheet := l.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewMalformedSourceError("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewMalformedSourceError(fmt.Sprintf("failed to read sheet %q: %v", sheet, err))
	}

	l.logger.Debug("Workbook sheet read",
		slog.String("sheet", sheet),
		slog.Int("rows", len(rows)))

	if l.config.SkipRows >= len(rows) {
		return nil, nil
	}
	return rows[l.config.SkipRows:], nil
}

// decodeSource strips a UTF-8 byte order mark and converts Windows-1252
// input, which spreadsheet exports commonly produce, to UTF-8.
func decodeSource(raw []byte) ([]byte, error) {
	if !utf8.Valid(raw) {
		decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), raw)
		if err != nil {
			return nil, err
		}
		raw = decoded
	}
	out, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), raw)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// skipLines drops the first n physical lines of data.
func skipLines(data []byte, n int) []byte {
	for i := 0; i < n; i++ {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			return nil
		}
		data = data[idx+1:]
	}
	return data
}

// buildTable binds the header and converts the remaining records to rows.
func (l *Loader) buildTable(path string, records [][]string) (*domain.RawTable, error) {
	headerAt := -1
	for i, rec := range records {
		if !isBlankRecord(rec) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, apperrors.NewMalformedSourceError("raw source has no header row").WithContext("path", path)
	}

	header := make([]string, len(records[headerAt]))
	for i, name := range records[headerAt] {
		header[i] = strings.TrimSpace(name)
	}

	if len(header) < l.config.MinColumns {
		return nil, apperrors.NewMalformedSourceError(
			fmt.Sprintf("raw source has %d columns, expected at least %d", len(header), l.config.MinColumns)).
			WithContext("path", path)
	}

	schema, err := bindSchema(header)
	if err != nil {
		return nil, err
	}

	table := &domain.RawTable{
		Source: path,
		Header: header,
		Schema: schema,
	}

	for _, rec := range records[headerAt+1:] {
		if isBlankLine(rec) {
			continue
		}
		cells := make([]domain.Text, len(header))
		for i := range cells {
			if i < len(rec) {
				cells[i] = parseCell(rec[i])
			}
		}
		table.Rows = append(table.Rows, domain.RawRow{
			Index: len(table.Rows),
			Cells: cells,
		})
	}

	for _, kind := range domain.MetricKinds {
		if !table.HasMetric(kind) {
			l.logger.Warn("Metric column not found in raw header",
				slog.String("column", kind.SourceColumn()))
		}
	}

	return table, nil
}

// bindSchema locates the identifier and metric columns by header name.
func bindSchema(header []string) (domain.SourceSchema, error) {
	schema := domain.SourceSchema{
		Country:        indexOf(header, domain.ColumnCountry),
		Survey:         indexOf(header, domain.ColumnSurvey),
		Characteristic: indexOf(header, domain.ColumnCharacteristic),
	}
	for _, kind := range domain.MetricKinds {
		schema.Metrics[kind] = indexOf(header, kind.SourceColumn())
	}

	required := []struct {
		name  string
		index int
	}{
		{domain.ColumnCountry, schema.Country},
		{domain.ColumnSurvey, schema.Survey},
		{domain.ColumnCharacteristic, schema.Characteristic},
	}
	for _, col := range required {
		if col.index < 0 {
			return schema, apperrors.NewMalformedSourceError(
				fmt.Sprintf("raw source is missing required column %q", col.name)).
				WithContext("column", col.name)
		}
	}
	return schema, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

// parseCell matches null tokens exactly; whitespace-only cells stay text.
func parseCell(value string) domain.Text {
	if nullTokens[value] {
		return domain.Text{}
	}
	return domain.TextOf(value)
}

// isBlankLine reports an empty physical line. A record of empty fields,
// such as ",,,,,", is a row of nulls and is kept.
func isBlankLine(rec []string) bool {
	return len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "")
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
