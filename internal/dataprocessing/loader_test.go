package dataprocessing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "dhsclean/internal/errors"
	"dhsclean/pkg/contracts/domain"
)

func newTestLoader() *Loader {
	return NewLoader(nil, LoaderConfig{SkipRows: 1, MinColumns: 6})
}

func TestLoader_LoadCSV(t *testing.T) {
	header := append(append([]string(nil), rawHeader...), "Extra")
	path := writeRawCSV(t, header, [][]string{
		{"India", "2019-21 DHS", "Total", "3.4", "24.0", "22.9", "x"},
		{},
		{"India", "1998-99 DHS", "Residence : Urban", "", "NaN"},
	})

	table, err := newTestLoader().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, table.Source)
	assert.Len(t, table.Header, 7)
	require.Len(t, table.Rows, 2, "blank lines are skipped")

	first := table.Rows[0]
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, domain.TextOf("India"), table.Country(first))
	assert.Equal(t, domain.TextOf("24.0"), table.MetricText(first, domain.MetricWomen))

	second := table.Rows[1]
	assert.Equal(t, 1, second.Index)
	assert.Equal(t, domain.TextOf("Residence : Urban"), table.Characteristic(second))
	assert.False(t, table.MetricText(second, domain.MetricChildren).Valid)
	assert.False(t, table.MetricText(second, domain.MetricWomen).Valid)
	assert.False(t, table.MetricText(second, domain.MetricMen).Valid, "short rows are padded with nulls")
}

func TestLoader_ColumnOrderIndependent(t *testing.T) {
	header := []string{
		domain.MetricMen.SourceColumn(),
		domain.ColumnSurvey,
		domain.MetricWomen.SourceColumn(),
		domain.ColumnCountry,
		domain.MetricChildren.SourceColumn(),
		domain.ColumnCharacteristic,
	}
	path := writeRawCSV(t, header, [][]string{{"22.9", "2019-21 DHS", "24.0", "India", "3.4", "Total"}})

	table, err := newTestLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	row := table.Rows[0]
	assert.Equal(t, "India", table.Country(row).Value)
	assert.Equal(t, "3.4", table.MetricText(row, domain.MetricChildren).Value)
	assert.Equal(t, "22.9", table.MetricText(row, domain.MetricMen).Value)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		errType apperrors.ErrorType
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.csv") },
			errType: apperrors.ErrTypeSourceUnavailable,
		},
		{
			name: "too few columns",
			path: func(t *testing.T) string {
				return writeRawCSV(t, []string{"Country", "Survey", "Characteristic"}, nil)
			},
			errType: apperrors.ErrTypeMalformedSource,
		},
		{
			name: "missing Characteristic",
			path: func(t *testing.T) string {
				header := append([]string{"Country", "Survey", "Label"}, rawHeader[3:]...)
				return writeRawCSV(t, header, nil)
			},
			errType: apperrors.ErrTypeMalformedSource,
		},
		{
			name: "empty file",
			path: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "empty.csv")
				require.NoError(t, os.WriteFile(path, []byte("\n"), 0644))
				return path
			},
			errType: apperrors.ErrTypeMalformedSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestLoader().Load(context.Background(), tt.path(t))
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.errType), "got %v", err)
		})
	}
}

func TestLoader_MissingMetricColumnIsNotFatal(t *testing.T) {
	header := append(append([]string(nil), rawHeader[:5]...), "Men overweight")
	path := writeRawCSV(t, header, [][]string{{"India", "2019-21 DHS", "Total", "3.4", "24.0", "22.9"}})

	table, err := newTestLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, table.HasMetric(domain.MetricMen))
	assert.True(t, table.HasMetric(domain.MetricWomen))
}

func TestLoader_KeepsDelimiterOnlyRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.csv")
	content := "\n" +
		"Country,Survey,Characteristic,Children overweight,Women who are overweight or obese according to BMI (>=25.0),Men who are overweight or obese according to BMI (>=25.0)\n" +
		"India,2019-21 DHS,Total,3.4,24.0,22.9\n" +
		",,,,,\n" +
		"\n" +
		"India,2015-16 DHS,Residence : Rural,2.1,15.0,15.9\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := newTestLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3, "empty lines are skipped, delimiter-only rows are kept")

	empty := table.Rows[1]
	assert.Equal(t, 1, empty.Index)
	for i, cell := range empty.Cells {
		assert.False(t, cell.Valid, "cell %d", i)
	}
	assert.Equal(t, 2, table.Rows[2].Index)
	assert.Equal(t, "Residence : Rural", table.Characteristic(table.Rows[2]).Value)
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
	}{
		{input: "", wantValid: false},
		{input: "NA", wantValid: false},
		{input: "NaN", wantValid: false},
		{input: "n/a", wantValid: false},
		{input: "   ", wantValid: true},
		{input: " NA ", wantValid: true},
		{input: "n.a.", wantValid: true},
		{input: "India", wantValid: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseCell(tt.input)
			assert.Equal(t, tt.wantValid, got.Valid)
			if tt.wantValid {
				assert.Equal(t, tt.input, got.Value)
			}
		})
	}
}

func TestLoader_WhitespaceCharacteristicIsText(t *testing.T) {
	path := writeRawCSV(t, rawHeader, [][]string{{"India", "2019-21 DHS", "   ", "3.4", "24.0", "22.9"}})

	table, err := newTestLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	characteristic := table.Characteristic(table.Rows[0])
	require.True(t, characteristic.Valid)

	records := DecomposeCharacteristics([]domain.CleanRecord{{Characteristic: characteristic}})
	assert.Equal(t, domain.TextOf(""), records[0].Category)
	assert.Equal(t, domain.TextOf(""), records[0].Subcategory)
}

func TestLoader_BannerIsNotBlank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.csv")
	content := "Obesity indicators export,,,,,\n" +
		"Country,Survey,Characteristic,Children overweight,Women who are overweight or obese according to BMI (>=25.0),Men who are overweight or obese according to BMI (>=25.0)\n" +
		"India,2019-21 DHS,Total,3.4,24.0,22.9\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := newTestLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Country", table.Header[0])
}

func TestDecodeSource(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{name: "plain utf-8", raw: []byte("Côte d'Ivoire"), want: "Côte d'Ivoire"},
		{name: "utf-8 bom", raw: []byte("\xef\xbb\xbfCountry"), want: "Country"},
		{name: "windows-1252", raw: []byte("C\xf4te d\x92Ivoire"), want: "Côte d’Ivoire"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeSource(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestSkipLines(t *testing.T) {
	data := []byte("banner\nheader\nrow\n")

	assert.Equal(t, "banner\nheader\nrow\n", string(skipLines(data, 0)))
	assert.Equal(t, "header\nrow\n", string(skipLines(data, 1)))
	assert.Empty(t, skipLines([]byte("no newline"), 1))
}

func TestLoader_LoadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obesity_data_raw.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "StatCompiler export"))
	header := make([]interface{}, len(rawHeader))
	for i, h := range rawHeader {
		header[i] = h
	}
	require.NoError(t, f.SetSheetRow(sheet, "A2", &header))
	row := []interface{}{"India", "2019-21 DHS", "Residence : Urban", "4.2", "33.2", "29.8"}
	require.NoError(t, f.SetSheetRow(sheet, "A3", &row))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := newTestLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Residence : Urban", table.Characteristic(table.Rows[0]).Value)
	assert.Equal(t, "33.2", table.MetricText(table.Rows[0], domain.MetricWomen).Value)
}
