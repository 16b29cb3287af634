package dataprocessing

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"dhsclean/pkg/contracts/domain"
)

// rawHeader is the header of a DHS StatCompiler obesity export.
var rawHeader = []string{
	domain.ColumnCountry,
	domain.ColumnSurvey,
	domain.ColumnCharacteristic,
	domain.MetricChildren.SourceColumn(),
	domain.MetricWomen.SourceColumn(),
	domain.MetricMen.SourceColumn(),
}

// writeRawCSV writes a raw export with a blank banner line, the header and rows.
func writeRawCSV(t *testing.T, header []string, rows [][]string) string {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("\n")
	w := csv.NewWriter(&sb)
	require.NoError(t, w.Write(header))
	require.NoError(t, w.WriteAll(rows))

	path := filepath.Join(t.TempDir(), "obesity_data_raw.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0644))
	return path
}

// rawTable builds a RawTable in memory with the standard header.
func rawTable(rows ...[]string) *domain.RawTable {
	schema, err := bindSchema(rawHeader)
	if err != nil {
		panic(err)
	}
	table := &domain.RawTable{Header: rawHeader, Schema: schema}
	for i, r := range rows {
		cells := make([]domain.Text, len(rawHeader))
		for j := range cells {
			if j < len(r) {
				cells[j] = parseCell(r[j])
			}
		}
		table.Rows = append(table.Rows, domain.RawRow{Index: i, Cells: cells})
	}
	return table
}

// scenarioRows is a five row export: row 3 is a citation line and row 5
// has a non-numeric Women value.
func scenarioRows() [][]string {
	return [][]string{
		{"India", "2019-21 DHS", "Total", "3.4", "24.0", "22.9"},
		{"India", "2019-21 DHS", "Residence : Urban", "4.2", "33.2", "29.8"},
		{"ICF, 2015. The DHS Program STATcompiler. Funded by USAID. http://www.statcompiler.com", "", "", "", "", ""},
		{"India", "2015-16 DHS", "Residence : Rural", "2.1", "15.0", "15.9"},
		{"India", "2005-06 DHS", "Wealth quintile : Lowest", "1.9", "n.a.", "3.5"},
	}
}
