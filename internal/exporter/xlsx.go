package exporter

import (
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	apperrors "dhsclean/internal/errors"
	"dhsclean/internal/files"
	"dhsclean/pkg/contracts/domain"
)

// SheetName is the worksheet holding the cleaned table
const SheetName = "obesity_data"

// XLSXWriter writes a spreadsheet copy of the cleaned table
type XLSXWriter struct {
	files  *files.Manager
	logger *slog.Logger
}

// NewXLSXWriter creates a new XLSX writer instance
func NewXLSXWriter(manager *files.Manager, logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{files: manager, logger: logger}
}

// Write atomically replaces path with a workbook holding the table. Metrics
// and years are stored as numbers, flags as booleans, missing values as
// empty cells.
func (w *XLSXWriter) Write(path string, table *domain.CleanTable) error {
	staged, err := w.Stage(path, table)
	if err != nil {
		return err
	}
	if err := staged.Commit(); err != nil {
		return apperrors.NewStorageError("failed to replace cleaned XLSX", err).WithContext("path", path)
	}
	return nil
}

// Stage writes the workbook beside path without replacing it
func (w *XLSXWriter) Stage(path string, table *domain.CleanTable) (*files.StagedFile, error) {
	if table == nil {
		return nil, apperrors.NewStorageError("no table to write", nil).WithContext("path", path)
	}

	w.logger.Info("Writing XLSX file",
		slog.String("file_path", path),
		slog.Int("record_count", table.Len()))

	f, err := buildWorkbook(table)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to build workbook", err).WithContext("path", path)
	}
	defer f.Close()

	staged, err := w.files.Stage(path, func(out io.Writer) error {
		return f.Write(out)
	})
	if err != nil {
		return nil, apperrors.NewStorageError("failed to write cleaned XLSX", err).WithContext("path", path)
	}
	return staged, nil
}

func buildWorkbook(table *domain.CleanTable) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, err
	}

	header := make([]interface{}, len(domain.OutputColumns))
	for i, name := range domain.OutputColumns {
		header[i] = name
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		f.Close()
		return nil, err
	}

	for i, record := range table.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := workbookRow(record)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func workbookRow(r domain.CleanRecord) []interface{} {
	text := func(t domain.Text) interface{} {
		if !t.Valid {
			return nil
		}
		return t.Value
	}
	year := func(y domain.Year) interface{} {
		if !y.Valid {
			return nil
		}
		return y.Value
	}
	metric := func(m domain.Metric) interface{} {
		if m.Missing() {
			return nil
		}
		return m.Value
	}

	return []interface{}{
		text(r.Country),
		text(r.Survey),
		year(r.SurveyYear),
		year(r.SurveyStartYear),
		year(r.SurveyEndYear),
		text(r.Category),
		text(r.Subcategory),
		text(r.Characteristic),
		metric(r.Metrics[domain.MetricChildren]),
		metric(r.Metrics[domain.MetricWomen]),
		metric(r.Metrics[domain.MetricMen]),
		r.Complete[domain.MetricChildren],
		r.Complete[domain.MetricWomen],
		r.Complete[domain.MetricMen],
		r.HasAllMetrics,
	}
}
