package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	apperrors "dhsclean/internal/errors"
	"dhsclean/internal/files"
	"dhsclean/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter persists the cleaned table as the authoritative CSV output
type CSVWriter struct {
	files  *files.Manager
	bom    bool
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance. bom prefixes the file with
// a UTF-8 byte order mark so Excel detects the encoding.
func NewCSVWriter(manager *files.Manager, bom bool, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{files: manager, bom: bom, logger: logger}
}

// Write atomically replaces path with the table
func (w *CSVWriter) Write(path string, table *domain.CleanTable) error {
	staged, err := w.Stage(path, table)
	if err != nil {
		return err
	}
	if err := staged.Commit(); err != nil {
		return apperrors.NewStorageError("failed to replace cleaned CSV", err).WithContext("path", path)
	}
	return nil
}

// Stage writes the table beside path without replacing it. The caller
// commits or discards the staged file.
func (w *CSVWriter) Stage(path string, table *domain.CleanTable) (*files.StagedFile, error) {
	if table == nil {
		return nil, apperrors.NewStorageError("no table to write", nil).WithContext("path", path)
	}

	w.logger.Info("Writing CSV file",
		slog.String("file_path", path),
		slog.Int("record_count", table.Len()),
		slog.Bool("bom", w.bom))

	staged, err := w.files.Stage(path, func(out io.Writer) error {
		return WriteTable(out, table, w.bom)
	})
	if err != nil {
		return nil, apperrors.NewStorageError("failed to write cleaned CSV", err).WithContext("path", path)
	}
	return staged, nil
}

// WriteTable encodes table to out in output column order
func WriteTable(out io.Writer, table *domain.CleanTable, bom bool) error {
	if bom {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(domain.OutputColumns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range table.Records {
		if err := writer.Write(formatRecord(record)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
