package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "dhsclean/internal/errors"
)

// SupportedExtensions lists the raw export formats the loader reads.
var SupportedExtensions = []string{".csv", ".txt", ".xlsx", ".xlsm"}

// FileValidator checks input and output locations before a run starts
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateSource checks that the raw export exists, is a regular file and
// can be opened. Any failure is a SOURCE_UNAVAILABLE error.
func (v *FileValidator) ValidateSource(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Raw source does not exist",
			slog.String("file", path))
		return apperrors.NewSourceUnavailableError(path, err)
	}
	if err != nil {
		v.logger.Error("Failed to stat raw source",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewSourceUnavailableError(path, err)
	}
	if info.IsDir() {
		v.logger.Error("Raw source is a directory",
			slog.String("path", path))
		return apperrors.NewSourceUnavailableError(path, fmt.Errorf("%s is a directory, not a file", path))
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Raw source is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewSourceUnavailableError(path, err)
	}
	file.Close()

	if !IsSupported(path) {
		v.logger.Warn("Unrecognised raw source extension, reading as delimited text",
			slog.String("file", path))
	}

	v.logger.Debug("Raw source validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures the directory of an output file exists
// or can be created, and is writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// IsSupported reports whether path has a known raw export extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}
