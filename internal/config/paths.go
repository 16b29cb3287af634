package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains the resolved file locations of one pipeline run.
// Relative config paths are resolved against BaseDir.
type Paths struct {
	BaseDir     string
	RawFile     string
	CleanCSV    string
	CleanXLSX   string
	LogFile     string
	TraceFile   string
	MetricsFile string
}

// GetPaths resolves the configured locations against baseDir. An empty
// baseDir means the current working directory.
func GetPaths(cfg *Config, baseDir string) (*Paths, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		baseDir = wd
	}

	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	return &Paths{
		BaseDir:     baseDir,
		RawFile:     resolve(cfg.Input.Path),
		CleanCSV:    resolve(cfg.Output.CSVPath),
		CleanXLSX:   resolve(cfg.Output.XLSXPath),
		LogFile:     resolve(cfg.Logging.FilePath),
		TraceFile:   resolve(cfg.Telemetry.TraceFile),
		MetricsFile: resolve(cfg.Telemetry.MetricsFile),
	}, nil
}

// OutputDirectories lists the directories that must exist before outputs are written.
func (p *Paths) OutputDirectories() []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, file := range []string{p.CleanCSV, p.CleanXLSX, p.MetricsFile} {
		if file == "" {
			continue
		}
		dir := filepath.Dir(file)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// EnsureDirectories creates the output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range p.OutputDirectories() {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// IsSpreadsheet reports whether the raw file is an Excel workbook.
func (p *Paths) IsSpreadsheet() bool {
	ext := strings.ToLower(filepath.Ext(p.RawFile))
	return ext == ".xlsx" || ext == ".xlsm"
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Path resolution summary",
		slog.String("base_dir", p.BaseDir),
		slog.Group("input",
			slog.String("raw", p.RawFile),
		),
		slog.Group("output",
			slog.String("csv", p.CleanCSV),
			slog.String("xlsx", p.CleanXLSX),
			slog.String("metrics", p.MetricsFile),
			slog.String("trace", p.TraceFile),
		))
}
