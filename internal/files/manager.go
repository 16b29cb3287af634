package files

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"dhsclean/internal/config"
)

// Manager provides file operations relative to the run's base directory
type Manager struct {
	paths *config.Paths
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths) *Manager {
	return &Manager{paths: paths}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	fullPath := m.resolvePath(path)
	info, err := os.Stat(fullPath)
	exists := err == nil && !info.IsDir()

	slog.Debug("FileExists check",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Bool("exists", exists))

	return exists
}

// EnsureDirectory creates a directory if it doesn't exist
func (m *Manager) EnsureDirectory(path string) error {
	fullPath := m.resolvePath(path)

	slog.Debug("Ensuring directory exists",
		slog.String("path", path),
		slog.String("full_path", fullPath))

	return os.MkdirAll(fullPath, 0755)
}

// StagedFile is a fully written temp file waiting to replace its target
type StagedFile struct {
	path     string
	fullPath string
	tmpPath  string
	done     bool
}

// Stage writes a file through write into a temp file beside path. Nothing
// at path changes until Commit; a failed write leaves no temp file.
func (m *Manager) Stage(path string, write func(w io.Writer) error) (*StagedFile, error) {
	fullPath := m.resolvePath(path)
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	staged := false
	defer func() {
		if !staged {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	buf := bufio.NewWriter(tmp)
	if err := write(buf); err != nil {
		return nil, err
	}
	if err := buf.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		return nil, fmt.Errorf("failed to sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return nil, fmt.Errorf("failed to set permissions: %w", err)
	}
	staged = true

	return &StagedFile{path: path, fullPath: fullPath, tmpPath: tmpPath}, nil
}

// Path returns the target the staged file replaces on Commit
func (f *StagedFile) Path() string {
	return f.fullPath
}

// Commit renames the staged file over its target. A failed rename removes
// the temp file and leaves the target untouched.
func (f *StagedFile) Commit() error {
	if f.done {
		return fmt.Errorf("staged file for %s already finished", f.fullPath)
	}
	f.done = true
	if err := os.Rename(f.tmpPath, f.fullPath); err != nil {
		os.Remove(f.tmpPath)
		return fmt.Errorf("failed to replace %s: %w", f.fullPath, err)
	}

	slog.Debug("Replaced file",
		slog.String("path", f.path),
		slog.String("full_path", f.fullPath))
	return nil
}

// Discard removes the staged file. It is a no-op after Commit.
func (f *StagedFile) Discard() {
	if f == nil || f.done {
		return
	}
	f.done = true
	os.Remove(f.tmpPath)
}

// WriteAtomic writes a file through write and replaces path only when write
// succeeds. A failed write leaves any existing file untouched.
func (m *Manager) WriteAtomic(path string, write func(w io.Writer) error) error {
	staged, err := m.Stage(path, write)
	if err != nil {
		return err
	}
	return staged.Commit()
}

// WriteFile atomically replaces a file with data
func (m *Manager) WriteFile(path string, data []byte) error {
	return m.WriteAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// resolvePath resolves a relative path against the base directory
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) || m.paths == nil || m.paths.BaseDir == "" {
		return path
	}
	return filepath.Join(m.paths.BaseDir, path)
}
