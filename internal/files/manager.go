package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "tabprep/internal/errors"
)

// Manager performs the file-system side effects of a run
type Manager struct {
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger.With(slog.String("component", "files"))}
}

// CheckInput verifies that path names an existing regular file
func (m *Manager) CheckInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.NewNotFoundError(path, err)
		}
		return apperrors.NewStorageError(fmt.Sprintf("cannot access %s", path), err)
	}
	if info.IsDir() {
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path)).
			WithContext("path", path)
	}
	return nil
}

// AtomicWrite streams content produced by write into a temporary file next to
// dst and renames it into place. On any failure dst is left untouched and the
// temporary file is removed.
func (m *Manager) AtomicWrite(dst string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError("failed to create output directory", err).WithContext("path", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return apperrors.NewStorageError("failed to create temporary file", err).WithContext("path", dst)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return apperrors.NewStorageError("failed to flush output", err).WithContext("path", dst)
	}
	if err = tmp.Close(); err != nil {
		return apperrors.NewStorageError("failed to close output", err).WithContext("path", dst)
	}
	if err = os.Chmod(tmpPath, 0644); err != nil {
		return apperrors.NewStorageError("failed to set output permissions", err).WithContext("path", dst)
	}
	if err = os.Rename(tmpPath, dst); err != nil {
		return apperrors.NewStorageError("failed to move output into place", err).WithContext("path", dst)
	}

	m.logger.Debug("output written", slog.String("path", dst))
	return nil
}
