package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "tabprep/internal/errors"
	"tabprep/internal/files"
)

// FileValidator checks input and output paths of a run
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateInput checks that path has one of the allowed extensions and names
// an existing, readable regular file. The extension is checked first so an
// unsupported name is reported as such even when the file is absent.
func (v *FileValidator) ValidateInput(path string, allowed []files.Format) (files.Format, error) {
	format, err := files.RequireFormat(path, allowed)
	if err != nil {
		v.logger.Warn("unsupported input format",
			slog.String("file", path),
			slog.String("extension", filepath.Ext(path)))
		return "", err
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("refusing temporary Excel file", slog.String("file", path))
		return "", apperrors.NewAppValidationError(fmt.Sprintf("file %s is a temporary Excel file", path)).
			WithContext("path", path)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("file does not exist", slog.String("file", path))
		return "", apperrors.NewNotFoundError(path, err)
	}
	if err != nil {
		v.logger.Error("failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return "", apperrors.NewStorageError(fmt.Sprintf("cannot access %s", path), err)
	}
	if info.IsDir() {
		v.logger.Error("path is a directory, not a file", slog.String("path", path))
		return "", apperrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path)).
			WithContext("path", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return "", apperrors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("input validated",
		slog.String("file", path),
		slog.String("format", string(format)),
		slog.Int64("size", info.Size()))
	return format, nil
}

// ValidateOutput checks that path can be written: its extension must be a
// writable format and its directory must exist or be creatable.
func (v *FileValidator) ValidateOutput(path string) (files.Format, error) {
	format, err := files.RequireFormat(path, files.WriteFormats)
	if err != nil {
		v.logger.Warn("unsupported output format",
			slog.String("file", path),
			slog.String("extension", filepath.Ext(path)))
		return "", err
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return "", apperrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path)).
			WithContext("path", path)
	}

	if err := v.ValidateOutputDirectory(filepath.Dir(path)); err != nil {
		return "", err
	}
	return format, nil
}

// ValidateOutputDirectory ensures dir exists or can be created and accepts new files
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	probe, err := os.CreateTemp(dir, ".tabprep-write-test-*")
	if err != nil {
		v.logger.Error("output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("output directory validated", slog.String("directory", dir))
	return nil
}
