// Package validation checks pipeline inputs and outputs before any table is
// loaded, so that a run fails fast on a missing file rather than midway.
package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "soiagi/internal/errors"
)

// FileValidator provides file validation shared by the pipeline steps
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

// ValidateInputDirectory checks that dir exists and returns how many
// regular files match pattern. No matches is not an error.
func (v *FileValidator) ValidateInputDirectory(dir string, pattern string) (int, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return 0, apperrors.NewInputError(dir, fmt.Errorf("input directory %s does not exist", dir))
	}
	if err != nil {
		return 0, apperrors.NewInputError(dir, fmt.Errorf("failed to stat directory %s: %w", dir, err))
	}
	if !info.IsDir() {
		return 0, apperrors.NewInputError(dir, fmt.Errorf("%s is not a directory", dir))
	}

	if pattern == "" {
		return 0, nil
	}

	count, err := v.CountFiles(dir, pattern)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		v.logger.Warn("No files matching pattern found",
			slog.String("directory", dir),
			slog.String("pattern", pattern))
		return 0, nil
	}

	v.logger.Debug("Input directory validated",
		slog.String("directory", dir),
		slog.Int("files_found", count),
		slog.String("pattern", pattern))
	return count, nil
}

// ValidateOutputDirectory ensures the output directory exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("failed to create output directory "+dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("output directory "+dir+" is not writable", err)
	}
	probe.Close()
	os.Remove(probe.Name())

	return nil
}

// ValidateFile checks that path is an existing, readable regular file
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return apperrors.NewInputError(path, fmt.Errorf("file %s does not exist", path))
	}
	if err != nil {
		return apperrors.NewInputError(path, fmt.Errorf("failed to stat file %s: %w", path, err))
	}
	if info.IsDir() {
		return apperrors.NewInputError(path, fmt.Errorf("%s is a directory, not a file", path))
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewInputError(path, fmt.Errorf("file %s is not readable: %w", path, err))
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateCSVFile checks that path is a readable file with a .csv extension
func (v *FileValidator) ValidateCSVFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".csv" {
		return apperrors.NewInputError(path, fmt.Errorf("file %s is not a CSV file (extension: %s)", path, ext))
	}
	return nil
}

// ValidateExcelFile checks that path is a readable workbook and not an
// Office lock file
func (v *FileValidator) ValidateExcelFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" && ext != ".xlsm" {
		return apperrors.NewInputError(path, fmt.Errorf("file %s is not an Excel workbook (extension: %s)", path, ext))
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return apperrors.NewInputError(path, fmt.Errorf("file %s is a temporary Excel file", path))
	}
	return nil
}

// ValidateInputs validates each named input file and reports the first
// failure in name order
func (v *FileValidator) ValidateInputs(inputs map[string]string) error {
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := inputs[name]
		var err error
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			err = v.ValidateCSVFile(path)
		} else {
			err = v.ValidateFile(path)
		}
		if err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				return appErr.WithContext("input", name)
			}
			return err
		}
	}
	return nil
}

// CountFiles counts regular files matching a pattern in a directory
func (v *FileValidator) CountFiles(dir string, pattern string) (int, error) {
	fullPattern := filepath.Join(dir, pattern)
	matches, err := filepath.Glob(fullPattern)
	if err != nil {
		return 0, apperrors.NewAppValidationError(fmt.Sprintf("invalid pattern %s: %v", pattern, err))
	}

	fileCount := 0
	for _, match := range matches {
		info, err := os.Stat(match)
		if err == nil && !info.IsDir() {
			fileCount++
		}
	}
	return fileCount, nil
}
