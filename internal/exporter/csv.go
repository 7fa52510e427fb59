package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"soiagi/internal/config"
	apperrors "soiagi/internal/errors"
	"soiagi/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance. A nil paths writes relative
// file names against the working directory.
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{
		paths:  paths,
		logger: slog.Default().With("component", "csv_writer"),
	}
}

// WithLogger returns a copy of the writer logging through logger
func (w *CSVWriter) WithLogger(logger *slog.Logger) *CSVWriter {
	return &CSVWriter{paths: w.paths, logger: logger.With("component", "csv_writer")}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file, replacing any existing file. It
// returns the resolved path.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) (string, error) {
	fullPath := w.resolvePath(filePath)

	w.logger.Debug("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", apperrors.NewStorageError(fullPath, fmt.Errorf("failed to create directory: %w", err))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return "", apperrors.NewStorageError(fullPath, fmt.Errorf("failed to create file: %w", err))
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if options.BOMPrefix {
		if _, err := tmp.Write(utf8BOM); err != nil {
			return "", apperrors.NewStorageError(fullPath, fmt.Errorf("failed to write BOM: %w", err))
		}
	}

	writer := csv.NewWriter(tmp)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return "", apperrors.NewStorageError(fullPath, fmt.Errorf("failed to write headers: %w", err))
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return "", apperrors.NewStorageError(fullPath, fmt.Errorf("failed to write record %d: %w", i, err))
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", apperrors.NewStorageError(fullPath, err)
	}

	if err := tmp.Close(); err != nil {
		return "", apperrors.NewStorageError(fullPath, err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		return "", apperrors.NewStorageError(fullPath, fmt.Errorf("failed to replace file: %w", err))
	}
	committed = true

	return fullPath, nil
}

// WriteTable writes a table with its header row
func (w *CSVWriter) WriteTable(filePath string, table *domain.Table) (string, error) {
	fullPath, err := w.WriteCSV(filePath, WriteOptions{
		Headers: table.Columns(),
		Records: table.Records(),
	})
	if err != nil {
		return "", err
	}

	w.logger.Info("Table written",
		slog.String("path", fullPath),
		slog.Int("rows", table.Len()),
		slog.Int("columns", table.Width()))

	return fullPath, nil
}

// resolvePath resolves relative names against the output directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return w.paths.GetOutputPath(filePath)
}
