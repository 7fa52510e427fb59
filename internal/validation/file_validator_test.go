package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "soiagi/internal/errors"
)

func writeFile(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("A\n1\n"), 0644))
	return path
}

func TestFileValidator_ValidateInputDirectory(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(t *testing.T) string
		pattern   string
		wantCount int
		wantErr   string
	}{
		{
			name: "directory with matching files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, filepath.Join(dir, "09zpallagi.csv"))
				writeFile(t, filepath.Join(dir, "21zpallagi.csv"))
				writeFile(t, filepath.Join(dir, "notes.txt"))
				return dir
			},
			pattern:   "*.csv",
			wantCount: 2,
		},
		{
			name:      "directory without files",
			setup:     func(t *testing.T) string { return t.TempDir() },
			pattern:   "*.csv",
			wantCount: 0,
		},
		{
			name:    "non-existent directory",
			setup:   func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing") },
			wantErr: "does not exist",
		},
		{
			name: "path is a file",
			setup: func(t *testing.T) string {
				return writeFile(t, filepath.Join(t.TempDir(), "file.csv"))
			},
			wantErr: "is not a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewFileValidator(nil)
			count, err := v.ValidateInputDirectory(tt.setup(t), tt.pattern)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)

	dir := filepath.Join(t.TempDir(), "working_data", "ss")
	require.NoError(t, v.ValidateOutputDirectory(dir))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file is removed")

	blocker := writeFile(t, filepath.Join(t.TempDir(), "blocker"))
	err = v.ValidateOutputDirectory(filepath.Join(blocker, "out"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestFileValidator_ValidateFile(t *testing.T) {
	v := NewFileValidator(nil)
	dir := t.TempDir()

	assert.NoError(t, v.ValidateFile(writeFile(t, filepath.Join(dir, "a.csv"))))

	err := v.ValidateFile(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	err = v.ValidateFile(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestFileValidator_ValidateCSVFile(t *testing.T) {
	v := NewFileValidator(nil)
	dir := t.TempDir()

	assert.NoError(t, v.ValidateCSVFile(writeFile(t, filepath.Join(dir, "upper.CSV"))))

	err := v.ValidateCSVFile(writeFile(t, filepath.Join(dir, "data.txt")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a CSV file")
}

func TestFileValidator_ValidateExcelFile(t *testing.T) {
	v := NewFileValidator(nil)
	dir := t.TempDir()

	assert.NoError(t, v.ValidateExcelFile(writeFile(t, filepath.Join(dir, "Codebook.xlsx"))))

	err := v.ValidateExcelFile(writeFile(t, filepath.Join(dir, "~$Codebook.xlsx")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "temporary Excel file")

	err = v.ValidateExcelFile(writeFile(t, filepath.Join(dir, "Codebook.csv")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an Excel workbook")
}

func TestFileValidator_ValidateInputs(t *testing.T) {
	v := NewFileValidator(nil)
	dir := t.TempDir()
	tract := writeFile(t, filepath.Join(dir, "ZIP_TRACT_122018.csv"))

	assert.NoError(t, v.ValidateInputs(map[string]string{"tract table": tract}))

	err := v.ValidateInputs(map[string]string{
		"tract table":  tract,
		"energy table": filepath.Join(dir, "missing.csv"),
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "energy table", appErr.Context["input"])
	assert.Equal(t, apperrors.ErrTypeInput, appErr.Type)
}

func TestFileValidator_CountFiles(t *testing.T) {
	v := NewFileValidator(nil)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a_stdz.csv"))
	writeFile(t, filepath.Join(dir, "b_stdz.csv"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "c_stdz.csv"), 0755))

	count, err := v.CountFiles(dir, "*_stdz.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = v.CountFiles(dir, "[")
	assert.Error(t, err)
}
