package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("A,B\n1,2\n"), 0644))
	}
}

func names(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}

func TestNewDiscovery(t *testing.T) {
	discovery := NewDiscovery("/test/base")
	assert.NotNil(t, discovery)
	assert.Equal(t, "/test/base", discovery.basePath)
}

func TestFindCSVFiles(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		expected []string
	}{
		{
			name:     "only CSV files sorted by name",
			files:    []string{"21zpallagi.csv", "09zpallagi.csv", "10zpallagi.CSV"},
			expected: []string{"09zpallagi.csv", "10zpallagi.CSV", "21zpallagi.csv"},
		},
		{
			name:     "mixed file types",
			files:    []string{"data.csv", "Codebook.xlsx", "notes.txt", "csv"},
			expected: []string{"data.csv"},
		},
		{
			name:     "empty directory",
			files:    nil,
			expected: []string{},
		},
		{
			name:     "nested files are ignored",
			files:    []string{"top.csv", "sub/inner.csv"},
			expected: []string{"top.csv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, tt.files...)

			found, err := NewDiscovery(dir).FindCSVFiles(".")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, append([]string{}, names(found)...))
			for _, f := range found {
				assert.Equal(t, filepath.Join(dir, ".", f.Name), f.Path)
				assert.Positive(t, f.Size)
			}
		})
	}
}

func TestFindCSVFilesAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.csv")

	found, err := NewDiscovery("/does/not/matter").FindCSVFiles(dir)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join(dir, "a.csv"), found[0].Path)
}

func TestFindCSVFilesMissingDirectory(t *testing.T) {
	_, err := NewDiscovery(t.TempDir()).FindCSVFiles("missing")
	assert.ErrorContains(t, err, "failed to read directory")
}
