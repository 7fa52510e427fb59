package files

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignYear(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"09zpallagi.csv", "2009"},
		{"10zpallagi.csv", "2010"},
		{"21zpallagi.csv", "2021"},
		{"15", "2015"},
		{"08zpallagi.csv", UnknownYear},
		{"22zpallagi.csv", UnknownYear},
		{"zpallagi.csv", UnknownYear},
		{"9", UnknownYear},
		{"", UnknownYear},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, AssignYear(tt.filename))
		})
	}
}

func TestKnownYears(t *testing.T) {
	years := KnownYears()
	require.Len(t, years, 13)
	assert.Equal(t, "2009", years[0])
	assert.Equal(t, "2021", years[12])
}

func TestFindPeriodCSVFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "21zpallagi.csv", "10zpallagi.csv", "09zpallagi.csv", "zpallagi.csv", "12zpallagi.txt")

	t.Run("selected years", func(t *testing.T) {
		periods, err := FindPeriodCSVFiles(dir, []string{"2021", "2009"})
		require.NoError(t, err)
		require.Len(t, periods, 2)
		assert.Equal(t, "09zpallagi.csv", periods[0].Name)
		assert.Equal(t, "2009", periods[0].Year)
		assert.Equal(t, "21zpallagi.csv", periods[1].Name)
		assert.Equal(t, "2021", periods[1].Year)
	})

	t.Run("all known years", func(t *testing.T) {
		periods, err := FindPeriodCSVFiles(dir, nil)
		require.NoError(t, err)
		require.Len(t, periods, 3)
		assert.Equal(t, []string{"2009", "2010", "2021"}, []string{periods[0].Year, periods[1].Year, periods[2].Year})
	})

	t.Run("unknown year never selected", func(t *testing.T) {
		periods, err := FindPeriodCSVFiles(dir, []string{UnknownYear})
		require.NoError(t, err)
		assert.Empty(t, periods)
	})

	t.Run("skipped files", func(t *testing.T) {
		skipped, err := SkippedFiles(dir, []string{"2021"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"zpallagi.csv":   "unknown year code",
			"09zpallagi.csv": "year 2009 not selected",
			"10zpallagi.csv": "year 2010 not selected",
		}, skipped)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := FindPeriodCSVFiles(dir+"/missing", nil)
		assert.Error(t, err)
	})
}
