package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "soiagi/internal/errors"
)

func TestResolveModeTieBreaksByFirstSeen(t *testing.T) {
	// T1: B, A, A, B gives A=2 and B=2 with B first
	table := newTable(t, []string{"tract", "zip"},
		[]string{"T1", "B"},
		[]string{"T1", "A"},
		[]string{"T1", "A"},
		[]string{"T1", "B"},
	)

	results, err := ResolveMode(table, "tract", "zip")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, ModeResult{Primary: "T1", Secondary: "B", Count: 2}, results[0])
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want []ModeResult
	}{
		{
			name: "strict maximum wins over first seen",
			rows: [][]string{{"T1", "A"}, {"T1", "B"}, {"T1", "B"}},
			want: []ModeResult{{Primary: "T1", Secondary: "B", Count: 2}},
		},
		{
			name: "single candidate",
			rows: [][]string{{"T1", "A"}},
			want: []ModeResult{{Primary: "T1", Secondary: "A", Count: 1}},
		},
		{
			name: "primaries in first appearance order",
			rows: [][]string{{"T2", "C"}, {"T1", "A"}, {"T2", "D"}, {"T2", "D"}},
			want: []ModeResult{
				{Primary: "T2", Secondary: "D", Count: 2},
				{Primary: "T1", Secondary: "A", Count: 1},
			},
		},
		{
			name: "missing cells ignored",
			rows: [][]string{{"", "A"}, {"T1", ""}, {"T1", "B"}},
			want: []ModeResult{{Primary: "T1", Secondary: "B", Count: 1}},
		},
		{
			name: "three way tie picks first",
			rows: [][]string{{"T1", "C"}, {"T1", "B"}, {"T1", "A"}},
			want: []ModeResult{{Primary: "T1", Secondary: "C", Count: 1}},
		},
		{
			name: "empty table",
			rows: nil,
			want: []ModeResult{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := newTable(t, []string{"tract", "zip"}, tt.rows...)
			results, err := ResolveMode(table, "tract", "zip")
			require.NoError(t, err)
			assert.Equal(t, tt.want, results)
		})
	}
}

func TestResolveModeMissingColumn(t *testing.T) {
	table := newTable(t, []string{"tract"})
	_, err := ResolveMode(table, "tract", "zip")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
}

func TestFromModesAndModeTable(t *testing.T) {
	results := []ModeResult{
		{Primary: "T1", Secondary: "75001", Count: 3},
		{Primary: "T2", Secondary: "75002", Count: 1},
	}

	m := FromModes(results, nil)
	v, ok := m.Lookup("T1")
	assert.True(t, ok)
	assert.Equal(t, "75001", v)
	assert.Equal(t, 2, m.Len())

	table, err := ModeTable(results, "tract", "zip", "count")
	require.NoError(t, err)
	assert.Equal(t, []string{"tract", "zip", "count"}, table.Columns())
	assert.Equal(t, [][]string{{"T1", "75001", "3"}, {"T2", "75002", "1"}}, table.Records())
}
