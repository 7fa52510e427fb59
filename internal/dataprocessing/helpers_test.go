package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"soiagi/pkg/contracts/domain"
)

func newTable(t *testing.T, columns []string, rows ...[]string) *domain.Table {
	t.Helper()
	table, err := domain.NewTable(columns)
	require.NoError(t, err)
	for _, r := range rows {
		values := make([]domain.Value, len(r))
		for i, c := range r {
			values[i] = domain.ParseCell(c)
		}
		require.NoError(t, table.AppendRow(values))
	}
	return table
}

func newDictionary(t *testing.T, names ...string) *domain.VariableDictionary {
	t.Helper()
	vars := make([]domain.Variable, len(names))
	for i, n := range names {
		vars[i] = domain.Variable{Name: n, Description: "desc " + n}
	}
	dict, err := domain.NewVariableDictionary(vars)
	require.NoError(t, err)
	return dict
}

func column(t *testing.T, table *domain.Table, name string) []string {
	t.Helper()
	values, err := table.Column(name)
	require.NoError(t, err)
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
