package mapping

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

func columnStrings(t *testing.T, table *domain.Table, column string) []string {
	t.Helper()
	values, err := table.Column(column)
	require.NoError(t, err)
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
