package mapping

import (
	apperrors "soiagi/internal/errors"
	"soiagi/pkg/contracts/domain"
)

// ListParser splits a list-like cell into its elements
type ListParser func(cell string) []string

// Explode returns a table with one row per element of the list in column.
// Other columns are copied to every produced row. Rows whose list is empty
// or missing are dropped. Row order is preserved, elements in list order.
func Explode(table *domain.Table, column string, parse ListParser) (*domain.Table, error) {
	if err := table.RequireColumns(column); err != nil {
		return nil, apperrors.NewSchemaError("cannot explode list column", err).
			WithContext("column", column)
	}

	out := table.Filter(func(int) bool { return false })
	for i := 0; i < table.Len(); i++ {
		cell := table.Get(i, column)
		if cell.IsMissing() {
			continue
		}
		base := table.Row(i)
		for _, element := range parse(cell.String()) {
			next := make([]domain.Value, len(base))
			copy(next, base)
			if err := out.AppendRow(next); err != nil {
				return nil, err
			}
			if err := out.Set(out.Len()-1, column, domain.String(element)); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
