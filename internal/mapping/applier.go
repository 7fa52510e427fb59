package mapping

import (
	apperrors "soiagi/internal/errors"
	"soiagi/pkg/contracts/domain"
)

// Enrichment describes one join: the key column of the target, the mapping
// to probe, and how a mapped value projects into output columns.
type Enrichment[V any] struct {
	KeyColumn string
	Mapping   *Mapping[V]
	Columns   []string
	// Project renders a mapped value into one Value per column
	Project func(V) []domain.Value
}

// Report describes the coverage of an applied enrichment
type Report struct {
	Rows         int
	Mapped       int
	Unmapped     int
	UnmappedRows []int
}

// Coverage returns the share of mapped rows in [0, 1]
func (r Report) Coverage() float64 {
	if r.Rows == 0 {
		return 1
	}
	return float64(r.Mapped) / float64(r.Rows)
}

// Apply looks up every row's key and writes the projected columns, adding or
// replacing them. Rows with an absent or missing key get missing in every
// enrichment column and count once as unmapped.
func Apply[V any](table *domain.Table, e Enrichment[V]) (Report, error) {
	if err := table.RequireColumns(e.KeyColumn); err != nil {
		return Report{}, apperrors.NewSchemaError("cannot apply mapping", err).
			WithContext("key_column", e.KeyColumn)
	}

	n := table.Len()
	columns := make([][]domain.Value, len(e.Columns))
	for j := range columns {
		columns[j] = make([]domain.Value, n)
	}

	report := Report{Rows: n}
	for i := 0; i < n; i++ {
		key := table.Get(i, e.KeyColumn)
		var (
			v  V
			ok bool
		)
		if !key.IsMissing() {
			v, ok = e.Mapping.Lookup(key.String())
		}
		if !ok {
			report.Unmapped++
			report.UnmappedRows = append(report.UnmappedRows, i)
			continue
		}
		report.Mapped++
		projected := e.Project(v)
		for j := range e.Columns {
			if j < len(projected) {
				columns[j][i] = projected[j]
			}
		}
	}

	for j, name := range e.Columns {
		if err := table.SetColumn(name, columns[j]); err != nil {
			return Report{}, err
		}
	}
	return report, nil
}

// Single is the projection for mappings whose value is one string column
func Single(v string) []domain.Value {
	return []domain.Value{domain.String(v)}
}
