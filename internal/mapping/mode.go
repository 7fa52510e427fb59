package mapping

import (
	"strconv"

	apperrors "soiagi/internal/errors"
	"soiagi/pkg/contracts/domain"
)

// ModeResult is the most frequent secondary key of one primary key
type ModeResult struct {
	Primary   string
	Secondary string
	Count     int
}

type candidate struct {
	secondary string
	count     int
}

// ResolveMode groups rows by (primary, secondary), counts them and selects,
// for each primary key, the secondary key with the strictly greatest count.
// Ties go to the secondary key seen first for that primary in row order.
// Results are ordered by first appearance of the primary key. Rows with a
// missing primary or secondary are ignored.
func ResolveMode(table *domain.Table, primaryColumn, secondaryColumn string) ([]ModeResult, error) {
	if err := table.RequireColumns(primaryColumn, secondaryColumn); err != nil {
		return nil, apperrors.NewSchemaError("cannot resolve mode", err).
			WithContext("primary_column", primaryColumn).
			WithContext("secondary_column", secondaryColumn)
	}

	var order []string
	groups := make(map[string][]candidate)
	positions := make(map[string]map[string]int)

	for i := 0; i < table.Len(); i++ {
		p, s := table.Get(i, primaryColumn), table.Get(i, secondaryColumn)
		if p.IsMissing() || s.IsMissing() {
			continue
		}
		primary, secondary := p.String(), s.String()

		pos, seen := positions[primary]
		if !seen {
			pos = make(map[string]int)
			positions[primary] = pos
			order = append(order, primary)
		}
		if j, ok := pos[secondary]; ok {
			groups[primary][j].count++
			continue
		}
		pos[secondary] = len(groups[primary])
		groups[primary] = append(groups[primary], candidate{secondary: secondary, count: 1})
	}

	results := make([]ModeResult, 0, len(order))
	for _, primary := range order {
		best := groups[primary][0]
		for _, c := range groups[primary][1:] {
			if c.count > best.count {
				best = c
			}
		}
		results = append(results, ModeResult{Primary: primary, Secondary: best.secondary, Count: best.count})
	}
	return results, nil
}

// FromModes builds a primary to secondary mapping from resolved modes
func FromModes(results []ModeResult, normalize KeyNormalizer) *Mapping[string] {
	b := NewBuilder[string](FirstWins, normalize)
	for _, r := range results {
		b.Add(r.Primary, r.Secondary)
	}
	return b.Build()
}

// ModeTable renders resolved modes as a table with the given column names
// and a trailing count column.
func ModeTable(results []ModeResult, primaryColumn, secondaryColumn, countColumn string) (*domain.Table, error) {
	table, err := domain.NewTable([]string{primaryColumn, secondaryColumn, countColumn})
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		if err := table.AppendRow([]domain.Value{
			domain.String(r.Primary),
			domain.String(r.Secondary),
			domain.String(strconv.Itoa(r.Count)),
		}); err != nil {
			return nil, err
		}
	}
	return table, nil
}
