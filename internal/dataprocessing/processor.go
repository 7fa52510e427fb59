package dataprocessing

import (
	"strconv"

	"soiagi/internal/errors"
	"soiagi/pkg/contracts/domain"
)

// DefaultSentinel is the placeholder upstream extracts use for an exact zero
const DefaultSentinel = 0.0001

// NormalizeSentinel rewrites every cell numerically equal to sentinel to "0"
// and returns how many cells changed.
func NormalizeSentinel(table *domain.Table, sentinel float64) int {
	replaced := 0
	table.Map(func(v domain.Value) domain.Value {
		if f, ok := v.Float(); ok && f == sentinel {
			replaced++
			return domain.String("0")
		}
		return v
	})
	return replaced
}

// FilterJurisdiction keeps the rows whose column equals code
func FilterJurisdiction(table *domain.Table, column, code string) (*domain.Table, error) {
	if err := table.RequireColumns(column); err != nil {
		return nil, errors.NewSchemaError("cannot filter by jurisdiction", err).
			WithContext("column", column)
	}
	return table.Filter(func(i int) bool {
		v := table.Get(i, column)
		return !v.IsMissing() && v.String() == code
	}), nil
}

// StampPeriod sets the YEAR column of every row, appending it if absent
func StampPeriod(table *domain.Table, year string) error {
	return table.FillColumn(domain.ColumnYear, domain.String(year))
}

// Processor prepares one standardized period table
type Processor struct {
	standardizer *Standardizer
	sentinel     float64
}

// NewProcessor creates a processor. A zero sentinel means DefaultSentinel.
func NewProcessor(standardizer *Standardizer, sentinel float64) *Processor {
	if sentinel == 0 {
		sentinel = DefaultSentinel
	}
	return &Processor{standardizer: standardizer, sentinel: sentinel}
}

// ProcessResult describes one prepared period table
type ProcessResult struct {
	Table           *domain.Table
	Year            string
	InputRows       int
	SentinelsZeroed int
	MissingColumns  []string
}

// Prepare standardizes a raw extract, zeroes sentinels and stamps the year
func (p *Processor) Prepare(raw *domain.Table, year string) (*ProcessResult, error) {
	missing := p.standardizer.MissingColumns(raw)
	table, err := p.standardizer.Standardize(raw)
	if err != nil {
		return nil, err
	}
	zeroed := NormalizeSentinel(table, p.sentinel)
	if err := StampPeriod(table, year); err != nil {
		return nil, err
	}
	return &ProcessResult{
		Table:           table,
		Year:            year,
		InputRows:       raw.Len(),
		SentinelsZeroed: zeroed,
		MissingColumns:  missing,
	}, nil
}

// FormatSentinel renders a sentinel for logs and config dumps
func FormatSentinel(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
