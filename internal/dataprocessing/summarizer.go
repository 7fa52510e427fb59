package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"soiagi/internal/errors"
	"soiagi/pkg/contracts/domain"
)

// PeriodTable is one standardized extract stamped with its year
type PeriodTable struct {
	Year   string
	Source string
	Table  *domain.Table
}

// MasterAggregator concatenates standardized period tables into the
// sorted master table.
type MasterAggregator struct {
	logger  *slog.Logger
	sortKey []string
}

// NewMasterAggregator creates an aggregator ordering rows by
// domain.MasterSortKey.
func NewMasterAggregator(logger *slog.Logger) *MasterAggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &MasterAggregator{
		logger:  logger.With(slog.String("component", "master_aggregator")),
		sortKey: domain.MasterSortKey,
	}
}

// Aggregate filters each period by jurisdiction (skipped when jurisdiction is
// empty), concatenates them in the given order and stable-sorts the result
// ascending by the master sort key. All periods must share one schema.
func (a *MasterAggregator) Aggregate(ctx context.Context, periods []PeriodTable, jurisdiction string) (*domain.Table, error) {
	if len(periods) == 0 {
		return nil, errors.NewAppValidationError("no period tables to aggregate")
	}

	master, err := domain.NewTable(periods[0].Table.Columns())
	if err != nil {
		return nil, err
	}

	for _, p := range periods {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		table := p.Table
		if jurisdiction != "" {
			table, err = FilterJurisdiction(p.Table, domain.ColumnState, jurisdiction)
			if err != nil {
				return nil, err
			}
		}
		if err := master.Append(table); err != nil {
			return nil, errors.NewSchemaError(fmt.Sprintf("period %s from %s does not match the master schema", p.Year, p.Source), err)
		}

		a.logger.DebugContext(ctx, "period appended to master",
			slog.String("year", p.Year),
			slog.String("source", p.Source),
			slog.Int("rows", table.Len()),
			slog.Int("input_rows", p.Table.Len()))
	}

	master.SortStable(master.CompareBy(a.sortKey...))

	a.logger.InfoContext(ctx, "master table built",
		slog.Int("periods", len(periods)),
		slog.Int("rows", master.Len()),
		slog.String("jurisdiction", jurisdiction))

	return master, nil
}

// MasterFileName returns the output name of a master table: allagi_<CODE>.csv
// when filtered by a jurisdiction, allagi.csv otherwise.
func MasterFileName(jurisdiction string) string {
	if jurisdiction == "" {
		return "allagi.csv"
	}
	return fmt.Sprintf("allagi_%s.csv", jurisdiction)
}

// StandardizedFileName returns the per-extract output name
func StandardizedFileName(source string) string {
	ext := filepath.Ext(source)
	if strings.EqualFold(ext, ".csv") {
		source = strings.TrimSuffix(source, ext)
	}
	return source + "_stdz.csv"
}
