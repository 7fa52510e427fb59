package geocode

import (
	apperrors "soiagi/internal/errors"
	"soiagi/internal/mapping"
	"soiagi/pkg/contracts/domain"
)

// Column names of the tract crosswalk and its mode table
const (
	CrosswalkTractColumn = "tract"
	CrosswalkZipColumn   = "zip"
	ModeCountColumn      = "count"
)

// PrevalentZipResult is the outcome of assigning each energy usage row the
// most prevalent ZIP of its census tract.
type PrevalentZipResult struct {
	// Enriched is the energy table with tract and zip columns set
	Enriched *domain.Table
	// Missing holds the enriched rows that received no ZIP
	Missing *domain.Table
	// Modes is the resolved tract to ZIP table
	Modes *domain.Table
	// Report is the coverage of the zip join
	Report mapping.Report
	// InvalidBlocks counts rows whose census block could not yield a tract
	InvalidBlocks int
}

// TractZipModes explodes the crosswalk's list-valued zip column and resolves
// the most prevalent ZIP per tract. Tracts and ZIPs are normalized before
// counting so "75001" and "75001.0" are one candidate.
func TractZipModes(crosswalk *domain.Table) ([]mapping.ModeResult, error) {
	if err := crosswalk.RequireColumns(CrosswalkTractColumn, CrosswalkZipColumn); err != nil {
		return nil, apperrors.NewSchemaError("tract crosswalk is missing a required column", err)
	}

	exploded, err := mapping.Explode(crosswalk, CrosswalkZipColumn, ParseZipList)
	if err != nil {
		return nil, err
	}

	normalized, err := domain.NewTable([]string{CrosswalkTractColumn, CrosswalkZipColumn})
	if err != nil {
		return nil, err
	}
	for i := 0; i < exploded.Len(); i++ {
		tract := normalizedValue(exploded.Get(i, CrosswalkTractColumn), NormalizeTract)
		zip := normalizedValue(exploded.Get(i, CrosswalkZipColumn), NormalizeZip)
		if err := normalized.AppendRow([]domain.Value{tract, zip}); err != nil {
			return nil, err
		}
	}

	return mapping.ResolveMode(normalized, CrosswalkTractColumn, CrosswalkZipColumn)
}

// AssignPrevalentZip derives each energy row's tract from its census block
// and maps it to the tract's most prevalent ZIP.
func AssignPrevalentZip(energy, crosswalk *domain.Table) (*PrevalentZipResult, error) {
	if err := energy.RequireColumns(domain.ColumnCensusBlock); err != nil {
		return nil, apperrors.NewSchemaError("energy usage table is missing a required column", err)
	}

	modes, err := TractZipModes(crosswalk)
	if err != nil {
		return nil, err
	}
	modeTable, err := mapping.ModeTable(modes, CrosswalkTractColumn, CrosswalkZipColumn, ModeCountColumn)
	if err != nil {
		return nil, err
	}

	enriched := energy.Clone()
	tracts := make([]domain.Value, enriched.Len())
	invalid := 0
	for i := range tracts {
		block := enriched.Get(i, domain.ColumnCensusBlock)
		if block.IsMissing() {
			invalid++
			continue
		}
		tract, ok := TractFromCensusBlock(block.String())
		if !ok {
			invalid++
			continue
		}
		tracts[i] = domain.String(tract)
	}
	if err := enriched.SetColumn(domain.ColumnTract, tracts); err != nil {
		return nil, err
	}

	report, err := mapping.Apply(enriched, mapping.Enrichment[string]{
		KeyColumn: domain.ColumnTract,
		Mapping:   mapping.FromModes(modes, NormalizeTract),
		Columns:   []string{domain.ColumnZip},
		Project:   mapping.Single,
	})
	if err != nil {
		return nil, err
	}

	return &PrevalentZipResult{
		Enriched:      enriched,
		Missing:       rowsAt(enriched, report.UnmappedRows),
		Modes:         modeTable,
		Report:        report,
		InvalidBlocks: invalid,
	}, nil
}

func normalizedValue(v domain.Value, normalize mapping.KeyNormalizer) domain.Value {
	if v.IsMissing() {
		return domain.Missing
	}
	key, ok := normalize(v.String())
	if !ok {
		return domain.Missing
	}
	return domain.String(key)
}

func rowsAt(table *domain.Table, rows []int) *domain.Table {
	want := make(map[int]struct{}, len(rows))
	for _, i := range rows {
		want[i] = struct{}{}
	}
	return table.Filter(func(i int) bool {
		_, ok := want[i]
		return ok
	})
}
