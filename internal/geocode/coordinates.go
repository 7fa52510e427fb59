package geocode

import (
	apperrors "soiagi/internal/errors"
	"soiagi/internal/mapping"
	"soiagi/pkg/contracts/domain"
)

// CoordinateTable is a parsed ZIP to coordinate reference
type CoordinateTable struct {
	Mapping *mapping.Mapping[domain.Coordinate]
	// Malformed counts rows skipped for an unusable zip or latlong
	Malformed int
}

// BuildCoordinateMapping parses the curated ZIP table. Each row carries a
// zip and a combined latlong string; a repeated ZIP keeps the last row.
func BuildCoordinateMapping(table *domain.Table) (*CoordinateTable, error) {
	if err := table.RequireColumns(domain.ColumnZip, domain.ColumnLatLong); err != nil {
		return nil, apperrors.NewSchemaError("coordinate table is missing a required column", err)
	}

	b := mapping.NewBuilder[domain.Coordinate](mapping.LastWins, NormalizeZip)
	malformed := 0
	for i := 0; i < table.Len(); i++ {
		zip, latlong := table.Get(i, domain.ColumnZip), table.Get(i, domain.ColumnLatLong)
		if zip.IsMissing() || latlong.IsMissing() {
			malformed++
			continue
		}
		coord, err := SplitLatLong(latlong.String())
		if err != nil {
			malformed++
			continue
		}
		if !b.Add(zip.String(), coord) {
			malformed++
		}
	}
	return &CoordinateTable{Mapping: b.Build(), Malformed: malformed}, nil
}

// CoordinatesResult is the outcome of attaching coordinates to a table
type CoordinatesResult struct {
	Enriched  *domain.Table
	Report    mapping.Report
	Malformed int
	// Collisions counts repeated ZIPs resolved by Policy
	Collisions int
	Policy     mapping.CollisionPolicy
}

// AttachCoordinates adds Latitude and Longitude columns to a ZIP-keyed
// table. The input table is not modified.
func AttachCoordinates(target, reference *domain.Table) (*CoordinatesResult, error) {
	coords, err := BuildCoordinateMapping(reference)
	if err != nil {
		return nil, err
	}

	enriched := target.Clone()
	report, err := mapping.Apply(enriched, mapping.Enrichment[domain.Coordinate]{
		KeyColumn: domain.ColumnZip,
		Mapping:   coords.Mapping,
		Columns:   []string{domain.ColumnLatitude, domain.ColumnLongitude},
		Project: func(c domain.Coordinate) []domain.Value {
			return []domain.Value{domain.String(c.Latitude), domain.String(c.Longitude)}
		},
	})
	if err != nil {
		return nil, err
	}

	return &CoordinatesResult{
		Enriched:   enriched,
		Report:     report,
		Malformed:  coords.Malformed,
		Collisions: coords.Mapping.Collisions(),
		Policy:     coords.Mapping.Policy(),
	}, nil
}
