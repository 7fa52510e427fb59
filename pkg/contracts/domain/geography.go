package domain

// Canonical column names shared by the geocoding pipelines
const (
	ColumnCensusBlock = "CENSUS BLOCK"
	ColumnTract       = "tract"
	ColumnZip         = "zip"
	ColumnLatLong     = "latlong"
	ColumnLatitude    = "Latitude"
	ColumnLongitude   = "Longitude"
)

// Canonical columns of the standardized AGI extracts
const (
	ColumnState     = "STATE"
	ColumnStateFIPS = "STATEFIPS"
	ColumnZipCode   = "ZIPCODE"
	ColumnYear      = "YEAR"
	ColumnAGIStub   = "AGI_STUB"
)

// MasterSortKey is the composite ordering of master tables:
// jurisdiction, location, period, income bracket.
var MasterSortKey = []string{ColumnStateFIPS, ColumnZipCode, ColumnYear, ColumnAGIStub}

// Coordinate is a latitude/longitude pair kept as decimal strings
type Coordinate struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}
