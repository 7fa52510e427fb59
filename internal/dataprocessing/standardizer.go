package dataprocessing

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"soiagi/internal/errors"
	"soiagi/pkg/contracts/domain"
)

// Standardizer projects arbitrary extracts onto the canonical schema
type Standardizer struct {
	dict  *domain.VariableDictionary
	upper cases.Caser
}

// NewStandardizer creates a standardizer for dict
func NewStandardizer(dict *domain.VariableDictionary) *Standardizer {
	return &Standardizer{
		dict:  dict,
		upper: cases.Upper(language.Und),
	}
}

// NormalizeHeader uppercases a column name for case-insensitive matching
func (s *Standardizer) NormalizeHeader(name string) string {
	return s.upper.String(strings.TrimSpace(name))
}

// Columns returns the canonical column order
func (s *Standardizer) Columns() []string {
	return s.dict.Names()
}

// Standardize returns a table whose columns are exactly the dictionary's
// variables in dictionary order. Headers are matched case-insensitively,
// absent variables are filled with missing values and unknown columns are
// dropped. Two headers that uppercase to the same name are a SCHEMA error.
// The input table is not modified.
func (s *Standardizer) Standardize(table *domain.Table) (*domain.Table, error) {
	renamed := table.Clone()
	if err := renamed.RenameColumns(s.NormalizeHeader); err != nil {
		return nil, errors.NewSchemaError("input columns collide after case normalization", err).
			WithContext("columns", table.Columns())
	}

	out, err := renamed.Select(s.dict.Names())
	if err != nil {
		return nil, errors.NewSchemaError("cannot project onto the variable dictionary", err)
	}
	return out, nil
}

// MissingColumns lists the dictionary variables absent from table
func (s *Standardizer) MissingColumns(table *domain.Table) []string {
	present := make(map[string]struct{}, table.Width())
	for _, name := range table.Columns() {
		present[s.NormalizeHeader(name)] = struct{}{}
	}
	var missing []string
	for _, name := range s.dict.Names() {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
