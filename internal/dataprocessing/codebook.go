package dataprocessing

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"soiagi/internal/errors"
	"soiagi/pkg/contracts/domain"
)

const (
	// DefaultCodebookSheet is the sheet listing the selected variables
	DefaultCodebookSheet = "SelectedVars"

	variableHeader    = "variable"
	descriptionHeader = "description"
)

// ReadCodebook reads the (Variable, Description) pairs of a codebook sheet
// into a VariableDictionary. The first row is the header; other columns are
// ignored.
func ReadCodebook(path, sheet string) (*domain.VariableDictionary, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewInputError(path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = DefaultCodebookSheet
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, errors.NewSchemaError(fmt.Sprintf("codebook has no sheet %q", sheet), err).
			WithContext("path", path).
			WithContext("sheets", f.GetSheetList())
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}
	if len(rows) == 0 {
		return nil, errors.NewSchemaError(fmt.Sprintf("sheet %q is empty", sheet), nil)
	}

	varCol, descCol := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case variableHeader:
			varCol = i
		case descriptionHeader:
			descCol = i
		}
	}
	if varCol < 0 || descCol < 0 {
		return nil, errors.NewSchemaError(
			fmt.Sprintf("sheet %q must have Variable and Description columns", sheet), nil).
			WithContext("header", rows[0])
	}

	vars := make([]domain.Variable, 0, len(rows)-1)
	for _, row := range rows[1:] {
		vars = append(vars, domain.Variable{
			Name:        cell(row, varCol),
			Description: strings.TrimSpace(cell(row, descCol)),
		})
	}

	dict, err := domain.NewVariableDictionary(vars)
	if err != nil {
		return nil, errors.NewSchemaError(fmt.Sprintf("sheet %q lists no variables", sheet), err)
	}
	return dict, nil
}

// excelize trims trailing empty cells, so rows can be shorter than the header
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
