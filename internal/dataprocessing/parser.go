package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"soiagi/internal/errors"
	"soiagi/pkg/contracts/domain"
)

const utf8BOM = "\ufeff"

// ReadCSVTable loads a CSV file with a header row into a Table. Empty cells
// become missing values. Short rows are padded with missing values.
func ReadCSVTable(path string) (*domain.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewInputError(path, err)
	}
	defer file.Close()

	table, err := ParseCSV(file)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return nil, appErr.WithContext("path", path)
		}
		return nil, err
	}
	return table, nil
}

// ParseCSV reads a header row and records from r
func ParseCSV(r io.Reader) (*domain.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewSchemaError("csv has no header row", nil)
	}
	if err != nil {
		return nil, errors.NewParsingError("failed to read csv header", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}
	if len(columns) > 0 {
		columns[0] = strings.TrimPrefix(columns[0], utf8BOM)
	}

	table, err := domain.NewTable(columns)
	if err != nil {
		return nil, errors.NewSchemaError("csv header has duplicate columns", err)
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("failed to read csv record %d", line), err)
		}
		if len(record) > len(columns) {
			return nil, errors.NewParsingError(
				fmt.Sprintf("record %d has %d fields, header has %d", line, len(record), len(columns)), nil)
		}
		row := make([]domain.Value, len(columns))
		for i, c := range record {
			row[i] = domain.ParseCell(c)
		}
		if err := table.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return table, nil
}
