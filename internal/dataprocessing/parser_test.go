package dataprocessing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soiagi/internal/errors"
)

func TestParseCSV(t *testing.T) {
	input := "\ufeffSTATEFIPS, zipcode ,agi_stub\n48,75001,1\n48,,2\n06,94103\n"

	table, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"STATEFIPS", "zipcode", "agi_stub"}, table.Columns())
	assert.Equal(t, 3, table.Len())
	assert.True(t, table.Get(1, "zipcode").IsMissing())
	assert.True(t, table.Get(2, "agi_stub").IsMissing(), "short rows padded")
	assert.Equal(t, "06", table.Get(2, "STATEFIPS").String(), "cells kept as text")
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType errors.ErrorType
	}{
		{name: "empty input", input: "", wantType: errors.ErrTypeSchema},
		{name: "duplicate header", input: "a,b,a\n1,2,3\n", wantType: errors.ErrTypeSchema},
		{name: "long record", input: "a,b\n1,2,3\n", wantType: errors.ErrTypeParsing},
		{name: "bad quoting", input: "a,b\n\"1,2\n", wantType: errors.ErrTypeParsing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func TestReadCSVTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "21zpallagi.csv")
	require.NoError(t, os.WriteFile(path, []byte("STATE,ZIPCODE\nTX,75001\n"), 0644))

	table, err := ReadCSVTable(path)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	_, err = ReadCSVTable(filepath.Join(dir, "absent.csv"))
	assert.True(t, errors.IsType(err, errors.ErrTypeInput))
}
