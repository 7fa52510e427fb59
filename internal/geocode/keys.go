// Package geocode resolves census tracts to ZIP codes and ZIP codes to
// coordinates for tables keyed by census geography.
package geocode

import (
	"strconv"
	"strings"

	"soiagi/internal/mapping"
)

// Identifier widths of the census geographies
const (
	ZipWidth         = 5
	TractWidth       = 11
	CensusBlockWidth = 15
)

// StripDecimal removes numeric artifacts a spreadsheet or float column
// leaves on integer identifiers: "75001.0" and "7.5001e4" both become
// "75001". Values with a genuine fractional part are returned trimmed but
// otherwise unchanged.
func StripDecimal(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.ContainsAny(s, ".eE") {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return s
	}
	return strconv.FormatInt(int64(f), 10)
}

// PadDigits strips decimal artifacts and left-pads a numeric identifier with
// zeros to width. Non-numeric or overlong identifiers are rejected.
func PadDigits(raw string, width int) (string, bool) {
	s := StripDecimal(raw)
	if s == "" || len(s) > width {
		return "", false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return strings.Repeat("0", width-len(s)) + s, true
}

// NormalizeZip canonicalizes a ZIP code to five digits
func NormalizeZip(raw string) (string, bool) {
	return PadDigits(raw, ZipWidth)
}

// NormalizeTract canonicalizes a census tract to eleven digits
func NormalizeTract(raw string) (string, bool) {
	return PadDigits(raw, TractWidth)
}

// NormalizeCensusBlock canonicalizes a census block to fifteen digits
func NormalizeCensusBlock(raw string) (string, bool) {
	return PadDigits(raw, CensusBlockWidth)
}

// TractFromCensusBlock returns the tract prefix of a census block
func TractFromCensusBlock(raw string) (string, bool) {
	block, ok := NormalizeCensusBlock(raw)
	if !ok {
		return "", false
	}
	return block[:TractWidth], true
}

var (
	_ mapping.KeyNormalizer = NormalizeZip
	_ mapping.KeyNormalizer = NormalizeTract
)
