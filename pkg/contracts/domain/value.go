package domain

import (
	"cmp"
	"math"
	"strconv"
	"strings"
)

// Value is a single table cell. The zero Value is the missing marker.
type Value struct {
	raw   string
	valid bool
}

// Missing is the explicit missing marker
var Missing = Value{}

// String creates a present value holding s
func String(s string) Value {
	return Value{raw: s, valid: true}
}

// ParseCell converts a raw CSV cell into a Value. Empty cells are missing.
func ParseCell(cell string) Value {
	if strings.TrimSpace(cell) == "" {
		return Missing
	}
	return String(cell)
}

// IsMissing reports whether the value is the missing marker
func (v Value) IsMissing() bool {
	return !v.valid
}

// String returns the raw text, or an empty string for missing values
func (v Value) String() string {
	return v.raw
}

// Float interprets the value as a decimal number
func (v Value) Float() (float64, bool) {
	if !v.valid {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.raw), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Equal compares two values, treating two missing values as equal
func (v Value) Equal(other Value) bool {
	return v.valid == other.valid && v.raw == other.raw
}

// Compare orders two values: numbers first in numeric order, then other
// strings in lexical order. Missing values sort after everything else.
func (v Value) Compare(other Value) int {
	switch {
	case v.IsMissing() && other.IsMissing():
		return 0
	case v.IsMissing():
		return 1
	case other.IsMissing():
		return -1
	}

	a, aNum := v.number()
	b, bNum := other.number()
	switch {
	case aNum && bNum:
		return cmp.Compare(a, b)
	case aNum:
		return -1
	case bNum:
		return 1
	}
	return strings.Compare(v.raw, other.raw)
}

// number is Float without NaN, which has no place in a total order
func (v Value) number() (float64, bool) {
	f, ok := v.Float()
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
