package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCell(t *testing.T) {
	assert.True(t, ParseCell("").IsMissing())
	assert.True(t, ParseCell("   ").IsMissing())
	assert.False(t, ParseCell("0").IsMissing())
	assert.Equal(t, " a ", ParseCell(" a ").String())
}

func TestValueCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{name: "numeric", a: String("9"), b: String("10"), want: -1},
		{name: "numeric equal", a: String("1.0"), b: String("1"), want: 0},
		{name: "string", a: String("CA"), b: String("TX"), want: -1},
		{name: "number before string", a: String("10"), b: String("1x"), want: -1},
		{name: "string after number", a: String("1x"), b: String("2"), want: 1},
		{name: "NaN is a string", a: String("NaN"), b: String("3"), want: 1},
		{name: "missing last", a: Missing, b: String("1"), want: 1},
		{name: "present before missing", a: String("1"), b: Missing, want: -1},
		{name: "both missing", a: Missing, b: Missing, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Compare(tt.b))
		})
	}
}

func TestValueFloat(t *testing.T) {
	f, ok := String("0.0001").Float()
	assert.True(t, ok)
	assert.Equal(t, 0.0001, f)

	_, ok = String("TX").Float()
	assert.False(t, ok)

	_, ok = Missing.Float()
	assert.False(t, ok)
}
