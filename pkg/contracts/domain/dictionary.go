package domain

import (
	"errors"
	"strings"
)

// ErrEmptyDictionary is returned when a dictionary has no variables
var ErrEmptyDictionary = errors.New("variable dictionary is empty")

// Variable is one canonical column of the standardized schema
type Variable struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// VariableDictionary is an ordered, immutable set of canonical variables.
// Names are uppercase and unique; order defines standardized column order.
type VariableDictionary struct {
	vars  []Variable
	index map[string]int
}

// NewVariableDictionary builds a dictionary from ordered variables.
// Names are uppercased and trimmed. Blank names are skipped; a repeated name
// keeps its first position and takes the later description.
func NewVariableDictionary(vars []Variable) (*VariableDictionary, error) {
	d := &VariableDictionary{index: make(map[string]int, len(vars))}
	for _, v := range vars {
		name := strings.ToUpper(strings.TrimSpace(v.Name))
		if name == "" {
			continue
		}
		if i, exists := d.index[name]; exists {
			d.vars[i].Description = v.Description
			continue
		}
		d.index[name] = len(d.vars)
		d.vars = append(d.vars, Variable{Name: name, Description: v.Description})
	}
	if len(d.vars) == 0 {
		return nil, ErrEmptyDictionary
	}
	return d, nil
}

// Names returns the variable names in dictionary order
func (d *VariableDictionary) Names() []string {
	out := make([]string, len(d.vars))
	for i, v := range d.vars {
		out[i] = v.Name
	}
	return out
}

// Len returns the number of variables
func (d *VariableDictionary) Len() int {
	return len(d.vars)
}

// Has reports whether name is a canonical variable
func (d *VariableDictionary) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Variables returns a copy of the ordered variables
func (d *VariableDictionary) Variables() []Variable {
	out := make([]Variable, len(d.vars))
	copy(out, d.vars)
	return out
}
