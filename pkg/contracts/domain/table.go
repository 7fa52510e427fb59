package domain

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrDuplicateColumn is returned when two columns share a name
	ErrDuplicateColumn = errors.New("duplicate column name")

	// ErrColumnNotFound is returned when a named column is absent
	ErrColumnNotFound = errors.New("column not found")

	// ErrRowLength is returned when a row does not match the table width
	ErrRowLength = errors.New("row length does not match column count")
)

// Table is an ordered set of named columns and rows of values.
// Column names are unique within a table.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// NewTable creates an empty table with the given columns
func NewTable(columns []string) (*Table, error) {
	t := &Table{
		columns: make([]string, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for _, name := range columns {
		if _, exists := t.index[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, name)
		}
		t.index[name] = len(t.columns)
		t.columns = append(t.columns, name)
	}
	return t, nil
}

// MustNewTable is like NewTable but panics on duplicate columns.
// Intended for tests and static schemas.
func MustNewTable(columns ...string) *Table {
	t, err := NewTable(columns)
	if err != nil {
		panic(err)
	}
	return t
}

// Columns returns a copy of the column names in order
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Width returns the number of columns
func (t *Table) Width() int {
	return len(t.columns)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// HasColumn reports whether the table has the named column
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// RequireColumns returns ErrColumnNotFound naming the first absent column
func (t *Table) RequireColumns(names ...string) error {
	for _, name := range names {
		if !t.HasColumn(name) {
			return fmt.Errorf("%w: %s", ErrColumnNotFound, name)
		}
	}
	return nil
}

// AppendRow adds a row. The slice is copied.
func (t *Table) AppendRow(values []Value) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("%w: got %d, want %d", ErrRowLength, len(values), len(t.columns))
	}
	row := make([]Value, len(values))
	copy(row, values)
	t.rows = append(t.rows, row)
	return nil
}

// Row returns a copy of the i-th row
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Get returns the value at row i in the named column, or Missing if the
// column does not exist.
func (t *Table) Get(i int, column string) Value {
	idx, ok := t.index[column]
	if !ok {
		return Missing
	}
	return t.rows[i][idx]
}

// Set replaces the value at row i in the named column
func (t *Table) Set(i int, column string, v Value) error {
	idx, ok := t.index[column]
	if !ok {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}
	t.rows[i][idx] = v
	return nil
}

// Column returns a copy of every value in the named column
func (t *Table) Column(name string) ([]Value, error) {
	idx, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	out := make([]Value, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[idx]
	}
	return out, nil
}

// SetColumn replaces the named column, appending it as the last column if it
// does not exist yet.
func (t *Table) SetColumn(name string, values []Value) error {
	if len(values) != len(t.rows) {
		return fmt.Errorf("%w: column %s has %d values for %d rows", ErrRowLength, name, len(values), len(t.rows))
	}
	idx, ok := t.index[name]
	if !ok {
		idx = len(t.columns)
		t.index[name] = idx
		t.columns = append(t.columns, name)
		for i := range t.rows {
			t.rows[i] = append(t.rows[i], Missing)
		}
	}
	for i := range t.rows {
		t.rows[i][idx] = values[i]
	}
	return nil
}

// FillColumn sets every row of the named column to v, adding the column if needed
func (t *Table) FillColumn(name string, v Value) error {
	values := make([]Value, len(t.rows))
	for i := range values {
		values[i] = v
	}
	return t.SetColumn(name, values)
}

// RenameColumns renames every column through fn. Two columns mapping to the
// same name is rejected with ErrDuplicateColumn and leaves the table unchanged.
func (t *Table) RenameColumns(fn func(string) string) error {
	renamed := make([]string, len(t.columns))
	index := make(map[string]int, len(t.columns))
	for i, name := range t.columns {
		next := fn(name)
		if prev, exists := index[next]; exists {
			return fmt.Errorf("%w: %q and %q both become %q", ErrDuplicateColumn, t.columns[prev], name, next)
		}
		index[next] = i
		renamed[i] = next
	}
	t.columns = renamed
	t.index = index
	return nil
}

// Select returns a new table with exactly the given columns in the given
// order. Columns absent from t are filled with Missing.
func (t *Table) Select(columns []string) (*Table, error) {
	out, err := NewTable(columns)
	if err != nil {
		return nil, err
	}
	source := make([]int, len(columns))
	for j, name := range columns {
		if idx, ok := t.index[name]; ok {
			source[j] = idx
		} else {
			source[j] = -1
		}
	}
	out.rows = make([][]Value, len(t.rows))
	for i, row := range t.rows {
		next := make([]Value, len(columns))
		for j, idx := range source {
			if idx >= 0 {
				next[j] = row[idx]
			}
		}
		out.rows[i] = next
	}
	return out, nil
}

// Filter returns a new table holding the rows for which keep returns true
func (t *Table) Filter(keep func(i int) bool) *Table {
	out := t.emptyCopy()
	for i, row := range t.rows {
		if keep(i) {
			next := make([]Value, len(row))
			copy(next, row)
			out.rows = append(out.rows, next)
		}
	}
	return out
}

// Map rewrites every cell through fn in place
func (t *Table) Map(fn func(v Value) Value) {
	for _, row := range t.rows {
		for j := range row {
			row[j] = fn(row[j])
		}
	}
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	return t.Filter(func(int) bool { return true })
}

// SortStable orders rows in place, keeping the relative order of rows that
// cmp reports as equal.
func (t *Table) SortStable(cmp func(a, b []Value) int) {
	slices.SortStableFunc(t.rows, cmp)
}

// CompareBy builds a row comparator over the named columns, in priority
// order, using Value.Compare. Unknown columns are ignored.
func (t *Table) CompareBy(columns ...string) func(a, b []Value) int {
	idx := make([]int, 0, len(columns))
	for _, name := range columns {
		if i, ok := t.index[name]; ok {
			idx = append(idx, i)
		}
	}
	return func(a, b []Value) int {
		for _, i := range idx {
			if c := a[i].Compare(b[i]); c != 0 {
				return c
			}
		}
		return 0
	}
}

// Append adds all rows of other, which must have identical columns
func (t *Table) Append(other *Table) error {
	if len(other.columns) != len(t.columns) {
		return fmt.Errorf("%w: cannot append %d columns to %d", ErrRowLength, len(other.columns), len(t.columns))
	}
	for j, name := range other.columns {
		if t.columns[j] != name {
			return fmt.Errorf("column mismatch at position %d: %s != %s", j, name, t.columns[j])
		}
	}
	for _, row := range other.rows {
		next := make([]Value, len(row))
		copy(next, row)
		t.rows = append(t.rows, next)
	}
	return nil
}

// Records returns the table body as strings, missing values rendered empty
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.rows))
	for i, row := range t.rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = v.String()
		}
		out[i] = rec
	}
	return out
}

func (t *Table) emptyCopy() *Table {
	out := &Table{
		columns: make([]string, len(t.columns)),
		index:   make(map[string]int, len(t.index)),
	}
	copy(out.columns, t.columns)
	for k, v := range t.index {
		out.index[k] = v
	}
	return out
}
