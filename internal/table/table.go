// Package table holds the in-memory, column-oriented frame that every stage of
// the reshape job reads and produces.
//
// A Table is an ordered list of equally long columns. Each column carries a
// logical Kind and a slice of cell values; nil is the missing-value marker for
// every kind. Cells hold:
//
//	KindString -> string
//	KindInt    -> int64
//	KindFloat  -> float64
//	KindBool   -> bool
//	KindDate   -> time.Time (UTC, midnight)
//
// Operations never mutate their receiver's column layout; they return new
// tables that may share value slices with the input. Callers that need to
// rewrite cells in place should Clone first.
package table

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumn is returned when a stage asks for a column the table does
// not have. Downstream stages assume a fixed schema, so this is fatal.
var ErrMissingColumn = errors.New("missing column")

// Kind is the logical value type of a column.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column is a named, typed slice of cells.
type Column struct {
	Name string
	Kind Kind

	// Categorical marks low-cardinality enumerated string columns. Writers
	// dictionary-encode them.
	Categorical bool

	Values []any
}

// NewColumn returns a column with n missing cells.
func NewColumn(name string, kind Kind, n int) *Column {
	return &Column{Name: name, Kind: kind, Values: make([]any, n)}
}

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.Values) }

// IsNull reports whether the i-th cell is missing.
func (c *Column) IsNull(i int) bool { return c.Values[i] == nil }

// Clone returns a deep copy of the column's value slice.
func (c *Column) Clone() *Column {
	vals := make([]any, len(c.Values))
	copy(vals, c.Values)
	return &Column{Name: c.Name, Kind: c.Kind, Categorical: c.Categorical, Values: vals}
}

// Table is an ordered set of equally long columns.
type Table struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New builds a table from cols. All columns must have the same length and
// distinct names.
func New(cols ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("table: column %d is nil", i)
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("table: duplicate column %q", c.Name)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("table: column %q has %d rows, want %d", c.Name, c.Len(), t.rows)
		}
		t.index[c.Name] = i
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// MustNew is New for statically known inputs (tests, fixtures).
func MustNew(cols ...*Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns the columns in order. The slice must not be modified.
func (t *Table) Columns() []*Column { return t.cols }

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Has reports whether a column named name exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Lookup returns the named column or an error wrapping ErrMissingColumn.
func (t *Table) Lookup(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	return t.cols[i], nil
}

// Require checks that every name is present and reports all absent columns
// in a single error.
func (t *Table) Require(names ...string) error {
	var missing []string
	for _, n := range names {
		if !t.Has(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// Select projects the named columns, in the order given.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, err := t.Lookup(n)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	out.rows = t.rows
	return out, nil
}

// Drop returns the table without the named columns. Names that do not exist
// are ignored.
func (t *Table) Drop(names ...string) *Table {
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}
	cols := make([]*Column, 0, len(t.cols))
	for _, c := range t.cols {
		if _, ok := skip[c.Name]; ok {
			continue
		}
		cols = append(cols, c)
	}
	out := MustNew(cols...)
	out.rows = t.rows
	return out
}

// Append returns a table with extra columns added at the end.
func (t *Table) Append(cols ...*Column) (*Table, error) {
	all := make([]*Column, 0, len(t.cols)+len(cols))
	all = append(all, t.cols...)
	all = append(all, cols...)
	out, err := New(all...)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		out.rows = t.rows
	}
	return out, nil
}

// Replace swaps the column with the same name as c. The replacement must have
// the table's row count.
func (t *Table) Replace(c *Column) (*Table, error) {
	i, ok := t.index[c.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c.Name)
	}
	if c.Len() != t.rows {
		return nil, fmt.Errorf("table: replacement %q has %d rows, want %d", c.Name, c.Len(), t.rows)
	}
	cols := make([]*Column, len(t.cols))
	copy(cols, t.cols)
	cols[i] = c
	return New(cols...)
}

// Filter returns the rows for which keep returns true, preserving order.
func (t *Table) Filter(keep func(row int) bool) *Table {
	idx := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	return t.Take(idx)
}

// Take returns the rows at the given positions, in that order.
func (t *Table) Take(idx []int) *Table {
	cols := make([]*Column, len(t.cols))
	for ci, c := range t.cols {
		vals := make([]any, len(idx))
		for j, i := range idx {
			vals[j] = c.Values[i]
		}
		cols[ci] = &Column{Name: c.Name, Kind: c.Kind, Categorical: c.Categorical, Values: vals}
	}
	out := MustNew(cols...)
	out.rows = len(idx)
	return out
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.cols))
	for ci, c := range t.cols {
		out[ci] = c.Values[i]
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.Clone()
	}
	out := MustNew(cols...)
	out.rows = t.rows
	return out
}
