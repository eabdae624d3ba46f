package builtin

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"prgenfuel/internal/table"
)

// CoercionError reports a value that cannot be represented as a number.
type CoercionError struct {
	Column string
	Row    int
	Value  any
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("coerce %s row %d: %v (%T) is not a number", e.Column, e.Row, e.Value, e.Value)
}

// Float converts every column whose name contains one of Markers to
// table.KindFloat. Blank strings become missing. With Strict set, any other
// unparseable value fails the step with a *CoercionError; otherwise it is
// counted, logged and set to missing.
type Float struct {
	Markers []string
	Strict  bool
}

// Matches reports whether name is a metric column under f.
func (f Float) Matches(name string) bool {
	for _, m := range f.Markers {
		if m != "" && strings.Contains(name, m) {
			return true
		}
	}
	return false
}

func (f Float) Apply(t *table.Table) (*table.Table, error) {
	out := t
	for _, c := range t.Columns() {
		if !f.Matches(c.Name) || c.Kind == table.KindFloat {
			continue
		}
		nc, bad, err := f.coerce(c)
		if err != nil {
			return nil, err
		}
		if bad > 0 {
			log.Printf("coerce: column=%s unparseable=%d set to missing", c.Name, bad)
		}
		if out, err = out.Replace(nc); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (f Float) coerce(c *table.Column) (*table.Column, int, error) {
	nc := table.NewColumn(c.Name, table.KindFloat, c.Len())
	bad := 0
	for i, v := range c.Values {
		if v == nil {
			continue
		}
		if x, ok := table.AsFloat64(v); ok {
			nc.Values[i] = x
			continue
		}
		if s, ok := v.(string); ok {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if x, err := strconv.ParseFloat(s, 64); err == nil {
				nc.Values[i] = x
				continue
			}
		}
		if f.Strict {
			return nil, 0, &CoercionError{Column: c.Name, Row: i, Value: v}
		}
		bad++
	}
	return nc, bad, nil
}
