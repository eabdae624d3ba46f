package builtin

import (
	"fmt"

	"prgenfuel/internal/table"
)

// NullSentinel turns string cells equal to Sentinel into missing values in
// every column. EIA uses "." for "not reported".
type NullSentinel struct {
	Sentinel string
}

func (n NullSentinel) Apply(t *table.Table) (*table.Table, error) {
	if n.Sentinel == "" {
		return t, nil
	}
	out := t
	for _, c := range t.Columns() {
		idx := sentinelRows(c, n.Sentinel)
		if len(idx) == 0 {
			continue
		}
		nc := c.Clone()
		for _, i := range idx {
			nc.Values[i] = nil
		}
		var err error
		if out, err = out.Replace(nc); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func sentinelRows(c *table.Column, sentinel string) []int {
	var idx []int
	for i, v := range c.Values {
		if s, ok := v.(string); ok && s == sentinel {
			idx = append(idx, i)
		}
	}
	return idx
}

// Flag decodes a Y/N code column into a boolean column. Codes other than
// True and False, including missing ones, become missing.
type Flag struct {
	Column string
	True   string
	False  string
}

func (f Flag) Apply(t *table.Table) (*table.Table, error) {
	c, err := t.Lookup(f.Column)
	if err != nil {
		return nil, err
	}
	nc := table.NewColumn(c.Name, table.KindBool, c.Len())
	for i, v := range c.Values {
		switch x := v.(type) {
		case bool:
			nc.Values[i] = x
		case string:
			switch x {
			case f.True:
				nc.Values[i] = true
			case f.False:
				nc.Values[i] = false
			}
		}
	}
	return t.Replace(nc)
}

// Categorical marks code columns as categorical. Values are rendered as text
// so that integer-looking codes still form one dictionary.
type Categorical struct {
	Columns []string
}

func (c Categorical) Apply(t *table.Table) (*table.Table, error) {
	out := t
	for _, name := range c.Columns {
		col, err := out.Lookup(name)
		if err != nil {
			return nil, err
		}
		nc := table.NewColumn(name, table.KindString, col.Len())
		nc.Categorical = true
		for i, v := range col.Values {
			if v == nil {
				continue
			}
			s, ok := table.AsString(v)
			if !ok {
				return nil, fmt.Errorf("categorical %s row %d: unsupported value %T", name, i, v)
			}
			nc.Values[i] = s
		}
		if out, err = out.Replace(nc); err != nil {
			return nil, err
		}
	}
	return out, nil
}
