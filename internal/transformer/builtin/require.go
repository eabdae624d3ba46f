// Package builtin contains the concrete steps of the reshape job: input
// normalization (null sentinel, float coercion, flag decoding, categoricals)
// and monthly corrections (date derivation, exclusions, cutoff, uniqueness).
package builtin

import (
	"prgenfuel/internal/table"
)

// Require fails with table.ErrMissingColumn when any of Columns is absent.
type Require struct {
	Columns []string
}

func (r Require) Apply(t *table.Table) (*table.Table, error) {
	if err := t.Require(r.Columns...); err != nil {
		return nil, err
	}
	return t, nil
}

// DropColumns removes the named columns; absent names are ignored.
type DropColumns struct {
	Columns []string
}

func (d DropColumns) Apply(t *table.Table) (*table.Table, error) {
	return t.Drop(d.Columns...), nil
}
