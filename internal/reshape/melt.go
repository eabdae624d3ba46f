// Package reshape turns the wide raw table (one column per metric and month)
// into a long monthly table with one row per entity and month.
//
// Each metric family is melted on its own into (key..., month, value) rows in
// calendar-month-major order, so row k*N+i is entity i in month k+1. The long
// tables are then joined by position after checking that every position
// carries the same (key, month) index in every family.
package reshape

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"

	"prgenfuel/internal/classify"
	"prgenfuel/internal/table"
)

// Long is one melted family plus the per-row index digest of (key, month).
type Long struct {
	Family string
	Table  *table.Table
	Index  []xxh3.Uint128
}

// Melt reshapes one family. key columns are repeated for every month; the
// month column holds the lowercase month name with the family prefix
// stripped; the value column is named after the family.
func Melt(t *table.Table, key []string, monthColumn, family string) (Long, error) {
	srcCols := classify.FamilyColumns(family)
	if err := t.Require(append(append([]string{}, key...), srcCols...)...); err != nil {
		return Long{}, fmt.Errorf("melt %s: %w", family, err)
	}

	n := t.NumRows()
	total := n * len(srcCols)

	keyIn := make([]*table.Column, len(key))
	keyOut := make([]*table.Column, len(key))
	for i, k := range key {
		c, _ := t.Lookup(k)
		keyIn[i] = c
		keyOut[i] = &table.Column{Name: c.Name, Kind: c.Kind, Categorical: c.Categorical, Values: make([]any, total)}
	}
	months := table.NewColumn(monthColumn, table.KindString, total)
	value := table.NewColumn(family, table.KindFloat, total)

	prefix := family + "_"
	index := make([]xxh3.Uint128, total)
	keyBuf := make([]any, len(key)+1)
	for m, name := range srcCols {
		src, _ := t.Lookup(name)
		if src.Kind != table.KindFloat {
			value.Kind = src.Kind
		}
		month := strings.TrimPrefix(name, prefix)
		for i := 0; i < n; i++ {
			row := m*n + i
			for k, c := range keyIn {
				keyOut[k].Values[row] = c.Values[i]
				keyBuf[k] = c.Values[i]
			}
			keyBuf[len(key)] = month
			months.Values[row] = month
			value.Values[row] = src.Values[i]
			index[row] = xxh3.HashString128(table.KeyString(keyBuf...))
		}
	}

	cols := append(keyOut, months, value)
	out, err := table.New(cols...)
	if err != nil {
		return Long{}, fmt.Errorf("melt %s: %w", family, err)
	}
	return Long{Family: family, Table: out, Index: index}, nil
}
