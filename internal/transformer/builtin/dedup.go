package builtin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"

	"prgenfuel/internal/table"
)

// ErrDuplicateKey is returned by Unique when two rows share a key.
var ErrDuplicateKey = errors.New("duplicate key")

// Duplicate describes one repeated key: the first row that carried it and a
// later row that repeated it.
type Duplicate struct {
	Key   []any
	First int
	Row   int
}

func (d Duplicate) String() string {
	parts := make([]string, len(d.Key))
	for i, v := range d.Key {
		s, ok := table.AsString(v)
		if !ok {
			s = "<missing>"
		}
		parts[i] = s
	}
	return fmt.Sprintf("(%s) at rows %d and %d", strings.Join(parts, ", "), d.First, d.Row)
}

// FindDuplicates returns every repeated key over the named columns in row
// order. Keys are compared by a 128-bit xxh3 digest of their text form, with
// missing cells distinct from empty strings.
func FindDuplicates(t *table.Table, keys []string) ([]Duplicate, error) {
	cols := make([]*table.Column, len(keys))
	for i, k := range keys {
		c, err := t.Lookup(k)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}

	seen := make(map[xxh3.Uint128]int, t.NumRows())
	var dups []Duplicate
	for i := 0; i < t.NumRows(); i++ {
		h := xxh3.HashString128(rowKey(cols, i))
		if first, ok := seen[h]; ok {
			key := make([]any, len(cols))
			for j, c := range cols {
				key[j] = c.Values[i]
			}
			dups = append(dups, Duplicate{Key: key, First: first, Row: i})
			continue
		}
		seen[h] = i
	}
	return dups, nil
}

// Unique fails with ErrDuplicateKey when Keys does not identify rows uniquely.
type Unique struct {
	Keys []string
}

func (u Unique) Apply(t *table.Table) (*table.Table, error) {
	if len(u.Keys) == 0 {
		return t, nil
	}
	dups, err := FindDuplicates(t, u.Keys)
	if err != nil {
		return nil, err
	}
	if len(dups) > 0 {
		return nil, fmt.Errorf("%w on (%s): %d repeated, first %s",
			ErrDuplicateKey, strings.Join(u.Keys, ", "), len(dups), dups[0])
	}
	return t, nil
}
