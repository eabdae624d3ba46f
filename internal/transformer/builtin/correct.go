package builtin

import (
	"fmt"
	"log"
	"time"

	"prgenfuel/internal/table"
)

// ExclusionRule names a plant-year whose rows with a missing NullColumn are
// known bad duplicates.
type ExclusionRule struct {
	PlantID    int64
	Year       int
	NullColumn string
	Reason     string
}

// Exclude drops, for each rule, every row of that plant and year whose
// NullColumn is missing, provided at least one row of the same plant and year
// reports it. A plant-year with no reported value at all is left untouched.
type Exclude struct {
	PlantColumn string
	DateColumn  string
	Rules       []ExclusionRule
}

func (e Exclude) Apply(t *table.Table) (*table.Table, error) {
	if len(e.Rules) == 0 {
		return t, nil
	}
	plants, err := t.Lookup(e.PlantColumn)
	if err != nil {
		return nil, err
	}
	dates, err := t.Lookup(e.DateColumn)
	if err != nil {
		return nil, err
	}

	drop := make(map[int]struct{})
	for _, r := range e.Rules {
		target, err := t.Lookup(r.NullColumn)
		if err != nil {
			return nil, fmt.Errorf("exclusion %d/%d: %w", r.PlantID, r.Year, err)
		}

		var nulls []int
		reported := 0
		for i := 0; i < t.NumRows(); i++ {
			id, ok := table.AsInt64(plants.Values[i])
			if !ok || id != r.PlantID {
				continue
			}
			d, ok := dates.Values[i].(time.Time)
			if !ok || d.Year() != r.Year {
				continue
			}
			if target.Values[i] == nil {
				nulls = append(nulls, i)
			} else {
				reported++
			}
		}

		if reported == 0 {
			log.Printf("correct: exclusion plant=%d year=%d column=%s skipped: no reported row, kept=%d",
				r.PlantID, r.Year, r.NullColumn, len(nulls))
			continue
		}
		for _, i := range nulls {
			drop[i] = struct{}{}
		}
		log.Printf("correct: exclusion plant=%d year=%d column=%s dropped=%d reported=%d",
			r.PlantID, r.Year, r.NullColumn, len(nulls), reported)
	}
	if len(drop) == 0 {
		return t, nil
	}
	return t.Filter(func(i int) bool {
		_, gone := drop[i]
		return !gone
	}), nil
}

func rowKey(cols []*table.Column, row int) string {
	vals := make([]any, len(cols))
	for i, c := range cols {
		vals[i] = c.Values[row]
	}
	return table.KeyString(vals...)
}

// Cutoff keeps rows whose date is strictly before Before. Rows without a
// date are dropped as well.
type Cutoff struct {
	DateColumn string
	Before     time.Time
}

func (c Cutoff) Apply(t *table.Table) (*table.Table, error) {
	dates, err := t.Lookup(c.DateColumn)
	if err != nil {
		return nil, err
	}
	return t.Filter(func(i int) bool {
		d, ok := dates.Values[i].(time.Time)
		return ok && d.Before(c.Before)
	}), nil
}
