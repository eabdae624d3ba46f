// Package transformer defines the table-to-table step used by every stage of
// the reshape job, and Chain, which runs steps in order.
package transformer

import (
	"fmt"
	"log"
	"time"

	"prgenfuel/internal/table"
)

// Transformer maps one table to another. Implementations must not mutate
// their input; they return a new table or the input itself when nothing
// changes.
type Transformer interface {
	Apply(*table.Table) (*table.Table, error)
}

// Func adapts a plain function to Transformer.
type Func func(*table.Table) (*table.Table, error)

// Apply calls f.
func (f Func) Apply(t *table.Table) (*table.Table, error) { return f(t) }

// Named labels a step for logs and error messages.
type Named struct {
	Name string
	Step Transformer
}

// Apply runs the wrapped step, prefixing any error with the step name.
func (n Named) Apply(t *table.Table) (*table.Table, error) {
	start := time.Now()
	out, err := n.Step.Apply(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", n.Name, err)
	}
	log.Printf("transform: step=%s rows_in=%d rows_out=%d elapsed=%s",
		n.Name, t.NumRows(), out.NumRows(), time.Since(start).Truncate(time.Microsecond))
	return out, nil
}

// Chain is an ordered list of transformers. It stops at the first error.
type Chain []Transformer

func (c Chain) Apply(in *table.Table) (*table.Table, error) {
	out := in
	for _, t := range c {
		var err error
		if out, err = t.Apply(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}
