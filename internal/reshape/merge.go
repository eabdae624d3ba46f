package reshape

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"

	"prgenfuel/internal/table"
)

// ErrMisaligned is returned by Merge when two melted families disagree on
// length or on the (key, month) index at some position.
var ErrMisaligned = errors.New("melted families are misaligned")

// Merge joins melted families by position. The result holds the key and month
// columns of the first family followed by one value column per family, in
// the order given.
func Merge(longs []Long) (*table.Table, error) {
	if len(longs) == 0 {
		return nil, fmt.Errorf("merge: no families")
	}
	base := longs[0]
	n := base.Table.NumRows()
	for _, l := range longs[1:] {
		if l.Table.NumRows() != n || len(l.Index) != n {
			return nil, fmt.Errorf("%w: %s has %d rows, %s has %d",
				ErrMisaligned, l.Family, l.Table.NumRows(), base.Family, n)
		}
		for i := range l.Index {
			if l.Index[i] != base.Index[i] {
				return nil, fmt.Errorf("%w: %s and %s differ at row %d (%v vs %v)",
					ErrMisaligned, l.Family, base.Family, i, l.Table.Row(i), base.Table.Row(i))
			}
		}
	}

	cols := append([]*table.Column{}, base.Table.Columns()...)
	for _, l := range longs[1:] {
		v, err := l.Table.Lookup(l.Family)
		if err != nil {
			return nil, fmt.Errorf("merge %s: %w", l.Family, err)
		}
		cols = append(cols, v)
	}
	out, err := table.New(cols...)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	return out, nil
}

// Engine melts every family and merges the results.
type Engine struct {
	Key         []string
	MonthColumn string
	Families    []string
	// Workers bounds concurrent melts; GOMAXPROCS when <= 0.
	Workers int
}

// Run melts each family concurrently and merges them in family order.
func (e Engine) Run(ctx context.Context, t *table.Table) (*table.Table, error) {
	if len(e.Families) == 0 {
		return nil, fmt.Errorf("reshape: no families configured")
	}
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	longs := make([]Long, len(e.Families))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, fam := range e.Families {
		i, fam := i, fam
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			l, err := Melt(t, e.Key, e.MonthColumn, fam)
			if err != nil {
				return err
			}
			longs[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out, err := Merge(longs)
	if err != nil {
		return nil, err
	}
	log.Printf("reshape: families=%d entities=%d rows=%d", len(e.Families), t.NumRows(), out.NumRows())
	return out, nil
}
