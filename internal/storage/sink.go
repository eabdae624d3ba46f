package storage

import (
	"context"
	"fmt"
	"log"

	"prgenfuel/internal/table"
)

// DefaultBatchSize is used when Sink.BatchSize is not positive.
const DefaultBatchSize = 5000

// Sink replaces the content of database tables with reshaped tables.
type Sink struct {
	Kind       string
	DSN        string
	BatchSize  int
	AutoCreate bool
}

// Replace creates fqn if requested, deletes its rows and bulk-loads t. The
// delete and the load are separate statements; a failed load leaves the
// table partially filled and the run reports the error.
func (s Sink) Replace(ctx context.Context, fqn string, t *table.Table) (int64, error) {
	d, err := DialectFor(s.Kind)
	if err != nil {
		return 0, err
	}
	repo, err := New(ctx, Config{Kind: s.Kind, DSN: s.DSN, Table: fqn, Columns: t.Names()})
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", s.Kind, err)
	}
	defer repo.Close()

	if s.AutoCreate {
		if err := EnsureTable(ctx, s.Kind, repo, fqn, t); err != nil {
			return 0, err
		}
	}
	if err := repo.Exec(ctx, d.DeleteAll(fqn)); err != nil {
		return 0, fmt.Errorf("clear %s: %w", fqn, err)
	}

	batch := s.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	rows := make(chan []any, batch)
	go StreamRows(ctx, t, rows)

	n, err := LoadBatches(ctx, t.Names(), rows, batch, repo.CopyFrom)
	if err != nil {
		return n, fmt.Errorf("load %s: %w", fqn, err)
	}
	log.Printf("storage: kind=%s table=%s rows=%d", s.Kind, fqn, n)
	return n, nil
}

// StreamRows sends every row of t on out and closes it. It stops early when
// ctx is done.
func StreamRows(ctx context.Context, t *table.Table, out chan<- []any) {
	defer close(out)
	for i := 0; i < t.NumRows(); i++ {
		select {
		case <-ctx.Done():
			return
		case out <- t.Row(i):
		}
	}
}
