package storage

import (
	"context"
	"fmt"
	"sync"

	"prgenfuel/internal/ddl"
	"prgenfuel/internal/table"
)

var (
	ddlMu    sync.RWMutex
	dialects = map[string]ddl.Dialect{}
)

// RegisterDDL registers (or replaces) the SQL dialect for the given storage
// kind. It is typically called from backend packages' init() functions.
func RegisterDDL(kind string, d ddl.Dialect) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	dialects[kind] = d
}

// DialectFor returns the dialect registered for kind.
func DialectFor(kind string) (ddl.Dialect, error) {
	ddlMu.RLock()
	d, ok := dialects[kind]
	ddlMu.RUnlock()
	if !ok {
		return ddl.Dialect{}, fmt.Errorf("no DDL dialect registered for storage.kind=%q", kind)
	}
	return d, nil
}

// EnsureTable creates fqn with columns derived from t unless it exists.
func EnsureTable(ctx context.Context, kind string, repo Repository, fqn string, t *table.Table) error {
	d, err := DialectFor(kind)
	if err != nil {
		return err
	}
	stmt, err := d.CreateTable(ddl.FromTable(fqn, t, d.MapType))
	if err != nil {
		return fmt.Errorf("infer table definition: %w", err)
	}
	if err := repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create %s: %w", fqn, err)
	}
	return nil
}
