package ddl

import (
	"fmt"
	"strings"

	"prgenfuel/internal/table"
)

// Dialect captures what differs between backends when creating and clearing
// a table.
type Dialect struct {
	Name string
	// Open and Close delimit a quoted identifier, e.g. `"` and `"` or `[` and `]`.
	Open, Close string
	// MapType maps a column kind to the backend's SQL type.
	MapType func(table.Kind) string
	// IfNotExists is true when CREATE TABLE IF NOT EXISTS is supported. When
	// false the statement is guarded with an OBJECT_ID check (SQL Server).
	IfNotExists bool
}

// QuoteIdent quotes a single identifier segment.
func (d Dialect) QuoteIdent(id string) string {
	return d.Open + strings.ReplaceAll(id, d.Close, d.Close+d.Close) + d.Close
}

// QuoteFQN quotes every dot-separated segment of name.
func (d Dialect) QuoteFQN(name string) string {
	parts := strings.Split(name, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, d.QuoteIdent(p))
		}
	}
	return strings.Join(out, ".")
}

// CreateTable renders a CREATE TABLE statement that is a no-op when the table
// already exists.
func (d Dialect) CreateTable(t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s ddl: table FQN must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s ddl: at least one column is required", d.Name)
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s ddl: column with empty name in table %s", d.Name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s ddl: column %s missing SQLType", d.Name, name)
		}
		def := d.QuoteIdent(name) + " " + typ
		if !c.Nullable {
			def += " NOT NULL"
		}
		cols = append(cols, def)
	}

	body := fmt.Sprintf("(\n  %s\n)", strings.Join(cols, ",\n  "))
	if d.IfNotExists {
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s %s;", d.QuoteFQN(fqn), body), nil
	}
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nCREATE TABLE %s %s;",
		strings.ReplaceAll(fqn, "'", "''"), d.QuoteFQN(fqn), body), nil
}

// DeleteAll renders a statement removing every row of fqn.
func (d Dialect) DeleteAll(fqn string) string {
	return "DELETE FROM " + d.QuoteFQN(fqn)
}

// FromTable derives a table definition from the columns of t. Every column is
// nullable except those named in notNull; a value absent from this vintage may
// well appear in the next one appended to the same table.
func FromTable(fqn string, t *table.Table, mapType func(table.Kind) string, notNull ...string) TableDef {
	required := make(map[string]bool, len(notNull))
	for _, name := range notNull {
		required[name] = true
	}
	def := TableDef{FQN: fqn, Columns: make([]ColumnDef, 0, t.NumCols())}
	for _, c := range t.Columns() {
		def.Columns = append(def.Columns, ColumnDef{
			Name:     c.Name,
			SQLType:  mapType(c.Kind),
			Nullable: !required[c.Name],
		})
	}
	return def
}
