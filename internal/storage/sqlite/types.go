package sqlite

import (
	"prgenfuel/internal/ddl"
	"prgenfuel/internal/table"
)

// MapType maps a column kind to a SQLite type affinity. Dates are stored as
// ISO-8601 TEXT and booleans as INTEGER 0/1.
func MapType(k table.Kind) string {
	switch k {
	case table.KindInt, table.KindBool:
		return "INTEGER"
	case table.KindFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

// Dialect renders SQLite DDL.
var Dialect = ddl.Dialect{
	Name:        "sqlite",
	Open:        `"`,
	Close:       `"`,
	MapType:     MapType,
	IfNotExists: true,
}
