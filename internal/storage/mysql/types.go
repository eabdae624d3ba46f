package mysql

import (
	"prgenfuel/internal/ddl"
	"prgenfuel/internal/table"
)

// MapType maps a column kind to a MySQL type.
func MapType(k table.Kind) string {
	switch k {
	case table.KindInt:
		return "BIGINT"
	case table.KindFloat:
		return "DOUBLE"
	case table.KindBool:
		return "BOOLEAN"
	case table.KindDate:
		return "DATE"
	default:
		return "TEXT"
	}
}

// Dialect renders MySQL DDL with backtick-quoted identifiers.
var Dialect = ddl.Dialect{
	Name:        "mysql",
	Open:        "`",
	Close:       "`",
	MapType:     MapType,
	IfNotExists: true,
}
