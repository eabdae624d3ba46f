package postgres

import (
	"prgenfuel/internal/ddl"
	"prgenfuel/internal/table"
)

// MapType maps a column kind to a Postgres type.
//
//	int    -> BIGINT
//	float  -> DOUBLE PRECISION
//	bool   -> BOOLEAN
//	date   -> DATE
//	string -> TEXT
func MapType(k table.Kind) string {
	switch k {
	case table.KindInt:
		return "BIGINT"
	case table.KindFloat:
		return "DOUBLE PRECISION"
	case table.KindBool:
		return "BOOLEAN"
	case table.KindDate:
		return "DATE"
	default:
		return "TEXT"
	}
}

// Dialect renders Postgres DDL.
var Dialect = ddl.Dialect{
	Name:        "postgres",
	Open:        `"`,
	Close:       `"`,
	MapType:     MapType,
	IfNotExists: true,
}
