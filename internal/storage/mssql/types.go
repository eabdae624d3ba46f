package mssql

import (
	"prgenfuel/internal/ddl"
	"prgenfuel/internal/table"
)

// MapType maps a column kind to a SQL Server type. Codes and names use
// NVARCHAR(MAX) since EIA strings are not length-bounded.
func MapType(k table.Kind) string {
	switch k {
	case table.KindInt:
		return "BIGINT"
	case table.KindFloat:
		return "FLOAT"
	case table.KindBool:
		return "BIT"
	case table.KindDate:
		return "DATE"
	default:
		return "NVARCHAR(MAX)"
	}
}

// Dialect renders SQL Server DDL. CREATE TABLE is guarded with OBJECT_ID.
var Dialect = ddl.Dialect{
	Name:    "mssql",
	Open:    "[",
	Close:   "]",
	MapType: MapType,
}
