// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each backend, which register their
// factories and DDL dialects. After the import, storage.New accepts the kinds
// "sqlite", "postgres", "mssql" and "mysql".
//
//	import _ "prgenfuel/internal/storage/all"
package all

import (
	_ "prgenfuel/internal/storage/mssql"
	_ "prgenfuel/internal/storage/mysql"
	_ "prgenfuel/internal/storage/postgres"
	_ "prgenfuel/internal/storage/sqlite"
)
