package ddl

import (
	"strings"
	"testing"

	"prgenfuel/internal/table"
)

var testDialect = Dialect{
	Name: "test", Open: `"`, Close: `"`, IfNotExists: true,
	MapType: func(k table.Kind) string { return strings.ToUpper(k.String()) },
}

// TestCreateTable verifies that CreateTable generates the expected statements
// and surfaces errors for invalid definitions.
func TestCreateTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		dialect     Dialect
		def         TableDef
		wantSQL     string
		errContains string
	}{
		{
			name:        "empty FQN returns error",
			dialect:     testDialect,
			def:         TableDef{Columns: []ColumnDef{{Name: "id", SQLType: "INT"}}},
			errContains: "table FQN must not be empty",
		},
		{
			name:        "no columns returns error",
			dialect:     testDialect,
			def:         TableDef{FQN: "t"},
			errContains: "at least one column is required",
		},
		{
			name:        "column with empty type returns error",
			dialect:     testDialect,
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id"}}},
			errContains: "missing SQLType",
		},
		{
			name:    "quoted schema-qualified table",
			dialect: testDialect,
			def: TableDef{FQN: "public.pr_gen_fuel_monthly", Columns: []ColumnDef{
				{Name: "plant_id_eia", SQLType: "BIGINT"},
				{Name: "fuel_unit", SQLType: "TEXT", Nullable: true},
			}},
			wantSQL: "CREATE TABLE IF NOT EXISTS \"public\".\"pr_gen_fuel_monthly\" (\n  \"plant_id_eia\" BIGINT NOT NULL,\n  \"fuel_unit\" TEXT\n);",
		},
		{
			name:    "guarded create without IF NOT EXISTS",
			dialect: Dialect{Name: "mssql", Open: "[", Close: "]"},
			def:     TableDef{FQN: "dbo.t", Columns: []ColumnDef{{Name: "a]b", SQLType: "INT", Nullable: true}}},
			wantSQL: "IF OBJECT_ID(N'dbo.t', N'U') IS NULL\nCREATE TABLE [dbo].[t] (\n  [a]]b] INT\n);",
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := tc.dialect.CreateTable(tc.def)
			if tc.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tc.errContains) {
					t.Fatalf("err=%v, want containing %q", err, tc.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.wantSQL {
				t.Fatalf("SQL mismatch\n got: %q\nwant: %q", got, tc.wantSQL)
			}
		})
	}
}

func TestFromTable(t *testing.T) {
	t.Parallel()

	tb := table.MustNew(
		&table.Column{Name: "id", Kind: table.KindInt, Values: []any{int64(1), int64(2)}},
		&table.Column{Name: "v", Kind: table.KindFloat, Values: []any{1.0, 2.0}},
	)
	cases := []struct {
		name    string
		notNull []string
		want    []bool // Nullable per column
	}{
		{name: "fully populated columns stay nullable", want: []bool{true, true}},
		{name: "named key column", notNull: []string{"id"}, want: []bool{false, true}},
		{name: "unknown name ignored", notNull: []string{"nope"}, want: []bool{true, true}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			def := FromTable("t", tb, testDialect.MapType, tc.notNull...)
			if len(def.Columns) != 2 {
				t.Fatalf("columns=%d", len(def.Columns))
			}
			if def.Columns[0].SQLType != "INT" || def.Columns[1].SQLType != "FLOAT" {
				t.Fatalf("types=%+v", def.Columns)
			}
			for i, want := range tc.want {
				if def.Columns[i].Nullable != want {
					t.Fatalf("%s nullable=%v, want %v", def.Columns[i].Name, def.Columns[i].Nullable, want)
				}
			}
		})
	}
	if got := testDialect.DeleteAll("main.t"); got != `DELETE FROM "main"."t"` {
		t.Fatalf("DeleteAll=%q", got)
	}
}
