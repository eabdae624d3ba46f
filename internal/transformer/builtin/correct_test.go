package builtin

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"prgenfuel/internal/table"
)

func day(y int, m time.Month) time.Time { return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC) }

const elec = "fuel_consumed_for_electricity_mmbtu"

func TestExclude_PlantYear(t *testing.T) {
	t.Parallel()

	rule := ExclusionRule{PlantID: 62410, Year: 2020, NullColumn: elec}
	cases := []struct {
		name  string
		plant []any
		fuel  []any
		dates []any
		elec  []any
		want  []any // surviving energy_source_code values
	}{
		{
			name:  "null rows dropped once the plant-year reports",
			plant: []any{int64(62410), int64(62410), int64(62410), int64(62410)},
			fuel:  []any{"DFO", "DFO", "NG", "NG"},
			dates: []any{day(2020, 1), day(2020, 1), day(2020, 2), day(2020, 2)},
			elec:  []any{5.0, nil, nil, nil},
			want:  []any{"DFO"},
		},
		{
			name:  "plant-year without any reported value is kept",
			plant: []any{int64(62410), int64(62410)},
			fuel:  []any{"DFO", "NG"},
			dates: []any{day(2020, 1), day(2020, 2)},
			elec:  []any{nil, nil},
			want:  []any{"DFO", "NG"},
		},
		{
			name:  "other plants and years untouched",
			plant: []any{int64(62410), int64(62410), int64(62410), int64(99)},
			fuel:  []any{"DFO", "DFO", "KER", "BIT"},
			dates: []any{day(2020, 1), day(2020, 3), day(2021, 1), day(2020, 1)},
			elec:  []any{1.5, nil, nil, nil},
			want:  []any{"DFO", "KER", "BIT"},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			in := table.MustNew(
				col("plant_id_eia", table.KindInt, tc.plant...),
				col("energy_source_code", table.KindString, tc.fuel...),
				col("date", table.KindDate, tc.dates...),
				col(elec, table.KindFloat, tc.elec...),
			)
			out, err := Exclude{PlantColumn: "plant_id_eia", DateColumn: "date", Rules: []ExclusionRule{rule}}.Apply(in)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if got := values(t, out, "energy_source_code"); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("energy_source_code=%v, want %v", got, tc.want)
			}
		})
	}
}

// A month where every row lacks the value leaves no duplicate behind for the
// key check that follows.
func TestExclude_ThenUnique(t *testing.T) {
	t.Parallel()

	in := table.MustNew(
		col("plant_id_eia", table.KindInt, int64(62410), int64(62410), int64(62410), int64(62410)),
		col("energy_source_code", table.KindString, "DFO", "DFO", "DFO", "DFO"),
		col("date", table.KindDate, day(2020, 1), day(2020, 1), day(2020, 2), day(2020, 2)),
		col(elec, table.KindFloat, 5.0, nil, nil, nil),
	)
	keys := []string{"plant_id_eia", "energy_source_code", "date"}
	if _, err := (Unique{Keys: keys}).Apply(in); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("input should carry duplicates, got %v", err)
	}

	out, err := Exclude{
		PlantColumn: "plant_id_eia",
		DateColumn:  "date",
		Rules:       []ExclusionRule{{PlantID: 62410, Year: 2020, NullColumn: elec}},
	}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.NumRows() != 1 {
		t.Fatalf("rows=%d, want 1", out.NumRows())
	}
	if _, err := (Unique{Keys: keys}).Apply(out); err != nil {
		t.Fatalf("Unique after exclusion: %v", err)
	}
}

func TestExclude_MissingColumn(t *testing.T) {
	t.Parallel()

	in := table.MustNew(
		col("plant_id_eia", table.KindInt, int64(62410)),
		col("date", table.KindDate, day(2020, 1)),
	)
	_, err := Exclude{
		PlantColumn: "plant_id_eia",
		DateColumn:  "date",
		Rules:       []ExclusionRule{{PlantID: 62410, Year: 2020, NullColumn: elec}},
	}.Apply(in)
	if err == nil {
		t.Fatal("expected an error for the missing null column")
	}
}

func TestExclude_NoRules(t *testing.T) {
	t.Parallel()

	in := table.MustNew(col("x", table.KindInt, int64(1)))
	out, err := Exclude{}.Apply(in)
	if err != nil || out != in {
		t.Fatalf("no rules should be a no-op")
	}
}

func TestCutoff(t *testing.T) {
	t.Parallel()

	in := table.MustNew(
		col("date", table.KindDate, day(2025, 2), day(2025, 3), day(2025, 12), nil, day(2001, 1)),
	)
	out, err := Cutoff{DateColumn: "date", Before: day(2025, 3)}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := []any{day(2025, 2), day(2001, 1)}
	if got := values(t, out, "date"); !reflect.DeepEqual(got, want) {
		t.Fatalf("dates=%v, want %v", got, want)
	}
}
