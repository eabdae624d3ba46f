package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"prgenfuel/internal/classify"
	"prgenfuel/internal/config"
	"prgenfuel/internal/input"
	"prgenfuel/internal/notify"
	"prgenfuel/internal/table"
	"prgenfuel/internal/transformer/builtin"
	"prgenfuel/internal/writer"

	_ "prgenfuel/internal/storage/sqlite"
)

// entity is one raw wide row.
type entity struct {
	plant int64
	name  string
	year  int64
	chp   string
	// nullElec leaves fuel_consumed_for_electricity_mmbtu unreported.
	nullElec bool
}

// rawFixture writes a wide parquet file shaped like the EIA-923 Puerto Rico
// extract. Metric cells are text so that the sentinel and float casts run.
func rawFixture(t *testing.T, dir string, ents []entity) string {
	t.Helper()

	n := len(ents)
	str := func(name string, f func(e entity) any) *table.Column {
		c := table.NewColumn(name, table.KindString, n)
		for i, e := range ents {
			c.Values[i] = f(e)
		}
		return c
	}
	num := func(name string, f func(e entity) int64) *table.Column {
		c := table.NewColumn(name, table.KindInt, n)
		for i, e := range ents {
			c.Values[i] = f(e)
		}
		return c
	}

	cols := []*table.Column{
		num("plant_id_eia", func(e entity) int64 { return e.plant }),
		str("plant_name_eia", func(e entity) any { return e.name }),
		num("report_year", func(e entity) int64 { return e.year }),
		str("prime_mover_code", func(entity) any { return "GT" }),
		str("energy_source_code", func(entity) any { return "DFO" }),
		str("fuel_unit", func(entity) any { return "barrels" }),
		str("fuel_type_code_agg", func(entity) any { return "DFO" }),
		str("reporting_frequency_code", func(entity) any { return "M" }),
		str("data_maturity", func(entity) any { return "final" }),
		str("plant_state", func(entity) any { return "PR" }),
		str("associated_combined_heat_power", func(e entity) any { return e.chp }),
		str("total_fuel_consumption_quantity", func(entity) any { return "120.5" }),
	}
	for _, fam := range config.Default().Reshape.Families {
		for m, name := range classify.FamilyColumns(fam) {
			m := m
			fam := fam
			cols = append(cols, str(name, func(e entity) any {
				if e.nullElec && fam == "fuel_consumed_for_electricity_mmbtu" {
					return "."
				}
				return fmt.Sprintf("%d.5", m+1)
			}))
		}
	}

	path := filepath.Join(dir, "raw.parquet")
	_, err := writer.WriteParquet(context.Background(), path, table.MustNew(cols...), writer.Options{})
	require.NoError(t, err)
	return path
}

func testPipeline(t *testing.T, ents []entity) config.Pipeline {
	t.Helper()
	dir := t.TempDir()
	p := config.Default()
	p.Source.File.Path = rawFixture(t, dir, ents)
	p.Output.Monthly.Path = filepath.Join(dir, "out", "monthly.parquet")
	p.Output.Annual.Path = filepath.Join(dir, "out", "annual.parquet")
	return p
}

// standard has a full year, a year crossing the cutoff and the known
// 62410/2020 duplicate with an unreported twin.
var standard = []entity{
	{plant: 1, name: "Aguirre", year: 2024, chp: "N"},
	{plant: 1, name: "Aguirre", year: 2025, chp: "N"},
	{plant: 62410, name: "Ecoelectrica", year: 2020, chp: "Y"},
	{plant: 62410, name: "Ecoelectrica", year: 2020, chp: "Y", nullElec: true},
}

type recordingPublisher struct {
	got []notify.Summary
}

func (r *recordingPublisher) Publish(_ context.Context, s notify.Summary) error {
	r.got = append(r.got, s)
	return nil
}

func (r *recordingPublisher) Close() {}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	p := testPipeline(t, standard)
	pub := &recordingPublisher{}

	res, err := Run(context.Background(), p, Options{Publisher: pub})
	require.NoError(t, err)

	s := res.Summary
	require.Equal(t, 4, s.RawRows)
	require.Equal(t, 48, s.MeltedRows, "12 rows per entity")
	require.Equal(t, 12, s.ExcludedRows)
	require.Equal(t, 10, s.CutoffRows, "2025 March..December")
	require.Equal(t, 26, s.MonthlyRows)
	require.Equal(t, 4, s.AnnualRows)
	require.Equal(t, notify.StatusSuccess, s.Status)
	require.NotEmpty(t, s.RunID)

	require.Len(t, pub.got, 1)
	require.Equal(t, s.RunID, pub.got[0].RunID)

	monthly, err := input.ReadParquet(context.Background(), p.Output.Monthly.Path)
	require.NoError(t, err)
	require.Equal(t, 26, monthly.NumRows())
	require.False(t, monthly.Has("report_year"))
	require.False(t, monthly.Has("month"))

	dates, err := monthly.Lookup("date")
	require.NoError(t, err)
	require.Equal(t, table.KindDate, dates.Kind)
	cutoff, _ := p.CutoffTime()
	for _, v := range dates.Values {
		d, ok := v.(time.Time)
		require.True(t, ok)
		require.True(t, d.Before(cutoff), "date %s at or after cutoff", d)
		require.Equal(t, 1, d.Day())
	}
	for _, fam := range p.Reshape.Families {
		c, err := monthly.Lookup(fam)
		require.NoError(t, err)
		require.Equal(t, table.KindFloat, c.Kind, fam)
	}

	dups, err := builtin.FindDuplicates(monthly, p.Correct.UniqueKey)
	require.NoError(t, err)
	require.Empty(t, dups)

	// The surviving 62410/2020 rows are the reported twin.
	plants, _ := monthly.Lookup("plant_id_eia")
	elec, _ := monthly.Lookup("fuel_consumed_for_electricity_mmbtu")
	var n62410 int
	for i, v := range plants.Values {
		if v == int64(62410) {
			n62410++
			require.NotNil(t, elec.Values[i])
		}
	}
	require.Equal(t, 12, n62410)

	annual, err := input.ReadParquet(context.Background(), p.Output.Annual.Path)
	require.NoError(t, err)
	require.Equal(t, 4, annual.NumRows())
	for _, name := range annual.Names() {
		require.False(t, classify.IsMonthly(name), name)
	}
	chp, err := annual.Lookup("associated_combined_heat_power")
	require.NoError(t, err)
	require.Equal(t, table.KindBool, chp.Kind)
	require.Equal(t, []any{false, false, true, true}, chp.Values)
}

func TestRun_AnnualAndFamiliesCoverRawColumns(t *testing.T) {
	t.Parallel()

	p := testPipeline(t, standard[:1])
	res, err := Run(context.Background(), p, Options{DryRun: true})
	require.NoError(t, err)

	raw, err := input.ReadParquet(context.Background(), p.Source.File.Path)
	require.NoError(t, err)

	var union []string
	union = append(union, res.Annual.Names()...)
	for _, fam := range p.Reshape.Families {
		union = append(union, classify.FamilyColumns(fam)...)
	}
	want := raw.Names()
	sort.Strings(union)
	sort.Strings(want)
	require.Equal(t, want, union)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	t.Parallel()

	p := testPipeline(t, standard)
	res, err := Run(context.Background(), p, Options{DryRun: true})
	require.NoError(t, err)
	require.Equal(t, 26, res.Monthly.NumRows())
	require.True(t, res.Summary.DryRun)

	_, err = input.ReadParquet(context.Background(), p.Output.Monthly.Path)
	require.Error(t, err)
}

func TestRun_DuplicateKeyFails(t *testing.T) {
	t.Parallel()

	// Two fully reported twins: nothing to exclude, so the key repeats.
	ents := []entity{
		{plant: 62410, name: "Ecoelectrica", year: 2020, chp: "Y"},
		{plant: 62410, name: "Ecoelectrica", year: 2020, chp: "Y"},
	}
	p := testPipeline(t, ents)
	pub := &recordingPublisher{}

	_, err := Run(context.Background(), p, Options{Publisher: pub})
	require.ErrorIs(t, err, builtin.ErrDuplicateKey)

	require.Len(t, pub.got, 1)
	require.Equal(t, notify.StatusFailure, pub.got[0].Status)
	require.Contains(t, pub.got[0].Error, "duplicate key")

	_, statErr := input.ReadParquet(context.Background(), p.Output.Monthly.Path)
	require.Error(t, statErr, "no artifact after a failed run")
}

func TestRun_MissingKeyColumn(t *testing.T) {
	t.Parallel()

	p := testPipeline(t, standard)
	p.Reshape.KeyColumns = append(p.Reshape.KeyColumns, "sector_name")

	_, err := Run(context.Background(), p, Options{DryRun: true})
	require.ErrorIs(t, err, table.ErrMissingColumn)
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Parallel()

	p := config.Default()
	p.Reshape.Families = nil

	_, err := Run(context.Background(), p, Options{})
	require.Error(t, err)
	var iss config.Issue
	require.True(t, errors.As(err, &iss))
	require.Equal(t, "reshape.families", iss.Path)
}

func TestRun_SQLiteSink(t *testing.T) {
	t.Parallel()

	p := testPipeline(t, standard)
	dsn := filepath.Join(t.TempDir(), "prgenfuel.db")
	p.Storage.Kind = "sqlite"
	p.Storage.DB.DSN = dsn
	p.Storage.DB.AutoCreateTable = true
	p.Runtime.BatchSize = 7

	res, err := Run(context.Background(), p, Options{})
	require.NoError(t, err)
	require.EqualValues(t, 26+4, res.Summary.StoredRows)

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "pr_gen_fuel_monthly"`).Scan(&n))
	require.Equal(t, 26, n)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "pr_gen_fuel_annual"`).Scan(&n))
	require.Equal(t, 4, n)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "pr_gen_fuel_monthly" WHERE "date" >= '2025-03-01'`).Scan(&n))
	require.Zero(t, n)
}

func TestDescribeTable(t *testing.T) {
	t.Parallel()

	tb := table.MustNew(
		&table.Column{Name: "plant_id_eia", Kind: table.KindInt, Values: []any{int64(1)}},
		&table.Column{Name: "net_generation_mwh_january", Kind: table.KindFloat, Values: []any{1.0}},
		&table.Column{Name: "other_metric_may", Kind: table.KindFloat, Values: []any{1.0}},
	)
	l := DescribeTable(tb, []string{"net_generation_mwh"})
	require.Equal(t, 1, l.Rows)
	require.Equal(t, []string{"plant_id_eia"}, l.Annual)
	require.Equal(t, []string{"net_generation_mwh_january", "other_metric_may"}, l.Monthly)
	require.Len(t, l.Missing["net_generation_mwh"], 11)
	require.Equal(t, []string{"other_metric_may"}, l.Unclaimed)
	require.False(t, l.Complete())
}
