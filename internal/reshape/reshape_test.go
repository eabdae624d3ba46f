package reshape

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"prgenfuel/internal/classify"
	"prgenfuel/internal/table"
)

var key = []string{"plant_id_eia", "report_year", "fuel_unit"}

// wide builds n entities with every family's twelve month columns set to
// entity*100 + month.
func wide(t *testing.T, n int, families ...string) *table.Table {
	t.Helper()
	ids := table.NewColumn("plant_id_eia", table.KindInt, n)
	years := table.NewColumn("report_year", table.KindInt, n)
	units := table.NewColumn("fuel_unit", table.KindString, n)
	for i := 0; i < n; i++ {
		ids.Values[i] = int64(i + 1)
		years.Values[i] = int64(2020)
		if i%2 == 0 {
			units.Values[i] = "mcf"
		}
	}
	cols := []*table.Column{ids, years, units}
	for _, f := range families {
		for m, name := range classify.FamilyColumns(f) {
			c := table.NewColumn(name, table.KindFloat, n)
			for i := 0; i < n; i++ {
				c.Values[i] = float64((i+1)*100 + m + 1)
			}
			cols = append(cols, c)
		}
	}
	tb, err := table.New(cols...)
	require.NoError(t, err)
	return tb
}

func TestMelt_RowConservationAndOrder(t *testing.T) {
	t.Parallel()

	tb := wide(t, 3, "net_generation_mwh")
	l, err := Melt(tb, key, "month", "net_generation_mwh")
	require.NoError(t, err)
	require.Equal(t, 12*3, l.Table.NumRows())
	require.Len(t, l.Index, 36)
	require.Equal(t, []string{"plant_id_eia", "report_year", "fuel_unit", "month", "net_generation_mwh"}, l.Table.Names())

	// Month-major: rows 0..2 are January, rows 33..35 December.
	require.Equal(t, []any{int64(1), int64(2020), "mcf", "january", 101.0}, l.Table.Row(0))
	require.Equal(t, []any{int64(2), int64(2020), nil, "january", 201.0}, l.Table.Row(1))
	require.Equal(t, []any{int64(3), int64(2020), "mcf", "december", 312.0}, l.Table.Row(35))
}

func TestMelt_MissingMonthColumn(t *testing.T) {
	t.Parallel()

	tb := wide(t, 1, "net_generation_mwh").Drop("net_generation_mwh_june")
	_, err := Melt(tb, key, "month", "net_generation_mwh")
	require.ErrorIs(t, err, table.ErrMissingColumn)
}

func TestEngine_MergesAllFamilies(t *testing.T) {
	t.Parallel()

	families := []string{
		"fuel_consumed_for_electricity_mmbtu",
		"fuel_consumed_for_electricity_units",
		"fuel_consumed_mmbtu",
		"fuel_consumed_units",
		"net_generation_mwh",
	}
	n := 4
	tb := wide(t, n, families...)
	out, err := Engine{Key: key, MonthColumn: "month", Families: families, Workers: 2}.Run(context.Background(), tb)
	require.NoError(t, err)
	require.Equal(t, 12*n, out.NumRows())

	want := append(append([]string{}, key...), "month")
	want = append(want, families...)
	require.Equal(t, want, out.Names())

	// Each value lines up with its own entity and month.
	for _, f := range families {
		c, err := out.Lookup(f)
		require.NoError(t, err)
		for row, v := range c.Values {
			m, i := row/n, row%n
			require.Equal(t, float64((i+1)*100+m+1), v, fmt.Sprintf("%s row %d", f, row))
		}
	}
}

func TestMerge_Misaligned(t *testing.T) {
	t.Parallel()

	tb := wide(t, 2, "a", "b")
	la, err := Melt(tb, key, "month", "a")
	require.NoError(t, err)

	// Shorter family.
	short := tb.Filter(func(i int) bool { return i == 0 })
	lb, err := Melt(short, key, "month", "b")
	require.NoError(t, err)
	_, err = Merge([]Long{la, lb})
	require.True(t, errors.Is(err, ErrMisaligned))

	// Same length, different entity order.
	swapped := tb.Take([]int{1, 0})
	lc, err := Melt(swapped, key, "month", "b")
	require.NoError(t, err)
	_, err = Merge([]Long{la, lc})
	require.ErrorIs(t, err, ErrMisaligned)
}

func TestEngine_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Engine{Key: key, MonthColumn: "month", Families: []string{"a"}}.Run(ctx, wide(t, 1, "a"))
	require.ErrorIs(t, err, context.Canceled)
}
