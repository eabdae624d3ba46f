package classify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	names := []string{
		"plant_id_eia",
		"net_generation_mwh_january",
		"fuel_consumed_units_December",
		"report_year",
		"fuel_mmbtu_per_unit_may",
		"total_fuel_consumption_mmbtu",
		"data_maturity",
	}
	monthly, annual := Split(names)

	require.Equal(t, []string{
		"net_generation_mwh_january",
		"fuel_consumed_units_December",
		"fuel_mmbtu_per_unit_may",
	}, monthly)
	require.Equal(t, []string{
		"plant_id_eia",
		"report_year",
		"total_fuel_consumption_mmbtu",
		"data_maturity",
	}, annual)

	// Disjoint and covering.
	seen := map[string]int{}
	for _, n := range append(append([]string{}, monthly...), annual...) {
		seen[n]++
	}
	require.Len(t, seen, len(names))
	for n, c := range seen {
		require.Equal(t, 1, c, n)
	}
}

func TestSplit_Empty(t *testing.T) {
	t.Parallel()

	m, a := Split(nil)
	require.Empty(t, m)
	require.Empty(t, a)
}

func TestFamilyColumns(t *testing.T) {
	t.Parallel()

	cols := FamilyColumns("net_generation_mwh")
	require.Len(t, cols, 12)
	require.Equal(t, "net_generation_mwh_january", cols[0])
	require.Equal(t, "net_generation_mwh_december", cols[11])
	for _, c := range cols {
		require.True(t, IsMonthly(c), c)
	}
}
