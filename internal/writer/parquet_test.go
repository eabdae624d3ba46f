package writer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"prgenfuel/internal/input"
	"prgenfuel/internal/table"
)

func sample() *table.Table {
	return table.MustNew(
		&table.Column{Name: "plant_id_eia", Kind: table.KindInt, Values: []any{int64(62410), int64(62411), nil}},
		&table.Column{Name: "energy_source_code", Kind: table.KindString, Categorical: true, Values: []any{"DFO", nil, "NG"}},
		&table.Column{Name: "net_generation_mwh", Kind: table.KindFloat, Values: []any{1.25, nil, 1e6}},
		&table.Column{Name: "associated_combined_heat_power", Kind: table.KindBool, Values: []any{true, false, nil}},
		&table.Column{Name: "date", Kind: table.KindDate, Values: []any{
			time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(1969, 12, 1, 0, 0, 0, 0, time.UTC),
			nil,
		}},
	)
}

func TestWriteParquet_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "monthly.parquet")
	in := sample()
	st, err := WriteParquet(context.Background(), path, in, Options{})
	require.NoError(t, err)
	require.Equal(t, 3, st.Rows)
	require.Positive(t, st.Bytes)

	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err), "temp file left behind")

	out, err := input.ReadParquet(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, in.Names(), out.Names())
	for i, c := range in.Columns() {
		got := out.Columns()[i]
		require.Equal(t, c.Kind, got.Kind, c.Name)
		require.Equal(t, c.Values, got.Values, c.Name)
	}
}

func TestWriteParquet_OverwritesAndKeepsOldOnFailure(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "annual.parquet")
	_, err := WriteParquet(context.Background(), path, sample(), Options{Compression: "gzip"})
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	bad := table.MustNew(&table.Column{Name: "x", Kind: table.KindInt, Values: []any{"not a number"}})
	_, err = WriteParquet(context.Background(), path, bad, Options{})
	require.Error(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, before, after)
	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestCodecAndSchema(t *testing.T) {
	t.Parallel()

	_, err := Codec("lz4-nope")
	require.Error(t, err)

	md := Schema(sample())
	require.Equal(t, "name=plant_id_eia, type=INT64, repetitiontype=OPTIONAL", md[0])
	require.Contains(t, md[1], "encoding=PLAIN_DICTIONARY")
	require.Contains(t, md[4], "convertedtype=DATE")
}
