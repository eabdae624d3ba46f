package table

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sample() *Table {
	return MustNew(
		&Column{Name: "id", Kind: KindInt, Values: []any{int64(1), int64(2), int64(3)}},
		&Column{Name: "name", Kind: KindString, Values: []any{"a", nil, "c"}},
		&Column{Name: "v", Kind: KindFloat, Values: []any{1.5, 2.5, nil}},
	)
}

func TestNew_RejectsRaggedAndDuplicateColumns(t *testing.T) {
	t.Parallel()

	_, err := New(
		&Column{Name: "a", Values: []any{1}},
		&Column{Name: "b", Values: []any{1, 2}},
	)
	require.Error(t, err)

	_, err = New(
		&Column{Name: "a", Values: []any{1}},
		&Column{Name: "a", Values: []any{2}},
	)
	require.Error(t, err)
}

func TestLookupAndRequire_MissingColumn(t *testing.T) {
	t.Parallel()

	tb := sample()
	_, err := tb.Lookup("nope")
	require.True(t, errors.Is(err, ErrMissingColumn))

	err = tb.Require("id", "x", "y")
	require.ErrorIs(t, err, ErrMissingColumn)
	require.Contains(t, err.Error(), "x, y")
	require.NoError(t, tb.Require("id", "v"))
}

func TestSelectDropFilter(t *testing.T) {
	t.Parallel()

	tb := sample()

	sel, err := tb.Select("v", "id")
	require.NoError(t, err)
	require.Equal(t, []string{"v", "id"}, sel.Names())
	require.Equal(t, 3, sel.NumRows())

	dropped := tb.Drop("name", "ghost")
	require.Equal(t, []string{"id", "v"}, dropped.Names())

	kept := tb.Filter(func(i int) bool { return i != 1 })
	require.Equal(t, 2, kept.NumRows())
	require.Equal(t, []any{int64(3), "c", nil}, kept.Row(1))

	// Input is untouched.
	require.Equal(t, 3, tb.NumRows())
}

func TestReplaceAndClone(t *testing.T) {
	t.Parallel()

	tb := sample()
	cl := tb.Clone()
	c, _ := cl.Lookup("name")
	c.Values[0] = "changed"

	orig, _ := tb.Lookup("name")
	require.Equal(t, "a", orig.Values[0])

	repl, err := tb.Replace(&Column{Name: "name", Kind: KindString, Values: []any{"x", "y", "z"}})
	require.NoError(t, err)
	got, _ := repl.Lookup("name")
	require.Equal(t, []any{"x", "y", "z"}, got.Values)

	_, err = tb.Replace(&Column{Name: "name", Values: []any{"x"}})
	require.Error(t, err)
}

func TestCells(t *testing.T) {
	t.Parallel()

	n, ok := AsInt64("62410")
	require.True(t, ok)
	require.Equal(t, int64(62410), n)

	_, ok = AsInt64(1.25)
	require.False(t, ok)

	s, ok := AsString(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	require.Equal(t, "2021-01-01", s)

	require.NotEqual(t, KeyString("", "a"), KeyString(nil, "a"))
	require.Equal(t, KeyString(int64(1), "x"), KeyString("1", "x"))
}
