package input

import (
	"strconv"

	"prgenfuel/internal/table"
)

// inferColumn promotes a text column to table.KindInt when every present cell
// parses as a base-10 integer. Other columns stay strings; floats are left to
// the normalizer so that bad values are reported against their column.
func inferColumn(name string, vals []any) *table.Column {
	ints := make([]any, len(vals))
	present := 0
	for i, v := range vals {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return &table.Column{Name: name, Kind: table.KindString, Values: vals}
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return &table.Column{Name: name, Kind: table.KindString, Values: vals}
		}
		ints[i] = n
		present++
	}
	if present == 0 {
		return &table.Column{Name: name, Kind: table.KindString, Values: vals}
	}
	return &table.Column{Name: name, Kind: table.KindInt, Values: ints}
}
