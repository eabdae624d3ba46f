package input

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"

	"prgenfuel/internal/table"
)

// ReadParquet reads every leaf column of a flat parquet file. Nested schemas
// are rejected since the raw extract is a flat table.
func ReadParquet(ctx context.Context, path string) (*table.Table, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("parquet: open %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetColumnReader(fr, int64(runtime.NumCPU()))
	if err != nil {
		return nil, fmt.Errorf("parquet: read footer %s: %w", path, err)
	}
	defer pr.ReadStop()

	leaves, err := leafColumns(pr.Footer.Schema)
	if err != nil {
		return nil, fmt.Errorf("parquet: %s: %w", path, err)
	}

	n := pr.GetNumRows()
	cols := make([]*table.Column, 0, len(leaves))
	for i, el := range leaves {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vals, _, _, err := pr.ReadColumnByIndex(int64(i), n)
		if err != nil {
			return nil, fmt.Errorf("parquet: read column %s: %w", el.Name, err)
		}
		if int64(len(vals)) != n {
			return nil, fmt.Errorf("parquet: column %s has %d values, want %d", el.Name, len(vals), n)
		}
		col, err := columnFromParquet(el, vals)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return table.New(cols...)
}

// leafColumns returns the schema elements of a flat file, root excluded.
func leafColumns(schema []*parquet.SchemaElement) ([]*parquet.SchemaElement, error) {
	if len(schema) == 0 {
		return nil, fmt.Errorf("empty schema")
	}
	out := make([]*parquet.SchemaElement, 0, len(schema)-1)
	for _, el := range schema[1:] {
		if el.NumChildren != nil && *el.NumChildren > 0 {
			return nil, fmt.Errorf("nested column %q is not supported", el.Name)
		}
		out = append(out, el)
	}
	return out, nil
}

func kindOf(el *parquet.SchemaElement) table.Kind {
	if el.Type == nil {
		return table.KindString
	}
	if el.ConvertedType != nil {
		switch *el.ConvertedType {
		case parquet.ConvertedType_DATE,
			parquet.ConvertedType_TIMESTAMP_MILLIS,
			parquet.ConvertedType_TIMESTAMP_MICROS:
			return table.KindDate
		}
	}
	switch *el.Type {
	case parquet.Type_BOOLEAN:
		return table.KindBool
	case parquet.Type_INT32, parquet.Type_INT64:
		return table.KindInt
	case parquet.Type_FLOAT, parquet.Type_DOUBLE:
		return table.KindFloat
	default:
		return table.KindString
	}
}

func columnFromParquet(el *parquet.SchemaElement, vals []any) (*table.Column, error) {
	col := &table.Column{Name: el.Name, Kind: kindOf(el), Values: make([]any, len(vals))}
	var conv parquet.ConvertedType = -1
	if el.ConvertedType != nil {
		conv = *el.ConvertedType
	}
	for i, v := range vals {
		switch x := v.(type) {
		case nil:
		case string:
			col.Values[i] = x
		case bool:
			col.Values[i] = x
		case float64:
			col.Values[i] = x
		case float32:
			col.Values[i] = float64(x)
		case int32:
			if conv == parquet.ConvertedType_DATE {
				col.Values[i] = epochDay(int64(x))
				continue
			}
			col.Values[i] = int64(x)
		case int64:
			switch conv {
			case parquet.ConvertedType_TIMESTAMP_MILLIS:
				col.Values[i] = truncDay(time.UnixMilli(x))
			case parquet.ConvertedType_TIMESTAMP_MICROS:
				col.Values[i] = truncDay(time.UnixMicro(x))
			default:
				col.Values[i] = x
			}
		default:
			return nil, fmt.Errorf("parquet: column %s: unsupported value type %T", el.Name, v)
		}
	}
	return col, nil
}

func epochDay(d int64) time.Time {
	return time.Unix(0, 0).UTC().AddDate(0, 0, int(d))
}

func truncDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
