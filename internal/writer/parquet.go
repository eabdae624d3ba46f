// Package writer persists tables as parquet files.
package writer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"prgenfuel/internal/table"
)

// Options configures WriteParquet.
type Options struct {
	// Compression is one of snappy (default), gzip, zstd or none.
	Compression string
	// Parallel is the number of page-encoding goroutines; 4 when zero.
	Parallel int64
}

// Stats summarizes a finished write.
type Stats struct {
	Path  string
	Rows  int
	Bytes int64
}

var epoch = time.Unix(0, 0).UTC()

// Codec maps a compression name to its parquet codec.
func Codec(name string) (parquet.CompressionCodec, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return parquet.CompressionCodec_SNAPPY, nil
	case "gzip":
		return parquet.CompressionCodec_GZIP, nil
	case "zstd":
		return parquet.CompressionCodec_ZSTD, nil
	case "none", "uncompressed":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

// Schema returns the parquet-go metadata strings for t. Every column is
// OPTIONAL so that missing cells are written as nulls.
func Schema(t *table.Table) []string {
	md := make([]string, 0, t.NumCols())
	for _, c := range t.Columns() {
		var typ string
		switch c.Kind {
		case table.KindInt:
			typ = "type=INT64"
		case table.KindFloat:
			typ = "type=DOUBLE"
		case table.KindBool:
			typ = "type=BOOLEAN"
		case table.KindDate:
			typ = "type=INT32, convertedtype=DATE"
		default:
			typ = "type=BYTE_ARRAY, convertedtype=UTF8"
			if c.Categorical {
				typ += ", encoding=PLAIN_DICTIONARY"
			}
		}
		md = append(md, fmt.Sprintf("name=%s, %s, repetitiontype=OPTIONAL", c.Name, typ))
	}
	return md
}

// WriteParquet writes t to path. The file is written next to path under a
// temporary name and renamed into place on success, so path either keeps its
// previous content or holds the complete new table.
func WriteParquet(ctx context.Context, path string, t *table.Table, opt Options) (Stats, error) {
	codec, err := Codec(opt.Compression)
	if err != nil {
		return Stats{}, err
	}
	np := opt.Parallel
	if np <= 0 {
		np = 4
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Stats{}, fmt.Errorf("parquet: mkdir %s: %w", dir, err)
		}
	}

	tmp := path + ".tmp"
	if err := write(ctx, tmp, t, codec, np); err != nil {
		_ = os.Remove(tmp)
		return Stats{}, err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return Stats{}, fmt.Errorf("parquet: rename %s: %w", path, err)
	}

	st := Stats{Path: path, Rows: t.NumRows()}
	if fi, err := os.Stat(path); err == nil {
		st.Bytes = fi.Size()
	}
	log.Printf("writer: path=%s rows=%s size=%s codec=%s",
		path, humanize.Comma(int64(st.Rows)), humanize.Bytes(uint64(st.Bytes)), codec)
	return st, nil
}

func write(ctx context.Context, path string, t *table.Table, codec parquet.CompressionCodec, np int64) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("parquet: create %s: %w", path, err)
	}
	pw, err := writer.NewCSVWriter(Schema(t), fw, np)
	if err != nil {
		fw.Close()
		return fmt.Errorf("parquet: init writer: %w", err)
	}
	pw.CompressionType = codec

	cols := t.Columns()
	for i := 0; i < t.NumRows(); i++ {
		if i%8192 == 0 {
			if err := ctx.Err(); err != nil {
				fw.Close()
				return err
			}
		}
		// The writer buffers rows until the row group is flushed, so each row
		// needs its own slice.
		rec := make([]any, len(cols))
		for j, c := range cols {
			v, err := cell(c, i)
			if err != nil {
				fw.Close()
				return err
			}
			rec[j] = v
		}
		if err := pw.Write(rec); err != nil {
			fw.Close()
			return fmt.Errorf("parquet: write row %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("parquet: finalize %s: %w", path, err)
	}
	return fw.Close()
}

// cell converts a table value to the physical parquet value for its column.
func cell(c *table.Column, row int) (any, error) {
	v := c.Values[row]
	if v == nil {
		return nil, nil
	}
	switch c.Kind {
	case table.KindInt:
		if n, ok := table.AsInt64(v); ok {
			return n, nil
		}
	case table.KindFloat:
		if f, ok := table.AsFloat64(v); ok {
			return f, nil
		}
	case table.KindBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case table.KindDate:
		if ts, ok := v.(time.Time); ok {
			return int32(ts.UTC().Sub(epoch).Hours() / 24), nil
		}
	default:
		if s, ok := table.AsString(v); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("parquet: column %s row %d: %T does not fit %s", c.Name, row, v, c.Kind)
}
