// Package input loads the raw EIA-923 table into a table.Table.
//
// Three readers are supported, selected by config.Source.Kind:
//
//   - parquet: the PUDL raw extract. Column types are taken from the file.
//   - csv:     a text export. Empty cells are missing, headers are normalized.
//   - xlsx:    the EIA-published workbook. A sheet and 1-based header row are
//     configurable because EIA puts several banner rows above the header.
//
// Text sources carry no types, so integer-looking columns are promoted to
// table.KindInt after loading; everything else stays a string until the
// normalizer runs.
package input

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"

	"prgenfuel/internal/config"
	"prgenfuel/internal/datasource"
	"prgenfuel/internal/datasource/file"
	"prgenfuel/internal/table"
)

// Read loads the configured source.
func Read(ctx context.Context, src config.Source) (*table.Table, error) {
	start := time.Now()
	local := file.NewLocal(src.File.Path)
	logSource(src.Kind, local.Path(), local)

	var (
		t   *table.Table
		err error
	)
	switch src.Kind {
	case "parquet", "":
		t, err = ReadParquet(ctx, local.Path())
	case "csv":
		t, err = ReadCSV(ctx, local, CSVOptionsFrom(src.Options))
	case "xlsx":
		t, err = ReadXLSX(ctx, local, XLSXOptionsFrom(src.Options))
	default:
		return nil, fmt.Errorf("input: unknown source kind %q", src.Kind)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("input: rows=%s columns=%d elapsed=%s",
		humanize.Comma(int64(t.NumRows())), t.NumCols(), time.Since(start).Truncate(time.Millisecond))
	return t, nil
}

func logSource(kind, path string, src datasource.Source) {
	sized, ok := src.(datasource.Sized)
	if !ok {
		log.Printf("input: kind=%s path=%s", kind, path)
		return
	}
	if size, err := sized.Size(); err == nil {
		log.Printf("input: kind=%s path=%s size=%s", kind, path, humanize.Bytes(uint64(size)))
	}
}
