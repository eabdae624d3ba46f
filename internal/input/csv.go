package input

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"prgenfuel/internal/config"
	"prgenfuel/internal/datasource"
	"prgenfuel/internal/table"
)

// CSVOptions configures ReadCSV.
type CSVOptions struct {
	// Comma is the field delimiter; ',' when zero.
	Comma rune
	// TrimSpace trims surrounding whitespace from every cell.
	TrimSpace bool
	// HeaderMap renames raw headers before normalization is attempted.
	HeaderMap map[string]string
}

// CSVOptionsFrom reads comma, trim_space and header_map from source options.
func CSVOptionsFrom(o config.Options) CSVOptions {
	return CSVOptions{
		Comma:     o.Rune("comma", ','),
		TrimSpace: o.Bool("trim_space", true),
		HeaderMap: o.StringMap("header_map"),
	}
}

// ReadCSV reads a headed CSV document. Empty cells become missing values and
// rows with the wrong field count are skipped and logged.
func ReadCSV(ctx context.Context, src datasource.Source, opt CSVOptions) (*table.Table, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	cr := csv.NewReader(rc)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv: empty input")
		}
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	names := normalizeHeaders(append([]string(nil), header...), opt.HeaderMap)

	cols := make([][]any, len(names))
	line, skipped := 1, 0
	for {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}
		if len(rec) != len(names) {
			skipped++
			continue
		}
		for i, cell := range rec {
			if opt.TrimSpace {
				cell = strings.TrimSpace(cell)
			}
			if cell == "" {
				cols[i] = append(cols[i], nil)
				continue
			}
			cols[i] = append(cols[i], strings.Clone(cell))
		}
	}
	if skipped > 0 {
		log.Printf("csv: skipped=%d rows with field count != %d", skipped, len(names))
	}
	return buildTextTable(names, cols)
}

// buildTextTable assembles string columns and promotes integer-only ones.
func buildTextTable(names []string, cols [][]any) (*table.Table, error) {
	out := make([]*table.Column, len(names))
	for i, name := range names {
		vals := cols[i]
		if vals == nil {
			vals = []any{}
		}
		out[i] = inferColumn(name, vals)
	}
	return table.New(out...)
}
