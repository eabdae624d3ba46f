package input

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"prgenfuel/internal/config"
	"prgenfuel/internal/datasource"
	"prgenfuel/internal/table"
)

// XLSXOptions configures ReadXLSX.
type XLSXOptions struct {
	// Sheet names the worksheet; the first sheet when empty.
	Sheet string
	// HeaderRow is the 1-based row holding column names. Rows above it are
	// banner text and are ignored.
	HeaderRow int
	HeaderMap map[string]string
}

// XLSXOptionsFrom reads sheet, header_row and header_map from source options.
func XLSXOptionsFrom(o config.Options) XLSXOptions {
	return XLSXOptions{
		Sheet:     o.String("sheet", ""),
		HeaderRow: o.Int("header_row", 1),
		HeaderMap: o.StringMap("header_map"),
	}
}

// ReadXLSX reads one worksheet. Cells are taken as formatted text; empty and
// trailing cells are missing.
func ReadXLSX(ctx context.Context, src datasource.Source, opt XLSXOptions) (*table.Table, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	f, err := excelize.OpenReader(rc)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open: %w", err)
	}
	defer f.Close()

	sheet := opt.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("xlsx: workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: sheet %q: %w", sheet, err)
	}

	hr := opt.HeaderRow
	if hr < 1 {
		hr = 1
	}
	if len(rows) < hr {
		return nil, fmt.Errorf("xlsx: sheet %q has %d rows, header expected on row %d", sheet, len(rows), hr)
	}
	names := normalizeHeaders(rows[hr-1], opt.HeaderMap)

	cols := make([][]any, len(names))
	for i := range cols {
		cols[i] = make([]any, 0, len(rows)-hr)
	}
	for _, row := range rows[hr:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if blank(row) {
			continue
		}
		for i := range names {
			var v any
			if i < len(row) {
				if s := strings.TrimSpace(row[i]); s != "" {
					v = s
				}
			}
			cols[i] = append(cols[i], v)
		}
	}
	return buildTextTable(names, cols)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
