// Package datasource abstracts where the raw input bytes come from. The CSV
// and XLSX readers consume a Source; parquet needs random access and opens
// its path directly.
package datasource

import (
	"context"
	"io"
)

// Source opens the raw input for reading.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Sized is implemented by sources that know their length up front.
type Sized interface {
	Size() (int64, error)
}
