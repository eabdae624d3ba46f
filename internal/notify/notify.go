// Package notify publishes a completion notice for each run.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Status values of a Summary.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Summary is the JSON document published when a run ends.
type Summary struct {
	RunID      string    `json:"run_id"`
	Job        string    `json:"job"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	DryRun     bool      `json:"dry_run,omitempty"`

	// Row counts per stage.
	RawRows      int   `json:"raw_rows"`
	MeltedRows   int   `json:"melted_rows"`
	ExcludedRows int   `json:"excluded_rows"`
	CutoffRows   int   `json:"cutoff_rows"`
	MonthlyRows  int   `json:"monthly_rows"`
	AnnualRows   int   `json:"annual_rows"`
	StoredRows   int64 `json:"stored_rows,omitempty"`

	MonthlyPath string `json:"monthly_path,omitempty"`
	AnnualPath  string `json:"annual_path,omitempty"`
}

// Payload encodes s for the wire.
func Payload(s Summary) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("notify: encode summary: %w", err)
	}
	return b, nil
}

// Publisher sends run summaries somewhere.
type Publisher interface {
	Publish(ctx context.Context, s Summary) error
	Close()
}

// Nop discards summaries. It is used when notifications are disabled.
type Nop struct{}

func (Nop) Publish(context.Context, Summary) error { return nil }
func (Nop) Close()                                 {}
