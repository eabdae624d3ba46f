package pipeline

import (
	"context"
	"fmt"
	"log"

	"prgenfuel/internal/classify"
	"prgenfuel/internal/config"
	"prgenfuel/internal/input"
	"prgenfuel/internal/table"
)

// Layout describes how the source columns classify.
type Layout struct {
	Rows    int
	Monthly []string
	Annual  []string

	// Missing lists, per configured family, the expected monthly columns
	// absent from the source.
	Missing map[string][]string

	// Unclaimed are monthly columns that belong to no configured family.
	Unclaimed []string
}

// Complete reports whether every family has all twelve month columns.
func (l Layout) Complete() bool {
	for _, m := range l.Missing {
		if len(m) > 0 {
			return false
		}
	}
	return true
}

// Describe reads the source and classifies its columns against the
// configured families.
func Describe(ctx context.Context, p config.Pipeline) (Layout, error) {
	raw, err := input.Read(ctx, p.Source)
	if err != nil {
		return Layout{}, fmt.Errorf("describe: %w", err)
	}
	return DescribeTable(raw, p.Reshape.Families), nil
}

// DescribeTable classifies the columns of t.
func DescribeTable(t *table.Table, families []string) Layout {
	l := Layout{Rows: t.NumRows(), Missing: make(map[string][]string, len(families))}
	l.Monthly, l.Annual = classify.Split(t.Names())

	claimed := make(map[string]struct{})
	for _, f := range families {
		for _, c := range classify.FamilyColumns(f) {
			if t.Has(c) {
				claimed[c] = struct{}{}
				continue
			}
			l.Missing[f] = append(l.Missing[f], c)
		}
	}
	for _, c := range l.Monthly {
		if _, ok := claimed[c]; !ok {
			l.Unclaimed = append(l.Unclaimed, c)
		}
	}
	if len(l.Unclaimed) > 0 {
		log.Printf("describe: %d monthly columns outside configured families", len(l.Unclaimed))
	}
	return l
}
