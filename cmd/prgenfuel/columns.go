package main

import (
	"errors"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"prgenfuel/internal/pipeline"
)

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Show how the source columns classify into monthly and annual",
	RunE:  runColumns,
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}

func runColumns(cmd *cobra.Command, args []string) error {
	p, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	l, err := pipeline.Describe(cmd.Context(), p)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	printf(w, "%s: %d rows, %d monthly and %d annual columns\n",
		p.Source.File.Path, l.Rows, len(l.Monthly), len(l.Annual))
	printf(w, "\nannual:\n")
	for _, c := range l.Annual {
		printf(w, "  %s\n", c)
	}
	printf(w, "\nfamilies:\n")
	for _, f := range p.Reshape.Families {
		missing := l.Missing[f]
		if len(missing) == 0 {
			printf(w, "  %-40s complete\n", f)
			continue
		}
		printf(w, "  %-40s missing %s\n", f, strings.Join(missing, ", "))
	}
	if len(l.Unclaimed) > 0 {
		sort.Strings(l.Unclaimed)
		printf(w, "\nmonthly columns outside any family:\n")
		for _, c := range l.Unclaimed {
			printf(w, "  %s\n", c)
		}
	}
	if !l.Complete() {
		return errors.New("source is missing monthly columns")
	}
	return nil
}
