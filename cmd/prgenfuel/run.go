package main

import (
	"fmt"
	"io"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"prgenfuel/internal/config"
	"prgenfuel/internal/metrics"
	"prgenfuel/internal/metrics/datadog"
	"prgenfuel/internal/metrics/prompush"
	"prgenfuel/internal/notify"
	"prgenfuel/internal/pipeline"
)

var dryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reshape job",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "run every stage but write nothing")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	p, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flush := setupMetrics(p)
	defer flush()

	pub, err := notify.New(p.Notify.MQTT)
	if err != nil {
		// The notice is optional; the data run goes ahead without it.
		log.Printf("notify: %v; notifications disabled", err)
		pub = notify.Nop{}
	}
	defer pub.Close()

	res, err := pipeline.Run(ctx, p, pipeline.Options{DryRun: dryRun, Publisher: pub})
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), res.Summary)
	return nil
}

// setupMetrics installs the configured backend and returns its flush func.
func setupMetrics(p config.Pipeline) func() {
	m := p.Metrics
	var (
		b   metrics.Backend
		err error
	)
	switch m.Backend {
	case "pushgateway":
		url := m.PushgatewayURL
		if url == "" {
			url = "http://localhost:9091"
		}
		b, err = prompush.NewBackend(p.Job, url)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{Addr: m.DatadogAddr, Namespace: m.Namespace, GlobalTags: m.Tags})
	case "", "none":
		return func() {}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", m.Backend)
		return func() {}
	}
	if err != nil {
		log.Printf("metrics: init %s backend: %v; using nop", m.Backend, err)
		return func() {}
	}
	log.Printf("metrics: backend=%s job=%s", m.Backend, p.Job)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

func printSummary(w io.Writer, s notify.Summary) {
	printf(w, "run %s %s in %dms\n", s.RunID, s.Status, s.DurationMS)
	printf(w, "  raw rows:      %d\n", s.RawRows)
	printf(w, "  melted rows:   %d\n", s.MeltedRows)
	printf(w, "  excluded rows: %d\n", s.ExcludedRows)
	printf(w, "  cutoff rows:   %d\n", s.CutoffRows)
	printf(w, "  monthly rows:  %d %s\n", s.MonthlyRows, s.MonthlyPath)
	printf(w, "  annual rows:   %d %s\n", s.AnnualRows, s.AnnualPath)
	if s.StoredRows > 0 {
		printf(w, "  stored rows:   %d\n", s.StoredRows)
	}
	if s.DryRun {
		printf(w, "  (dry run: nothing written)\n")
	}
}

func printf(w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(w, format, a...)
}

