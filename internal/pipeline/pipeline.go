// Package pipeline runs the reshape job end to end: load and normalize the
// wide EIA-923 Puerto Rico table, melt the monthly families into a long
// table, apply the data corrections and write the monthly and annual
// artifacts. Optional sinks (database mirror, metrics, MQTT notice) hang off
// the same run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"prgenfuel/internal/config"
	"prgenfuel/internal/input"
	"prgenfuel/internal/metrics"
	"prgenfuel/internal/notify"
	"prgenfuel/internal/reshape"
	"prgenfuel/internal/storage"
	"prgenfuel/internal/table"
	"prgenfuel/internal/transformer"
	"prgenfuel/internal/transformer/builtin"
	"prgenfuel/internal/writer"
)

// Options tune a single run.
type Options struct {
	// DryRun executes every stage but writes no artifact and skips the
	// database sink.
	DryRun bool

	// Publisher receives the run summary; nil disables notifications.
	Publisher notify.Publisher
}

// Result is what a run produced.
type Result struct {
	Monthly *table.Table
	Annual  *table.Table
	Summary notify.Summary
}

// run carries per-run state between stages.
type run struct {
	p       config.Pipeline
	opt     Options
	summary notify.Summary
}

// Run executes the configured job. Any stage error aborts the run; the
// summary is published either way.
func Run(ctx context.Context, p config.Pipeline, opt Options) (Result, error) {
	if issues := config.ValidatePipeline(p); config.HasErrors(issues) {
		for _, iss := range issues {
			if iss.Severity == config.SeverityError {
				return Result{}, fmt.Errorf("invalid pipeline: %w", iss)
			}
		}
	}

	r := &run{
		p:   p,
		opt: opt,
		summary: notify.Summary{
			RunID:     uuid.NewString(),
			Job:       p.Job,
			StartedAt: time.Now().UTC(),
			DryRun:    opt.DryRun,
		},
	}
	log.Printf("pipeline: run=%s job=%s source=%s dry_run=%t", r.summary.RunID, p.Job, p.Source.File.Path, opt.DryRun)

	res, err := r.execute(ctx)
	r.finish(ctx, err)
	res.Summary = r.summary
	return res, err
}

func (r *run) execute(ctx context.Context) (Result, error) {
	var (
		raw, wide, long, monthly, annual *table.Table
		err                              error
	)

	if err = r.stage("load", func() error {
		raw, err = input.Read(ctx, r.p.Source)
		return err
	}); err != nil {
		return Result{}, err
	}
	r.summary.RawRows = raw.NumRows()
	metrics.RecordRows(r.p.Job, "raw", int64(raw.NumRows()))

	if err = r.stage("normalize", func() error {
		wide, err = NormalizeChain(r.p).Apply(raw)
		return err
	}); err != nil {
		return Result{}, err
	}

	if err = r.stage("reshape", func() error {
		long, err = reshape.Engine{
			Key:         r.p.Reshape.KeyColumns,
			MonthColumn: r.p.Reshape.MonthColumn,
			Families:    r.p.Reshape.Families,
			Workers:     r.p.Runtime.MeltWorkers,
		}.Run(ctx, wide)
		return err
	}); err != nil {
		return Result{}, err
	}
	r.summary.MeltedRows = long.NumRows()
	metrics.RecordRows(r.p.Job, "melted", int64(long.NumRows()))

	if err = r.stage("correct", func() error {
		monthly, err = r.correct(long)
		return err
	}); err != nil {
		return Result{}, err
	}
	r.summary.MonthlyRows = monthly.NumRows()

	if err = r.stage("annual", func() error {
		annual, err = AnnualTable(wide, r.p.Reshape.KeyColumns)
		return err
	}); err != nil {
		return Result{}, err
	}
	r.summary.AnnualRows = annual.NumRows()

	res := Result{Monthly: monthly, Annual: annual}
	if r.opt.DryRun {
		log.Printf("pipeline: dry run, skipping writes (monthly=%s annual=%s rows)",
			humanize.Comma(int64(monthly.NumRows())), humanize.Comma(int64(annual.NumRows())))
		return res, nil
	}

	if err = r.stage("write", func() error { return r.write(ctx, monthly, annual) }); err != nil {
		return res, err
	}
	metrics.RecordRows(r.p.Job, "monthly", int64(monthly.NumRows()))
	metrics.RecordRows(r.p.Job, "annual", int64(annual.NumRows()))

	if r.p.Storage.Kind != "" {
		if err = r.stage("store", func() error { return r.store(ctx, monthly, annual) }); err != nil {
			return res, err
		}
	}
	return res, nil
}

// stage times fn and records its outcome.
func (r *run) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStage(r.p.Job, name, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// correct derives the date, removes the known bad duplicates, applies the
// cutoff and enforces the monthly unique key. Row counts removed by the
// exclusion and cutoff steps are recorded separately.
func (r *run) correct(long *table.Table) (*table.Table, error) {
	c := r.p.Correct
	cutoff, err := r.p.CutoffTime()
	if err != nil {
		return nil, err
	}

	dated, err := transformer.Named{Name: "derive_date", Step: builtin.DeriveDate{
		YearColumn:  r.p.Reshape.YearColumn,
		MonthColumn: r.p.Reshape.MonthColumn,
		DateColumn:  c.DateColumn,
	}}.Apply(long)
	if err != nil {
		return nil, err
	}

	kept, err := transformer.Named{Name: "exclude", Step: builtin.Exclude{
		PlantColumn: c.PlantColumn,
		DateColumn:  c.DateColumn,
		Rules:       ExclusionRules(c.Exclusions),
	}}.Apply(dated)
	if err != nil {
		return nil, err
	}
	r.summary.ExcludedRows = dated.NumRows() - kept.NumRows()
	metrics.RecordRows(r.p.Job, "excluded", int64(r.summary.ExcludedRows))

	cut, err := transformer.Named{Name: "cutoff", Step: builtin.Cutoff{
		DateColumn: c.DateColumn,
		Before:     cutoff,
	}}.Apply(kept)
	if err != nil {
		return nil, err
	}
	r.summary.CutoffRows = kept.NumRows() - cut.NumRows()
	metrics.RecordRows(r.p.Job, "cutoff", int64(r.summary.CutoffRows))

	if len(c.UniqueKey) == 0 {
		return cut, nil
	}
	return transformer.Named{Name: "unique", Step: builtin.Unique{Keys: c.UniqueKey}}.Apply(cut)
}

func (r *run) write(ctx context.Context, monthly, annual *table.Table) error {
	out := r.p.Output
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := writer.WriteParquet(gctx, out.Monthly.Path, monthly, writer.Options{Compression: out.Monthly.Compression})
		return err
	})
	g.Go(func() error {
		_, err := writer.WriteParquet(gctx, out.Annual.Path, annual, writer.Options{Compression: out.Annual.Compression})
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	r.summary.MonthlyPath = out.Monthly.Path
	r.summary.AnnualPath = out.Annual.Path
	return nil
}

func (r *run) store(ctx context.Context, monthly, annual *table.Table) error {
	db := r.p.Storage.DB
	sink := storage.Sink{
		Kind:       r.p.Storage.Kind,
		DSN:        db.DSN,
		BatchSize:  r.p.Runtime.BatchSize,
		AutoCreate: db.AutoCreateTable,
	}
	// Sequential: SQLite allows a single writer.
	for _, x := range []struct {
		fqn string
		t   *table.Table
	}{{db.MonthlyTable, monthly}, {db.AnnualTable, annual}} {
		n, err := sink.Replace(ctx, x.fqn, x.t)
		if err != nil {
			return err
		}
		r.summary.StoredRows += n
	}
	metrics.RecordRows(r.p.Job, "stored", r.summary.StoredRows)
	return nil
}

// finish completes the summary, logs it and publishes it. Publication
// failures are logged; they never change the outcome of the run.
func (r *run) finish(ctx context.Context, runErr error) {
	s := &r.summary
	s.DurationMS = time.Since(s.StartedAt).Milliseconds()
	s.Status = notify.StatusSuccess
	if runErr != nil {
		s.Status = notify.StatusFailure
		s.Error = runErr.Error()
	}
	log.Printf("pipeline: run=%s status=%s raw=%s melted=%s excluded=%d cutoff=%s monthly=%s annual=%s elapsed=%s",
		s.RunID, s.Status,
		humanize.Comma(int64(s.RawRows)), humanize.Comma(int64(s.MeltedRows)), s.ExcludedRows,
		humanize.Comma(int64(s.CutoffRows)), humanize.Comma(int64(s.MonthlyRows)), humanize.Comma(int64(s.AnnualRows)),
		time.Duration(s.DurationMS)*time.Millisecond)

	if r.opt.Publisher == nil {
		return
	}
	if err := r.opt.Publisher.Publish(ctx, *s); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("notify: %v", err)
	}
}
