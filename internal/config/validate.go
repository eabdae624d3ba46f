package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to the operator but does not block.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into the
// config (e.g. "correct.exclusions[0].year").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation of a Pipeline. It does not
// mutate p.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels logs, metrics and notifications",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateNormalize(p.Normalize)...)
	issues = append(issues, validateReshape(p.Reshape)...)
	issues = append(issues, validateCorrect(p)...)
	issues = append(issues, validateOutput(p.Output)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	issues = append(issues, validateNotify(p.Notify)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	return issues
}

func errIssue(path, msg string) Issue {
	return Issue{Severity: SeverityError, Path: path, Message: msg}
}

func warnIssue(path, msg string) Issue {
	return Issue{Severity: SeverityWarning, Path: path, Message: msg}
}

func validateSource(s Source) []Issue {
	var issues []Issue
	switch s.Kind {
	case "parquet", "csv", "xlsx":
	case "":
		issues = append(issues, errIssue("source.kind", "source.kind must not be empty"))
	default:
		issues = append(issues, errIssue("source.kind", fmt.Sprintf("unknown source kind %q; want parquet, csv or xlsx", s.Kind)))
	}
	if strings.TrimSpace(s.File.Path) == "" {
		issues = append(issues, errIssue("source.file.path", "source requires a non-empty path"))
	}
	if s.Kind == "xlsx" && s.Options.Int("header_row", 1) < 1 {
		issues = append(issues, errIssue("source.options.header_row", "header_row is 1-based"))
	}
	return issues
}

func validateNormalize(n Normalize) []Issue {
	var issues []Issue
	if n.NullSentinel == "" {
		issues = append(issues, warnIssue("normalize.null_sentinel", "no null sentinel; literal placeholders will survive as values"))
	}
	if len(n.FloatMarkers) == 0 {
		issues = append(issues, warnIssue("normalize.float_markers", "no float markers; metric columns keep their source type"))
	}
	if n.FlagColumn != "" && (n.FlagTrue == "" || n.FlagFalse == "") {
		issues = append(issues, errIssue("normalize.flag_true", "flag_column requires both flag_true and flag_false codes"))
	}
	if n.FlagTrue != "" && n.FlagTrue == n.FlagFalse {
		issues = append(issues, errIssue("normalize.flag_false", "flag_true and flag_false must differ"))
	}
	return issues
}

// publishedFamilies is the number of monthly metric families in the EIA-923
// Puerto Rico table. The source documentation speaks of four monthly groups
// while net generation is a fifth; all five are melted.
const publishedFamilies = 5

func validateReshape(r Reshape) []Issue {
	var issues []Issue
	if len(r.KeyColumns) == 0 {
		issues = append(issues, errIssue("reshape.key_columns", "entity key must not be empty"))
	}
	if r.YearColumn == "" {
		issues = append(issues, errIssue("reshape.year_column", "year_column must not be empty"))
	} else if !contains(r.KeyColumns, r.YearColumn) {
		issues = append(issues, errIssue("reshape.year_column", fmt.Sprintf("year column %q must be part of key_columns", r.YearColumn)))
	}
	if r.MonthColumn == "" {
		issues = append(issues, errIssue("reshape.month_column", "month_column must not be empty"))
	}
	switch n := len(r.Families); {
	case n == 0:
		issues = append(issues, errIssue("reshape.families", "at least one metric family is required"))
	case n != publishedFamilies:
		issues = append(issues, warnIssue("reshape.families", fmt.Sprintf(
			"%d metric families configured; the published table carries %d (four fuel families plus net generation)", n, publishedFamilies)))
	}
	seen := map[string]struct{}{}
	for i, f := range r.Families {
		if strings.TrimSpace(f) == "" {
			issues = append(issues, errIssue(fmt.Sprintf("reshape.families[%d]", i), "family prefix must not be empty"))
			continue
		}
		if _, dup := seen[f]; dup {
			issues = append(issues, errIssue(fmt.Sprintf("reshape.families[%d]", i), fmt.Sprintf("duplicate family %q", f)))
		}
		seen[f] = struct{}{}
	}
	return issues
}

func validateCorrect(p Pipeline) []Issue {
	var issues []Issue
	c := p.Correct
	if c.DateColumn == "" {
		issues = append(issues, errIssue("correct.date_column", "date_column must not be empty"))
	}
	if _, err := p.CutoffTime(); err != nil {
		issues = append(issues, errIssue("correct.cutoff", fmt.Sprintf("cutoff must be YYYY-MM-DD: %v", err)))
	}
	if len(c.UniqueKey) == 0 {
		issues = append(issues, warnIssue("correct.unique_key", "no unique key; duplicate monthly rows will not be detected"))
	}
	for _, k := range c.UniqueKey {
		if k != c.DateColumn && !contains(p.Reshape.KeyColumns, k) {
			issues = append(issues, errIssue("correct.unique_key", fmt.Sprintf("unique key column %q is neither a key column nor the date column", k)))
		}
		if k == p.Reshape.YearColumn {
			issues = append(issues, errIssue("correct.unique_key", fmt.Sprintf("%q is dropped after date derivation", k)))
		}
	}
	if len(c.Exclusions) > 0 && c.PlantColumn == "" {
		issues = append(issues, errIssue("correct.plant_column", "exclusions require plant_column"))
	}
	for i, e := range c.Exclusions {
		path := fmt.Sprintf("correct.exclusions[%d]", i)
		if e.Year < 1000 || e.Year > 9999 {
			issues = append(issues, errIssue(path+".year", "year must have 4 digits"))
		}
		if e.NullColumn == "" {
			issues = append(issues, errIssue(path+".null_column", "null_column must not be empty"))
		} else if !contains(p.Reshape.Families, e.NullColumn) {
			issues = append(issues, warnIssue(path+".null_column", fmt.Sprintf("%q is not a metric family; it must exist in the monthly table", e.NullColumn)))
		}
	}
	return issues
}

func validateOutput(o Output) []Issue {
	var issues []Issue
	for name, f := range map[string]OutputFile{"monthly": o.Monthly, "annual": o.Annual} {
		if strings.TrimSpace(f.Path) == "" {
			issues = append(issues, errIssue("output."+name+".path", "output path must not be empty"))
		}
		switch strings.ToLower(f.Compression) {
		case "", "snappy", "gzip", "zstd", "none":
		default:
			issues = append(issues, errIssue("output."+name+".compression", fmt.Sprintf("unknown compression %q", f.Compression)))
		}
	}
	if o.Monthly.Path != "" && o.Monthly.Path == o.Annual.Path {
		issues = append(issues, errIssue("output.annual.path", "monthly and annual outputs must not share a path"))
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue
	switch s.Kind {
	case "":
		return nil
	case "sqlite", "postgres", "mssql", "mysql":
	default:
		issues = append(issues, warnIssue("storage.kind", fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind)))
	}
	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, errIssue("storage.db.dsn", "storage.db.dsn must not be empty"))
	}
	if strings.TrimSpace(s.DB.MonthlyTable) == "" {
		issues = append(issues, errIssue("storage.db.monthly_table", "monthly_table must not be empty"))
	}
	if strings.TrimSpace(s.DB.AnnualTable) == "" {
		issues = append(issues, errIssue("storage.db.annual_table", "annual_table must not be empty"))
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if m.PushgatewayURL == "" {
			return []Issue{warnIssue("metrics.pushgateway_url", "empty; defaulting to http://localhost:9091")}
		}
	case "datadog":
		if m.DatadogAddr == "" {
			return []Issue{errIssue("metrics.datadog_addr", "datadog backend requires an agent address")}
		}
	default:
		return []Issue{warnIssue("metrics.backend", fmt.Sprintf("unknown metrics backend %q; metrics disabled", m.Backend))}
	}
	return nil
}

func validateNotify(n Notify) []Issue {
	if !n.MQTT.Enabled {
		return nil
	}
	var issues []Issue
	if n.MQTT.Broker == "" {
		issues = append(issues, errIssue("notify.mqtt.broker", "MQTT broker address is required when enabled"))
	}
	if n.MQTT.Topic == "" {
		issues = append(issues, errIssue("notify.mqtt.topic", "MQTT topic is required when enabled"))
	}
	return issues
}

func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue
	if r.MeltWorkers < 0 {
		issues = append(issues, errIssue("runtime.melt_workers", "melt_workers must not be negative"))
	}
	if r.BatchSize <= 0 {
		issues = append(issues, warnIssue("runtime.batch_size", fmt.Sprintf("batch_size=%d; the DB sink falls back to 5000", r.BatchSize)))
	}
	return issues
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
