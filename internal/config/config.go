// Package config defines the canonical configuration model for the EIA-923
// Puerto Rico generation/fuel reshape job. A Pipeline is decoded from a JSON or
// YAML file, layered over Default(), and then overridden from the environment.
//
// Everything that the job used to hard-code (input/output paths, the cutoff
// date, the known-bad-row exclusions, the metric families) lives here so a new
// data vintage only needs a new config file.
//
// Example (trimmed):
//
//	{
//	  "job": "pr_gen_fuel",
//	  "source": { "kind": "parquet", "file": { "path": "data/raw.parquet" } },
//	  "correct": {
//	    "cutoff": "2025-03-01",
//	    "exclusions": [ { "plant_id": 62410, "year": 2020, "null_column": "fuel_consumed_for_electricity_mmbtu" } ]
//	  },
//	  "output": {
//	    "monthly": { "path": "data/pr_gen_fuel_monthly.parquet" },
//	    "annual":  { "path": "data/pr_gen_fuel_annual.parquet" }
//	  }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// CutoffLayout is the layout of Correct.Cutoff.
const CutoffLayout = "2006-01-02"

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the run for logs, metrics and notifications.
	Job string `json:"job" yaml:"job"`

	Source    Source        `json:"source" yaml:"source"`
	Normalize Normalize     `json:"normalize" yaml:"normalize"`
	Reshape   Reshape       `json:"reshape" yaml:"reshape"`
	Correct   Correct       `json:"correct" yaml:"correct"`
	Output    Output        `json:"output" yaml:"output"`
	Storage   Storage       `json:"storage" yaml:"storage"`
	Metrics   Metrics       `json:"metrics" yaml:"metrics"`
	Notify    Notify        `json:"notify" yaml:"notify"`
	Runtime   RuntimeConfig `json:"runtime" yaml:"runtime"`
}

// Source identifies the raw input file.
type Source struct {
	// Kind selects the reader: "parquet", "csv" or "xlsx".
	Kind string `json:"kind" yaml:"kind"`

	File SourceFile `json:"file" yaml:"file"`

	// Options is interpreted by the reader. Typical keys:
	//   csv:  comma (string), trim_space (bool), header_map (object)
	//   xlsx: sheet (string), header_row (int, 1-based), header_map (object)
	Options Options `json:"options" yaml:"options"`
}

// SourceFile holds the local path of the input.
type SourceFile struct {
	Path string `json:"path" yaml:"path"`
}

// Normalize configures the Loader/Normalizer stage.
type Normalize struct {
	// NullSentinel is the literal that marks a missing value in the raw data.
	NullSentinel string `json:"null_sentinel" yaml:"null_sentinel"`

	// FloatMarkers: any column whose name contains one of these substrings is
	// cast to float64.
	FloatMarkers []string `json:"float_markers" yaml:"float_markers"`

	// FlagColumn holds single-letter codes mapped to a nullable boolean.
	FlagColumn string `json:"flag_column" yaml:"flag_column"`
	FlagTrue   string `json:"flag_true" yaml:"flag_true"`
	FlagFalse  string `json:"flag_false" yaml:"flag_false"`

	// Categorical lists low-cardinality enumerated columns.
	Categorical []string `json:"categorical" yaml:"categorical"`

	// StrictFloats makes unparseable numeric cells fatal. When false they are
	// turned into missing values and counted.
	StrictFloats bool `json:"strict_floats" yaml:"strict_floats"`
}

// Reshape configures the Melt-and-Merge engine.
type Reshape struct {
	// KeyColumns is the entity key carried through every melt.
	KeyColumns []string `json:"key_columns" yaml:"key_columns"`

	// YearColumn is the key column holding the 4-digit report year.
	YearColumn string `json:"year_column" yaml:"year_column"`

	// MonthColumn names the melted period column.
	MonthColumn string `json:"month_column" yaml:"month_column"`

	// Families are the metric prefixes; each must have one
	// "<family>_<month>" column per calendar month.
	Families []string `json:"families" yaml:"families"`
}

// Correct configures the Corrector stage.
type Correct struct {
	// DateColumn is the derived first-of-month date column.
	DateColumn string `json:"date_column" yaml:"date_column"`

	// Cutoff drops rows with a date at or after it (YYYY-MM-DD).
	Cutoff string `json:"cutoff" yaml:"cutoff"`

	// PlantColumn identifies the plant for exclusion rules.
	PlantColumn string `json:"plant_column" yaml:"plant_column"`

	// UniqueKey must be unique across the final monthly table.
	UniqueKey []string `json:"unique_key" yaml:"unique_key"`

	Exclusions []Exclusion `json:"exclusions" yaml:"exclusions"`
}

// Exclusion describes a known upstream duplicate-with-nulls defect: for the
// given plant and year, rows whose NullColumn is missing are dropped when a
// row with the same monthly key and a non-missing NullColumn exists.
type Exclusion struct {
	PlantID    int64  `json:"plant_id" yaml:"plant_id"`
	Year       int    `json:"year" yaml:"year"`
	NullColumn string `json:"null_column" yaml:"null_column"`
	Reason     string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Output holds the two artifact destinations.
type Output struct {
	Monthly OutputFile `json:"monthly" yaml:"monthly"`
	Annual  OutputFile `json:"annual" yaml:"annual"`
}

// OutputFile is a single parquet artifact.
type OutputFile struct {
	Path string `json:"path" yaml:"path"`

	// Compression is one of "snappy" (default), "gzip", "zstd", "none".
	Compression string `json:"compression" yaml:"compression"`
}

// Storage optionally mirrors both tables into a database.
type Storage struct {
	// Kind selects the backend: "", "sqlite", "postgres", "mssql", "mysql".
	// Empty disables the sink.
	Kind string   `json:"kind" yaml:"kind"`
	DB   DBConfig `json:"db" yaml:"db"`
}

// DBConfig configures the DB sink.
type DBConfig struct {
	DSN          string `json:"dsn" yaml:"dsn"`
	MonthlyTable string `json:"monthly_table" yaml:"monthly_table"`
	AnnualTable  string `json:"annual_table" yaml:"annual_table"`

	// AutoCreateTable creates missing tables from the output schema.
	AutoCreateTable bool `json:"auto_create_table" yaml:"auto_create_table"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is "none" (default), "pushgateway" or "datadog".
	Backend        string   `json:"backend" yaml:"backend"`
	PushgatewayURL string   `json:"pushgateway_url" yaml:"pushgateway_url"`
	DatadogAddr    string   `json:"datadog_addr" yaml:"datadog_addr"`
	Namespace      string   `json:"namespace" yaml:"namespace"`
	Tags           []string `json:"tags" yaml:"tags"`
}

// Notify configures the completion notice.
type Notify struct {
	MQTT MQTTConfig `json:"mqtt" yaml:"mqtt"`
}

// MQTTConfig holds MQTT broker settings for the run summary.
type MQTTConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Broker   string `json:"broker" yaml:"broker"` // host:port
	Topic    string `json:"topic" yaml:"topic"`
	ClientID string `json:"client_id" yaml:"client_id"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// RuntimeConfig controls fan-out and batching.
type RuntimeConfig struct {
	// MeltWorkers bounds concurrent family melts.
	MeltWorkers int `json:"melt_workers" yaml:"melt_workers"`

	// BatchSize is the DB sink batch size.
	BatchSize int `json:"batch_size" yaml:"batch_size"`
}

// Default returns the configuration matching the 2025 data vintage.
func Default() Pipeline {
	return Pipeline{
		Job: "pr_gen_fuel",
		Source: Source{
			Kind:    "parquet",
			File:    SourceFile{Path: "data/raw_eia923__puerto_rico_generation_fuel.parquet"},
			Options: Options{},
		},
		Normalize: Normalize{
			NullSentinel: ".",
			FloatMarkers: []string{"fuel_consumption", "fuel_consumed", "net_generation", "fuel_mmbtu_per_unit"},
			FlagColumn:   "associated_combined_heat_power",
			FlagTrue:     "Y",
			FlagFalse:    "N",
			Categorical: []string{
				"energy_source_code",
				"fuel_type_code_agg",
				"prime_mover_code",
				"reporting_frequency_code",
				"data_maturity",
				"plant_state",
				"fuel_unit",
			},
			StrictFloats: true,
		},
		Reshape: Reshape{
			KeyColumns: []string{
				"plant_id_eia",
				"plant_name_eia",
				"report_year",
				"prime_mover_code",
				"energy_source_code",
				"fuel_unit",
			},
			YearColumn:  "report_year",
			MonthColumn: "month",
			Families: []string{
				"fuel_consumed_for_electricity_mmbtu",
				"fuel_consumed_for_electricity_units",
				"fuel_consumed_mmbtu",
				"fuel_consumed_units",
				"net_generation_mwh",
			},
		},
		Correct: Correct{
			DateColumn:  "date",
			Cutoff:      "2025-03-01",
			PlantColumn: "plant_id_eia",
			UniqueKey:   []string{"plant_id_eia", "energy_source_code", "prime_mover_code", "fuel_unit", "date"},
			Exclusions: []Exclusion{{
				PlantID:    62410,
				Year:       2020,
				NullColumn: "fuel_consumed_for_electricity_mmbtu",
				Reason:     "two 2020 entries upstream, one entirely null",
			}},
		},
		Output: Output{
			Monthly: OutputFile{Path: "data/pr_gen_fuel_monthly.parquet", Compression: "snappy"},
			Annual:  OutputFile{Path: "data/pr_gen_fuel_annual.parquet", Compression: "snappy"},
		},
		Storage: Storage{
			DB: DBConfig{MonthlyTable: "pr_gen_fuel_monthly", AnnualTable: "pr_gen_fuel_annual"},
		},
		Metrics: Metrics{Backend: "none"},
		Notify: Notify{MQTT: MQTTConfig{
			Topic:    "prgenfuel/runs",
			ClientID: "prgenfuel",
		}},
		Runtime: RuntimeConfig{MeltWorkers: 5, BatchSize: 5000},
	}
}

// CutoffTime parses Correct.Cutoff as a UTC date.
func (p Pipeline) CutoffTime() (time.Time, error) {
	t, err := time.Parse(CutoffLayout, p.Correct.Cutoff)
	if err != nil {
		return time.Time{}, fmt.Errorf("correct.cutoff %q: %w", p.Correct.Cutoff, err)
	}
	return t, nil
}

// Options is a small helper to fetch typed values from arbitrary JSON/YAML
// maps. It performs only minimal coercion and returns the provided default
// when a key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64,
// YAML integers as int; both are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		case int64:
			return int(n)
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// UnmarshalJSON makes a missing or null "options" object decode to an empty,
// non-nil map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
