package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides, e.g. PRGENFUEL_CUTOFF.
const EnvPrefix = "PRGENFUEL"

// envOverrides are the settings most likely to change between runs. Empty
// values leave the file/default configuration untouched.
type envOverrides struct {
	Input          string `envconfig:"INPUT"`
	MonthlyOutput  string `envconfig:"MONTHLY_OUTPUT"`
	AnnualOutput   string `envconfig:"ANNUAL_OUTPUT"`
	Cutoff         string `envconfig:"CUTOFF"`
	StorageKind    string `envconfig:"STORAGE_KIND"`
	StorageDSN     string `envconfig:"STORAGE_DSN"`
	MetricsBackend string `envconfig:"METRICS_BACKEND"`
	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL"`
	DatadogAddr    string `envconfig:"DATADOG_ADDR"`
}

// Load reads the pipeline at path over Default() and applies environment
// overrides. An empty path yields the defaults plus overrides. Files ending in
// .yaml or .yml are decoded as YAML, everything else as JSON.
func Load(path string) (Pipeline, error) {
	p := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Pipeline{}, fmt.Errorf("read config: %w", err)
		}
		if err := Decode(b, filepath.Ext(path), &p); err != nil {
			return Pipeline{}, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	if err := ApplyEnv(&p); err != nil {
		return Pipeline{}, err
	}
	return p, nil
}

// Decode unmarshals b into p according to the file extension ext.
func Decode(b []byte, ext string, p *Pipeline) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(p); err != nil {
			return err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(p); err != nil {
			return err
		}
	}
	if p.Source.Options == nil {
		p.Source.Options = Options{}
	}
	return nil
}

// ApplyEnv overlays PRGENFUEL_* environment variables onto p.
func ApplyEnv(p *Pipeline) error {
	var o envOverrides
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return fmt.Errorf("env overrides: %w", err)
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&p.Source.File.Path, o.Input)
	set(&p.Output.Monthly.Path, o.MonthlyOutput)
	set(&p.Output.Annual.Path, o.AnnualOutput)
	set(&p.Correct.Cutoff, o.Cutoff)
	set(&p.Storage.Kind, o.StorageKind)
	set(&p.Storage.DB.DSN, o.StorageDSN)
	set(&p.Metrics.Backend, o.MetricsBackend)
	set(&p.Metrics.PushgatewayURL, o.PushgatewayURL)
	set(&p.Metrics.DatadogAddr, o.DatadogAddr)
	return nil
}
