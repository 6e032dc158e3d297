// Package config loads the YAML configuration shared by all commands.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mcpchecker/sessionreport/pkg/logscan"
	"github.com/mcpchecker/sessionreport/pkg/metrics"
	"github.com/mcpchecker/sessionreport/pkg/report"
	"github.com/mcpchecker/sessionreport/pkg/runs"
	"sigs.k8s.io/yaml"
)

// Default values. Commands fall back to these when neither a config file nor
// a flag sets a value.
const (
	DefaultRunsRoot    = "./wandb"
	DefaultResultsDir  = "./aiopslab/data/results"
	DefaultAgent       = "deepseek-r1"
	DefaultWorkers     = 1
	DefaultFormatAgent = "Qwen2.5-Coder-3B-Instruct"
)

type Config struct {
	Markers      logscan.Markers    `json:"markers"`
	Runs         RunsConfig         `json:"runs"`
	Artifacts    ArtifactsConfig    `json:"artifacts"`
	Metrics      MetricsConfig      `json:"metrics"`
	FormatErrors FormatErrorsConfig `json:"formatErrors"`
}

type RunsConfig struct {
	Root    string      `json:"root"`
	Layout  runs.Layout `json:"layout"`
	Workers int         `json:"workers"`
	// Output is the report path. Empty means final_report.json under Root.
	Output string `json:"output,omitempty"`
}

type ArtifactsConfig struct {
	Dir string `json:"dir"`
}

type MetricsConfig struct {
	Agent string `json:"agent"`
}

type FormatErrorsConfig struct {
	Agent        string   `json:"agent"`
	Marker       string   `json:"marker"`
	MinStartTime *float64 `json:"minStartTime,omitempty"`
}

// Default returns the configuration matching the benchmark harness layout.
func Default() *Config {
	return &Config{
		Markers: logscan.DefaultMarkers(),
		Runs: RunsConfig{
			Root:    DefaultRunsRoot,
			Layout:  runs.DefaultLayout(),
			Workers: DefaultWorkers,
		},
		Artifacts: ArtifactsConfig{Dir: DefaultResultsDir},
		Metrics:   MetricsConfig{Agent: DefaultAgent},
		FormatErrors: FormatErrorsConfig{
			Agent:  DefaultFormatAgent,
			Marker: metrics.DefaultFormatErrorMarker,
		},
	}
}

// Read parses YAML data on top of the defaults. Path settings may reference
// environment variables as ${VAR} or ${VAR:-default}.
func Read(data []byte) (*Config, error) {
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromFile reads the configuration at path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg, err := Read(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config file '%s': %w", path, err)
	}

	return cfg, nil
}

// Validate checks that the configuration can drive a scan.
func (c *Config) Validate() error {
	if err := c.Markers.Validate(); err != nil {
		return err
	}
	if c.Runs.Layout.Prefix == "" || c.Runs.Layout.FilesDir == "" || c.Runs.Layout.LogFile == "" {
		return fmt.Errorf("runs.layout prefix, filesDir and logFile must be set")
	}
	if c.Runs.Workers < 0 {
		return fmt.Errorf("runs.workers must not be negative, got %d", c.Runs.Workers)
	}
	return nil
}

// Scanner builds the line scanner for the configured markers.
func (c *Config) Scanner() (*logscan.Scanner, error) {
	return logscan.NewScanner(c.Markers)
}

// ReportPath returns where the correlated report is written.
func (c *Config) ReportPath() string {
	if c.Runs.Output != "" {
		return c.Runs.Output
	}
	return filepath.Join(c.Runs.Root, report.DefaultFileName)
}
