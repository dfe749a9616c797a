// Package config loads the processing configuration. Precedence is
// environment (HPTEST_ prefix) over YAML file over built-in defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete processing configuration.
type Config struct {
	Paths       PathsConfig       `yaml:"paths" envconfig:"PATHS"`
	Fluid       string            `yaml:"fluid" envconfig:"FLUID" validate:"required"`
	SteadyState SteadyStateConfig `yaml:"steady_state" envconfig:"STEADY_STATE"`
	Logging     LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
}

// PathsConfig contains file system paths.
type PathsConfig struct {
	// DataDir holds the logger recordings (.csv or .xlsx).
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	// NameTable is the fixed-width name-conversions file mapping short
	// quantity names to logger column headers.
	NameTable string `yaml:"name_table" envconfig:"NAME_TABLE" validate:"required"`
	// OutputDir receives the CSV and XLSX reports.
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
}

// SteadyStateConfig tunes the segmentation and binning of steady runs.
type SteadyStateConfig struct {
	// StdThreshold is the compressor-frequency standard deviation, in
	// Hz, above which the current steady run is judged over.
	StdThreshold float64 `yaml:"std_threshold" envconfig:"STD_THRESHOLD" validate:"gt=0"`
	// BinEdges are the ascending bin thresholds for the run durations.
	BinEdges Durations `yaml:"bin_edges" envconfig:"BIN_EDGES" validate:"min=2,dive,gt=0"`
	// OpenLow and OpenHigh add catch-all bins below the first and at or
	// above the last threshold.
	OpenLow  bool `yaml:"open_low" envconfig:"OPEN_LOW"`
	OpenHigh bool `yaml:"open_high" envconfig:"OPEN_HIGH"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Durations is a duration list parseable from YAML ([1m, 30m, 1h]) and
// from the environment ("1m,30m,1h").
type Durations []time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Durations) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw []string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	return d.parse(raw)
}

// Decode implements envconfig.Decoder.
func (d *Durations) Decode(value string) error {
	return d.parse(strings.Split(value, ","))
}

func (d *Durations) parse(raw []string) error {
	out := make(Durations, 0, len(raw))
	for _, s := range raw {
		parsed, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("bin edge %q: %w", s, err)
		}
		out = append(out, parsed)
	}
	*d = out
	return nil
}

// Load loads the configuration. An empty configFile falls back to the
// default search locations; a missing file in those locations is fine,
// an explicitly named missing file is not.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	explicit := configFile != ""
	if !explicit {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, fmt.Errorf("load config file %s: %w", configFile, err)
			}
		}
	}

	if err := envconfig.Process("HPTEST", cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// validate applies the struct tags plus the cross-field constraints the
// tags cannot express.
func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	edges := c.SteadyState.BinEdges
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return fmt.Errorf("bin edges must be strictly ascending, got %v after %v",
				edges[i], edges[i-1])
		}
	}
	return nil
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir:   "data",
			NameTable: "name_conversions.txt",
			OutputDir: "reports",
		},
		Fluid: "R410A",
		SteadyState: SteadyStateConfig{
			StdThreshold: 2.0,
			BinEdges:     Durations{time.Minute, 30 * time.Minute, time.Hour},
			OpenLow:      true,
			OpenHigh:     true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
