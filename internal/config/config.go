// Package config provides configuration management for irisdash.
//
// Config file locations (priority order):
//  1. $IRISDASH_CONFIG
//  2. ./irisdash.yaml, ./irisdash.toml
//  3. ~/.config/irisdash/config.yaml
//  4. /etc/irisdash/config.yaml
//
// YAML and TOML are both accepted; the format follows the file extension.
// Environment variables override file values, and command line flags override
// both (flags are applied by the caller).
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"irisdash/internal/domain"
)

// Environment overrides
const (
	EnvAddr         = "IRISDASH_ADDR"
	EnvStage        = "IRISDASH_STAGE"
	EnvDataset      = "IRISDASH_DATASET"
	EnvDatabasePath = "IRISDASH_DB"
	EnvLogLevel     = "IRISDASH_LOG_LEVEL"
	EnvDebug        = "IRISDASH_DEBUG"
)

const (
	DefaultDatasetURL = "https://raw.githubusercontent.com/mwaskom/seaborn-data/master/iris.csv"
	DefaultStylesheet = "https://codepen.io/chriddyp/pen/bWLwgP.css"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	// Decode over the defaults so omitted keys keep their default values
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, path, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, path, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyDefaults()

	return cfg, path, nil
}

// Save writes config to the specified path. A .toml extension writes TOML,
// anything else YAML.
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var data []byte
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		data = buf.Bytes()
	} else {
		out, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		data = out
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the settings of the final tutorial snapshot
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Stage:   StageRegression,
		Server: ServerConfig{
			Addr:         ":8050",
			ReadTimeout:  Duration(10 * time.Second),
			WriteTimeout: Duration(30 * time.Second),
			IdleTimeout:  Duration(60 * time.Second),
		},
		Dataset: DatasetConfig{
			Source:           DefaultDatasetURL,
			FallbackEmbedded: true,
			FetchTimeout:     Duration(15 * time.Second),
		},
		Plot: PlotConfig{
			Title:  "Iris measurements",
			X:      string(domain.ColumnSepalLength),
			Y:      string(domain.ColumnPetalLength),
			Height: 520,
		},
		Database:    DatabaseConfig{Path: "./irisdash.db", HistoryLimit: 500},
		Logging:     LoggingConfig{Level: "info"},
		Stylesheets: []string{DefaultStylesheet},
	}
}

// applyDefaults fills in values a file set to empty
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Stage == "" {
		c.Stage = def.Stage
	}
	c.Stage, _ = ParseStage(string(c.Stage))
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = def.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = def.Server.WriteTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = def.Server.IdleTimeout
	}
	if c.Dataset.Source == "" {
		c.Dataset.Source = def.Dataset.Source
	}
	if c.Dataset.FetchTimeout == 0 {
		c.Dataset.FetchTimeout = def.Dataset.FetchTimeout
	}
	if c.Plot.X == "" {
		c.Plot.X = def.Plot.X
	}
	if c.Plot.Y == "" {
		c.Plot.Y = def.Plot.Y
	}
	if c.Plot.Height <= 0 {
		c.Plot.Height = def.Plot.Height
	}
	if c.Database.Path == "" {
		c.Database.Path = def.Database.Path
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
}

// ApplyEnv overrides values from environment variables. getenv is usually
// os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvAddr)); v != "" {
		c.Server.Addr = v
	}
	if v := strings.TrimSpace(getenv(EnvStage)); v != "" {
		c.Stage, _ = ParseStage(v)
	}
	if v := strings.TrimSpace(getenv(EnvDataset)); v != "" {
		c.Dataset.Source = v
	}
	if v := strings.TrimSpace(getenv(EnvDatabasePath)); v != "" {
		c.Database.Path = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v, err := strconv.ParseBool(strings.TrimSpace(getenv(EnvDebug))); err == nil {
		c.Server.Debug = v
	}
}

// Validate checks the settings that cannot be defaulted
func (c *Config) Validate() error {
	if !c.Stage.Valid() {
		return fmt.Errorf("unknown stage %q (want one of hello, scatter, filter, regression)", c.Stage)
	}

	x, err := domain.ParseColumn(c.Plot.X)
	if err != nil {
		return fmt.Errorf("plot.x: %w", err)
	}
	y, err := domain.ParseColumn(c.Plot.Y)
	if err != nil {
		return fmt.Errorf("plot.y: %w", err)
	}
	if !x.IsNumeric() || !y.IsNumeric() {
		return fmt.Errorf("plot axes must be measurement columns, got %s and %s", x, y)
	}
	if x == y {
		return fmt.Errorf("plot.x and plot.y must differ, both are %s", x)
	}
	if c.Database.HistoryLimit < 0 {
		return fmt.Errorf("database.history_limit must not be negative")
	}
	return nil
}

// XColumn returns the parsed default x axis column
func (c *Config) XColumn() domain.Column {
	col, err := domain.ParseColumn(c.Plot.X)
	if err != nil {
		return domain.ColumnSepalLength
	}
	return col
}

// YColumn returns the parsed default y axis column
func (c *Config) YColumn() domain.Column {
	col, err := domain.ParseColumn(c.Plot.Y)
	if err != nil {
		return domain.ColumnPetalLength
	}
	return col
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Stage: %s, Addr: %s\n", c.Stage, c.Server.Addr)
	summary += fmt.Sprintf("Dataset: %s (embedded fallback: %t)\n", c.Dataset.Source, c.Dataset.FallbackEmbedded)
	summary += fmt.Sprintf("Plot: %s vs %s", c.Plot.Y, c.Plot.X)
	return summary
}
