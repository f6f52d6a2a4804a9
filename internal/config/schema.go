package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version     int            `yaml:"version" toml:"version"`
	Stage       Stage          `yaml:"stage" toml:"stage"`
	Server      ServerConfig   `yaml:"server" toml:"server"`
	Dataset     DatasetConfig  `yaml:"dataset" toml:"dataset"`
	Plot        PlotConfig     `yaml:"plot" toml:"plot"`
	Database    DatabaseConfig `yaml:"database" toml:"database"`
	Logging     LoggingConfig  `yaml:"logging" toml:"logging"`
	Stylesheets []string       `yaml:"stylesheets" toml:"stylesheets"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr         string   `yaml:"addr" toml:"addr"`
	ReadTimeout  Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout" toml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout" toml:"idle_timeout"`
	Debug        bool     `yaml:"debug" toml:"debug"`
}

// DatasetConfig says where the table comes from
type DatasetConfig struct {
	Source           string   `yaml:"source" toml:"source"` // http(s) URL or local path
	FallbackEmbedded bool     `yaml:"fallback_embedded" toml:"fallback_embedded"`
	FetchTimeout     Duration `yaml:"fetch_timeout" toml:"fetch_timeout"`
}

// PlotConfig holds the default axes of the scatter plot
type PlotConfig struct {
	Title  string `yaml:"title" toml:"title"`
	X      string `yaml:"x" toml:"x"`
	Y      string `yaml:"y" toml:"y"`
	Height int    `yaml:"height" toml:"height"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path         string `yaml:"path" toml:"path"`
	HistoryLimit int    `yaml:"history_limit" toml:"history_limit"` // interactions kept; 0 = unlimited
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	Console bool   `yaml:"console" toml:"console"` // human readable output instead of JSON
}

// Duration wraps time.Duration for YAML and TOML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, used by the TOML decoder
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
