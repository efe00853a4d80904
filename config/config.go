/*
Package config holds the runtime configuration of the dashboard service.

PRECEDENCE (lowest to highest):
  1. Default()
  2. YAML file given with --config
  3. Command-line flags and SALES_* environment variables

EXAMPLE config.yaml:
  data:
    path: datos_pivoteados_fecha.csv
    delimiter: ","
    brand_image: Rfp.png
  server:
    addr: ":8080"
    db: ":memory:"
    allowed_origins: ["http://localhost:5173"]
    read_timeout: 15s
  log:
    level: info
    format: json
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Data   DataConfig   `yaml:"data"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

type DataConfig struct {
	Path       string `yaml:"path"`
	Delimiter  string `yaml:"delimiter"`
	BrandImage string `yaml:"brand_image"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	DBPath          string        `yaml:"db"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Data: DataConfig{
			Path:      "datos_pivoteados_fecha.csv",
			Delimiter: ",",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			DBPath:          ":memory:",
			AllowedOrigins:  []string{"http://localhost:5173", "http://localhost:8080"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadFile overlays the YAML file at path onto c. Keys absent from the
// file keep their current value.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

var (
	ErrNoDataPath   = errors.New("data path is required")
	ErrBadDelimiter = errors.New("delimiter must be a single character")
	ErrBadTimeout   = errors.New("timeouts must be positive")
	ErrBadLogLevel  = errors.New("unknown log level")
	ErrBadLogFormat = errors.New("log format must be json or console")
	ErrNoListenAddr = errors.New("listen address is required")
	ErrNoSessionDB  = errors.New("session database path is required")
)

// Validate checks c for unusable values.
func (c Config) Validate() error {
	var errs []error
	if c.Data.Path == "" {
		errs = append(errs, ErrNoDataPath)
	}
	if utf8.RuneCountInString(c.Data.Delimiter) != 1 {
		errs = append(errs, fmt.Errorf("%w: %q", ErrBadDelimiter, c.Data.Delimiter))
	}
	if c.Server.Addr == "" {
		errs = append(errs, ErrNoListenAddr)
	}
	if c.Server.DBPath == "" {
		errs = append(errs, ErrNoSessionDB)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, ErrBadTimeout)
	}
	if lvl, err := zerolog.ParseLevel(c.Log.Level); err != nil || lvl == zerolog.NoLevel {
		errs = append(errs, fmt.Errorf("%w: %q", ErrBadLogLevel, c.Log.Level))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("%w: %q", ErrBadLogFormat, c.Log.Format))
	}
	return errors.Join(errs...)
}

// DelimiterRune returns the configured delimiter. Call after Validate.
func (c Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Data.Delimiter)
	return r
}

// Logger builds the process logger.
func (c Config) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var out zerolog.Logger
	if c.Log.Format == "console" {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		out = zerolog.New(os.Stderr)
	}
	return out.Level(level).With().Timestamp().Logger()
}
