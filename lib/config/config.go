// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// productionMaxRows is the row cap production applies when the file
// sets none.
const productionMaxRows = 10000

// Config is the master configuration.
type Config struct {
	// Environment identifies the deployment type.
	Environment Environment `yaml:"environment"`

	// Database locates the remote database file.
	Database DatabaseConfig `yaml:"database"`

	// HTTP configures the range fetcher.
	HTTP HTTPConfig `yaml:"http"`

	// Worker configures the query socket.
	Worker WorkerConfig `yaml:"worker"`

	// Logging configures the process logger.
	Logging LoggingConfig `yaml:"logging"`

	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Database *DatabaseConfig `yaml:"database,omitempty"`
	HTTP     *HTTPConfig     `yaml:"http,omitempty"`
	Worker   *WorkerConfig   `yaml:"worker,omitempty"`
	Logging  *LoggingConfig  `yaml:"logging,omitempty"`
}

// DatabaseConfig locates the database: either URL, or BaseURL and Name.
type DatabaseConfig struct {
	// URL is the absolute URL of the database file.
	URL string `yaml:"url"`

	// BaseURL is the directory the file is served from, for example
	// the origin of the page that publishes it.
	BaseURL string `yaml:"base_url"`

	// Name is the file name relative to BaseURL.
	Name string `yaml:"name"`
}

// HTTPConfig configures outbound requests.
type HTTPConfig struct {
	// RequestTimeout bounds each HEAD or range request.
	// Default: 30s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// UserAgent is sent with every request.
	// Default: empty, which the binaries replace with httpvfs/<version>
	UserAgent string `yaml:"user_agent"`
}

// WorkerConfig configures the query socket.
type WorkerConfig struct {
	// SocketPath is the Unix socket the worker listens on.
	// Default: ${XDG_RUNTIME_DIR:-/tmp}/httpvfs.sock
	SocketPath string `yaml:"socket_path"`

	// MaxRows caps rows per query. Zero means no cap.
	// Default: 0 (development), 10000 (production)
	MaxRows int `yaml:"max_rows"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Format is text, json, or auto (text on a terminal, JSON
	// otherwise).
	// Default: auto (development), json (production)
	Format string `yaml:"format"`
}

// Default returns the configuration every file is merged over.
func Default() *Config {
	return &Config{
		Environment: Development,
		HTTP: HTTPConfig{
			RequestTimeout: 30 * time.Second,
		},
		Worker: WorkerConfig{
			SocketPath: "${XDG_RUNTIME_DIR:-/tmp}/httpvfs.sock",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads configuration from the file named by HTTPVFS_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv("HTTPVFS_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("HTTPVFS_CONFIG environment variable not set; " +
			"set it to the path of your httpvfs.yaml config file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadDefault returns Default with variables expanded, for running
// without a file when flags supply the rest.
func LoadDefault() *Config {
	cfg := Default()
	cfg.expandVariables()
	return cfg
}

// LoadFile loads configuration from path. The result is not validated;
// call Validate after applying any flag overrides.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &ConfigOverrides{}
		}
		// Production defaults: bounded replies and machine-readable logs.
		if c.Worker.MaxRows == 0 && (overrides.Worker == nil || overrides.Worker.MaxRows == 0) {
			c.Worker.MaxRows = productionMaxRows
		}
		if c.Logging.Format == "auto" && (overrides.Logging == nil || overrides.Logging.Format == "") {
			c.Logging.Format = "json"
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Database != nil {
		// The location is replaced as a unit so a base-URL override
		// does not combine with a URL from the base section.
		if *overrides.Database != (DatabaseConfig{}) {
			c.Database = *overrides.Database
		}
	}

	if overrides.HTTP != nil {
		if overrides.HTTP.RequestTimeout != 0 {
			c.HTTP.RequestTimeout = overrides.HTTP.RequestTimeout
		}
		if overrides.HTTP.UserAgent != "" {
			c.HTTP.UserAgent = overrides.HTTP.UserAgent
		}
	}

	if overrides.Worker != nil {
		if overrides.Worker.SocketPath != "" {
			c.Worker.SocketPath = overrides.Worker.SocketPath
		}
		if overrides.Worker.MaxRows != 0 {
			c.Worker.MaxRows = overrides.Worker.MaxRows
		}
	}

	if overrides.Logging != nil {
		if overrides.Logging.Level != "" {
			c.Logging.Level = overrides.Logging.Level
		}
		if overrides.Logging.Format != "" {
			c.Logging.Format = overrides.Logging.Format
		}
	}
}

func (c *Config) expandVariables() {
	c.Worker.SocketPath = expandVars(c.Worker.SocketPath)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} from the environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	errs = append(errs, c.Database.validate()...)

	if c.HTTP.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("http.request_timeout must be positive, got %s", c.HTTP.RequestTimeout))
	}

	if c.Worker.SocketPath == "" {
		errs = append(errs, errors.New("worker.socket_path is required"))
	}
	if c.Worker.MaxRows < 0 {
		errs = append(errs, fmt.Errorf("worker.max_rows must not be negative, got %d", c.Worker.MaxRows))
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	formats := []string{"auto", "text", "json"}
	if !slices.Contains(formats, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: %v", formats))
	}

	return errors.Join(errs...)
}

func (d DatabaseConfig) validate() []error {
	switch {
	case d.URL != "" && (d.BaseURL != "" || d.Name != ""):
		return []error{errors.New("database: set either url, or base_url and name, not both")}
	case d.URL != "":
		if err := requireAbsolute("database.url", d.URL); err != nil {
			return []error{err}
		}
	case d.BaseURL != "" && d.Name != "":
		if err := requireAbsolute("database.base_url", d.BaseURL); err != nil {
			return []error{err}
		}
	default:
		return []error{errors.New("database: url, or base_url and name, is required")}
	}
	return nil
}

func requireAbsolute(field, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http or https URL, got %q", field, raw)
	}
	return nil
}

// SlogLevel parses Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}
