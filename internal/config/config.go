// Package config handles loading, parsing, and validating application configuration.
// It defines the configuration structure, provides defaults, loads YAML files and
// applies overrides from the environment (optionally seeded from a .env file).
// file: internal/config/config.go
package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/clevermcp/internal/logging"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default endpoint URLs of the remote services.
const (
	DefaultZonesURL        = "https://api.clever-cloud.com/v4/products/zones"
	DefaultDocsURL         = "https://www.clever-cloud.com/developers/llms.txt"
	DefaultMarkdownBaseURL = "https://site2md.com/"
)

// Supported transports.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// DefaultServerVersion is reported as serverInfo.version unless the build or
// the configuration names another one.
const DefaultServerVersion = "0.1.8"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CLEVERMCP_"

// ServerConfig contains settings of the MCP server itself.
type ServerConfig struct {
	// Name is reported as serverInfo.name during initialize.
	Name string `yaml:"name"`
	// Version is reported as serverInfo.version during initialize.
	Version string `yaml:"version"`
	// Transport selects "stdio" or "http".
	Transport string `yaml:"transport"`
	// Address is the listen address of the HTTP transport. Ignored for stdio.
	Address string `yaml:"address"`
	// Instructions is optional text returned to clients in the initialize result.
	Instructions string `yaml:"instructions,omitempty"`
	// RequestTimeout bounds each request on the HTTP transport. Zero means no timeout.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// RemoteConfig contains settings for outbound HTTP calls.
type RemoteConfig struct {
	ZonesURL        string `yaml:"zones_url"`
	DocsURL         string `yaml:"docs_url"`
	MarkdownBaseURL string `yaml:"markdown_base_url"`
	// Timeout bounds each outbound request. Zero means no client-side timeout.
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// LoggingConfig controls the stderr logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls Prometheus collection.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Remote  RemoteConfig  `yaml:"remote"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// DefaultConfig returns a configuration populated with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:      "mcp-clever-demo",
			Version:   DefaultServerVersion,
			Transport: TransportStdio,
			Address:   "127.0.0.1:8080",
		},
		Remote: RemoteConfig{
			ZonesURL:        DefaultZonesURL,
			DocsURL:         DefaultDocsURL,
			MarkdownBaseURL: DefaultMarkdownBaseURL,
			UserAgent:       "clevermcp",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatJSON,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "clevermcp",
		},
	}
}

// Load returns the effective configuration: defaults, then the YAML file at path
// (if path is not empty), then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if path == "" {
		cfg = DefaultConfig()
		applyEnvironmentOverrides(cfg, logging.GetLogger("config"))
	} else {
		cfg, err = LoadFromFile(path)
		if err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from the YAML file at path, merged over the
// defaults, then applies environment overrides. Supports '~' expansion.
func LoadFromFile(path string) (*Config, error) {
	expanded, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- path comes from a command-line flag.
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", expanded)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file YAML: %s", expanded)
	}

	applyEnvironmentOverrides(cfg, logging.GetLogger("config"))
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env") into the
// process environment. Variables already set are left alone and missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errors.Wrapf(err, "failed to stat env file: %s", p)
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrapf(err, "failed to load env file: %s", p)
		}
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Name) == "" {
		return errors.New("config: server.name must not be empty")
	}
	switch c.Server.Transport {
	case TransportStdio:
	case TransportHTTP:
		if c.Server.Address == "" {
			return errors.New("config: server.address is required for the http transport")
		}
	default:
		return errors.Newf("config: unsupported transport %q (want %q or %q)", c.Server.Transport, TransportStdio, TransportHTTP)
	}
	for field, raw := range map[string]string{
		"remote.zones_url":         c.Remote.ZonesURL,
		"remote.docs_url":          c.Remote.DocsURL,
		"remote.markdown_base_url": c.Remote.MarkdownBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.Newf("config: %s must be an absolute URL, got %q", field, raw)
		}
	}
	if c.Remote.Timeout < 0 {
		return errors.Newf("config: remote.timeout must not be negative, got %s", c.Remote.Timeout)
	}
	if c.Server.RequestTimeout < 0 {
		return errors.Newf("config: server.request_timeout must not be negative, got %s", c.Server.RequestTimeout)
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory to expand path")
	}
	return filepath.Join(homeDir, path[1:]), nil
}

// applyEnvironmentOverrides applies CLEVERMCP_* variables over the current values.
func applyEnvironmentOverrides(cfg *Config, logger logging.Logger) {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok && v != "" {
			logger.Debug("Overriding config value from environment.", "envVar", EnvPrefix+name)
			*dst = v
		}
	}

	str("SERVER_NAME", &cfg.Server.Name)
	str("SERVER_VERSION", &cfg.Server.Version)
	str("TRANSPORT", &cfg.Server.Transport)
	str("HTTP_ADDR", &cfg.Server.Address)
	str("ZONES_URL", &cfg.Remote.ZonesURL)
	str("DOCS_URL", &cfg.Remote.DocsURL)
	str("MARKDOWN_BASE_URL", &cfg.Remote.MarkdownBaseURL)
	str("USER_AGENT", &cfg.Remote.UserAgent)
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FORMAT", &cfg.Logging.Format)

	duration := func(name string, dst *time.Duration) {
		v := os.Getenv(EnvPrefix + name)
		if v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			logger.Warn("Invalid duration in environment ignored.", "envVar", EnvPrefix+name, "value", v, "error", err)
			return
		}
		*dst = d
	}
	duration("HTTP_TIMEOUT", &cfg.Remote.Timeout)
	duration("REQUEST_TIMEOUT", &cfg.Server.RequestTimeout)
	if v := os.Getenv(EnvPrefix + "METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		} else {
			logger.Warn("Invalid boolean in environment ignored.", "envVar", EnvPrefix+"METRICS_ENABLED", "value", v, "error", err)
		}
	}
}
