package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bft-labs/apicaller/pkg/transport"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Associative *bool          `toml:"associative"`
	RawQuery    *bool          `toml:"raw_query"`
	Fresh       *bool          `toml:"fresh"`
	Retries     *int           `toml:"retries"`
	RetryDelay  string         `toml:"retry_delay"`
	Interval    string         `toml:"interval"`
	Timeout     string         `toml:"timeout"`
	UserAgent   string         `toml:"user_agent"`
	Headers     []string       `toml:"headers"`
	LogLevel    string         `toml:"log_level"`
	Options     map[string]any `toml:"options"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.apicaller/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".apicaller", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map). Options
// from the file are merged over the ones already present.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setBool("assoc", fc.Associative, &cfg.Associative)
	s.setBool("raw-query", fc.RawQuery, &cfg.RawQuery)
	s.setBool("fresh", fc.Fresh, &cfg.Fresh)
	s.setInt("retries", fc.Retries, &cfg.Retries)
	s.setString("user-agent", fc.UserAgent, &cfg.UserAgent)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setStrings("header", fc.Headers, &cfg.Headers)

	if err := s.setDuration("retry-delay", fc.RetryDelay, &cfg.RetryDelay); err != nil {
		return err
	}
	if err := s.setDuration("interval", fc.Interval, &cfg.Interval); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.Timeout, &cfg.Timeout); err != nil {
		return err
	}

	mergeOptions(&cfg.Options, fc.Options)
	return nil
}

// Layered builds the effective Config: flagged (defaults plus flag values)
// overlaid with the file at path, then the environment, then flagOpts.
// Values of flags listed in changed are never overridden. An empty path
// skips the file layer.
func Layered(path string, flagged Config, changed map[string]bool, flagOpts map[string]any) (Config, error) {
	cfg := flagged
	cfg.Headers = append([]string(nil), flagged.Headers...)
	cfg.Options = transport.Merge(nil, flagged.Options)

	if path != "" {
		fc, err := LoadFileConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
			return cfg, err
		}
	}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		return cfg, err
	}
	mergeOptions(&cfg.Options, flagOpts)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
