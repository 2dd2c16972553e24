package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/apicaller/pkg/transport"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "apicaller/1.0"

// Config holds CLI configuration for apicaller.
type Config struct {
	Associative bool
	RawQuery    bool
	Fresh       bool

	Retries    int
	RetryDelay time.Duration
	Interval   time.Duration
	Timeout    time.Duration

	UserAgent string
	Headers   []string
	LogLevel  string

	// Options are default transport options, keyed by engine option name
	// without prefix. Per-invocation options are merged over them.
	Options map[string]any
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		RetryDelay: 500 * time.Millisecond,
		Interval:   30 * time.Second,
		Timeout:    30 * time.Second,
		UserAgent:  DefaultUserAgent,
		LogLevel:   "info",
		Options:    map[string]any{},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay must not be negative")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := transport.DefaultRegistry().Translate(c.Options); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level: %w", err)
	}
	return lvl, nil
}

// TransportOptions returns the default transport options described by c.
// Explicit entries in Options win over Timeout, UserAgent and Headers.
func (c *Config) TransportOptions() map[string]any {
	derived := map[string]any{}
	if c.Timeout > 0 {
		derived["timeout_ms"] = c.Timeout.Milliseconds()
	}
	if c.UserAgent != "" {
		derived["useragent"] = c.UserAgent
	}
	if len(c.Headers) > 0 {
		derived["httpheader"] = append([]string(nil), c.Headers...)
	}
	return transport.Merge(derived, c.Options)
}

// ParseAssignments parses "key=value" pairs as given to --data and --opt.
// Repeated keys collect their values in order.
func ParseAssignments(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid assignment %q: want key=value", p)
		}
		switch prev := out[k].(type) {
		case nil:
			out[k] = v
		case string:
			out[k] = []string{prev, v}
		case []string:
			out[k] = append(prev, v)
		}
	}
	return out, nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if not negative and flag not changed.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || *value < 0 || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setStrings replaces a list if the value is non-empty and the flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]string(nil), value...)
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i < 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

// mergeOptions merges src over the option map in dst.
func mergeOptions(dst *map[string]any, src map[string]any) {
	if len(src) == 0 {
		return
	}
	*dst = transport.Merge(*dst, src)
}
