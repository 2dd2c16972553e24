package cliconfig

import (
	"os"
	"strings"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "APICALLER_"

// envOptionPrefix prefixes environment variables carrying transport options,
// e.g. APICALLER_OPT_FOLLOWLOCATION=1.
const envOptionPrefix = EnvPrefix + "OPT_"

// ApplyEnvConfig applies configuration from environment variables (APICALLER_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setBoolFromString("assoc", os.Getenv("APICALLER_ASSOC"), &cfg.Associative)
	s.setBoolFromString("raw-query", os.Getenv("APICALLER_RAW_QUERY"), &cfg.RawQuery)
	s.setBoolFromString("fresh", os.Getenv("APICALLER_FRESH"), &cfg.Fresh)
	s.setString("user-agent", os.Getenv("APICALLER_USER_AGENT"), &cfg.UserAgent)
	s.setString("log-level", os.Getenv("APICALLER_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("retries", os.Getenv("APICALLER_RETRIES"), &cfg.Retries); err != nil {
		return err
	}
	if err := s.setDuration("retry-delay", os.Getenv("APICALLER_RETRY_DELAY"), &cfg.RetryDelay); err != nil {
		return err
	}
	if err := s.setDuration("interval", os.Getenv("APICALLER_INTERVAL"), &cfg.Interval); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("APICALLER_TIMEOUT"), &cfg.Timeout); err != nil {
		return err
	}

	mergeOptions(&cfg.Options, EnvOptions())
	return nil
}

// EnvOptions returns the transport options set through APICALLER_OPT_* variables.
func EnvOptions() map[string]any {
	return envOptions(os.Environ())
}

// envOptions collects APICALLER_OPT_<NAME>=value entries as name -> value.
func envOptions(environ []string) map[string]any {
	out := map[string]any{}
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, envOptionPrefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(k, envOptionPrefix))
		if name == "" {
			continue
		}
		out[name] = v
	}
	return out
}
