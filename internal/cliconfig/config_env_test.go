package cliconfig

import (
	"reflect"
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"APICALLER_ASSOC":       "true",
				"APICALLER_RAW_QUERY":   "1",
				"APICALLER_RETRIES":     "4",
				"APICALLER_RETRY_DELAY": "1s",
				"APICALLER_INTERVAL":    "10m",
				"APICALLER_TIMEOUT":     "15s",
				"APICALLER_USER_AGENT":  "env-agent",
				"APICALLER_LOG_LEVEL":   "warn",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Associative: true,
				RawQuery:    true,
				Retries:     4,
				RetryDelay:  time.Second,
				Interval:    10 * time.Minute,
				Timeout:     15 * time.Second,
				UserAgent:   "env-agent",
				LogLevel:    "warn",
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"APICALLER_RETRIES":    "4",
				"APICALLER_USER_AGENT": "env-agent",
			},
			changed: map[string]bool{"retries": true},
			initial: Config{Retries: 2},
			expected: Config{
				Retries:   2,
				UserAgent: "env-agent",
			},
		},
		{
			name: "returns error for invalid duration",
			envVars: map[string]string{
				"APICALLER_INTERVAL": "not-a-duration",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "returns error for invalid int",
			envVars: map[string]string{
				"APICALLER_RETRIES": "many",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "handles bool 'false' as false",
			envVars: map[string]string{
				"APICALLER_FRESH": "false",
			},
			changed:  map[string]bool{},
			initial:  Config{Fresh: true},
			expected: Config{Fresh: false},
		},
		{
			name: "collects transport options",
			envVars: map[string]string{
				"APICALLER_OPT_FOLLOWLOCATION": "1",
				"APICALLER_OPT_TIMEOUT_MS":     "250",
			},
			changed: map[string]bool{},
			initial: Config{Options: map[string]any{"verbose": true}},
			expected: Config{Options: map[string]any{
				"followlocation": "1",
				"timeout_ms":     "250",
				"verbose":        true,
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if tt.wantErr && err == nil {
				t.Error("ApplyEnvConfig() expected error but got nil")
				return
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ApplyEnvConfig() unexpected error: %v", err)
				return
			}
			if tt.wantErr {
				return
			}

			if cfg.Associative != tt.expected.Associative {
				t.Errorf("Associative = %v, want %v", cfg.Associative, tt.expected.Associative)
			}
			if cfg.RawQuery != tt.expected.RawQuery {
				t.Errorf("RawQuery = %v, want %v", cfg.RawQuery, tt.expected.RawQuery)
			}
			if cfg.Fresh != tt.expected.Fresh {
				t.Errorf("Fresh = %v, want %v", cfg.Fresh, tt.expected.Fresh)
			}
			if cfg.Retries != tt.expected.Retries {
				t.Errorf("Retries = %v, want %v", cfg.Retries, tt.expected.Retries)
			}
			if cfg.RetryDelay != tt.expected.RetryDelay {
				t.Errorf("RetryDelay = %v, want %v", cfg.RetryDelay, tt.expected.RetryDelay)
			}
			if cfg.Interval != tt.expected.Interval {
				t.Errorf("Interval = %v, want %v", cfg.Interval, tt.expected.Interval)
			}
			if cfg.Timeout != tt.expected.Timeout {
				t.Errorf("Timeout = %v, want %v", cfg.Timeout, tt.expected.Timeout)
			}
			if cfg.UserAgent != tt.expected.UserAgent {
				t.Errorf("UserAgent = %v, want %v", cfg.UserAgent, tt.expected.UserAgent)
			}
			if cfg.LogLevel != tt.expected.LogLevel {
				t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, tt.expected.LogLevel)
			}
			if len(tt.expected.Options) > 0 && !reflect.DeepEqual(cfg.Options, tt.expected.Options) {
				t.Errorf("Options = %v, want %v", cfg.Options, tt.expected.Options)
			}
		})
	}
}

func TestEnvOptions(t *testing.T) {
	got := envOptions([]string{
		"PATH=/usr/bin",
		"APICALLER_OPT_PROXY=http://proxy:3128",
		"APICALLER_OPT_=ignored",
		"APICALLER_RETRIES=2",
	})
	want := map[string]any{"proxy": "http://proxy:3128"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("envOptions() = %v, want %v", got, want)
	}
}
