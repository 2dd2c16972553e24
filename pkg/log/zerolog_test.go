package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewZerologAdapterWithLogger(zerolog.New(&buf))

	adapter.Info("call executed",
		Endpoint("http://example.com/api"),
		StatusCode(200),
		Kind("GetJSON"),
		Err(errors.New("boom")),
	)

	out := buf.String()
	for _, want := range []string{
		`"endpoint":"http://example.com/api"`,
		`"status_code":200`,
		`"kind":"GetJSON"`,
		`"error":"boom"`,
		`"message":"call executed"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}
}

func TestConsoleAdapter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewConsoleAdapter(&buf, zerolog.WarnLevel)

	adapter.Debug("hidden")
	adapter.Info("hidden too")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}

	adapter.Warn("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("warn message not written: %q", buf.String())
	}
}

func TestOr(t *testing.T) {
	if _, ok := Or(nil).(NoopLogger); !ok {
		t.Errorf("Or(nil) should return NoopLogger")
	}
	z := NewZerologAdapter()
	if Or(z) != Logger(z) {
		t.Errorf("Or should return the given logger")
	}
}
