package call

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitRaw(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantHeader string
		wantBody   string
		wantOK     bool
	}{
		{
			name:       "status line with headers",
			raw:        "HTTP/1.1 200 OK\r\nX: y\r\n\r\nbody-content",
			wantHeader: "HTTP/1.1 200 OK\r\nX: y",
			wantBody:   "body-content",
			wantOK:     true,
		},
		{
			name:     "no status line",
			raw:      `{"a":1}`,
			wantBody: `{"a":1}`,
		},
		{
			name:     "status line not at start",
			raw:      "prefix HTTP/1.1 200 OK\r\n\r\nbody",
			wantBody: "prefix HTTP/1.1 200 OK\r\n\r\nbody",
		},
		{
			name:       "body keeps later blank lines",
			raw:        "HTTP/1.1 200 OK\r\n\r\npart1\r\n\r\npart2",
			wantHeader: "HTTP/1.1 200 OK",
			wantBody:   "part1\r\n\r\npart2",
			wantOK:     true,
		},
		{
			name:       "headers only",
			raw:        "HTTP/1.1 204 No Content\r\nX: y",
			wantHeader: "HTTP/1.1 204 No Content\r\nX: y",
			wantOK:     true,
		},
		{
			name:       "interim response skipped",
			raw:        "HTTP/1.1 100 Continue\r\n\r\nHTTP/1.1 201 Created\r\nLocation: /x\r\n\r\ndone",
			wantHeader: "HTTP/1.1 201 Created\r\nLocation: /x",
			wantBody:   "done",
			wantOK:     true,
		},
		{
			name:       "HTTP/2 style version is not a match",
			raw:        "HTTP/2 200\r\n\r\nbody",
			wantBody:   "HTTP/2 200\r\n\r\nbody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, body, ok := SplitRaw([]byte(tt.raw))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantHeader, string(header))
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}
