package apicaller

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/apicaller/pkg/call"
	"github.com/bft-labs/apicaller/pkg/calls"
)

func TestIsVersionCompatible(t *testing.T) {
	tests := []struct {
		version, min string
		want         bool
	}{
		{"1.0.0", "1.0.0", true},
		{"1.2.0", "1.1.9", true},
		{"1.0.1", "1.0.2", false},
		{"2.0.0", "1.9.9", true},
		{"0.9.0", "1.0.0", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isVersionCompatible(tt.version, tt.min), "%s >= %s", tt.version, tt.min)
	}
	assert.NoError(t, validateModuleVersions())
}

func TestDo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	c, err := Do(context.Background(), srv.URL, map[string]any{"name": "widget"}, &calls.PostJSON{},
		map[string]any{"timeout": 5}, call.WithAssociative(true))
	require.NoError(t, err)
	assert.Equal(t, 200, c.StatusCode())
	assert.Equal(t, map[string]any{"name": "widget"}, c.Response())

	h, ok := c.ResponseHeader().(Header)
	require.True(t, ok)
	ct, ok := h.Get("Content-Type")
	require.True(t, ok)
	assert.Equal(t, "application/json", ct.String())
}

func TestDo_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := Do(context.Background(), url, nil, calls.GetHTML{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.StatusCode())
	assert.Error(t, c.TransportError())
	assert.Equal(t, "", c.Response())
}

func TestDo_UnknownOption(t *testing.T) {
	_, err := Do(context.Background(), "http://127.0.0.1:1", nil, calls.GetHTML{}, map[string]any{"OPT_TIMEOUT": 1})
	assert.Error(t, err)
}

func TestDo_UndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer srv.Close()

	c, err := Do(context.Background(), srv.URL, nil, &calls.GetJSON{}, nil)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	require.NotNil(t, c)
	assert.Equal(t, 502, c.StatusCode())
	assert.Equal(t, "502 Bad Gateway", c.Status())
	assert.Equal(t, "<html>bad gateway</html>", string(c.RawResponse()))
}
