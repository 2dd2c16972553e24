package poller_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/apicaller/pkg/call"
	"github.com/bft-labs/apicaller/pkg/calls"
	"github.com/bft-labs/apicaller/pkg/poller"
	"github.com/bft-labs/apicaller/pkg/transport"
	"github.com/bft-labs/apicaller/pkg/transport/transporttest"
)

func getFactory(t *testing.T) poller.Factory {
	t.Helper()
	return func() (*call.Call, error) {
		return call.New("http://api.test/ping", nil, &calls.GetJSON{}, call.WithAssociative(true))
	}
}

type recorder struct {
	mu      sync.Mutex
	states  []poller.State
	results []poller.ResultEvent
	errs    []poller.ErrorEvent
}

func (r *recorder) handler() poller.EventHandler {
	return poller.EventHandlerFuncs{
		StateChange: func(e poller.StateChangeEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.states = append(r.states, e.Current)
		},
		Result: func(e poller.ResultEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.results = append(r.results, e)
		},
		Error: func(e poller.ErrorEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.errs = append(r.errs, e)
		},
	}
}

func waitDone(t *testing.T, p *poller.Poller) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not finish")
	}
}

func TestPoller_Once(t *testing.T) {
	engine := transporttest.New(`{"ok":true}`, 200)
	rec := &recorder{}

	p, err := poller.New(poller.Config{Once: true}, getFactory(t), engine,
		poller.WithEventHandler(rec.handler()),
		poller.WithOptions(map[string]any{"timeout": 3}))
	require.NoError(t, err)
	assert.Equal(t, poller.StateStopped, p.Status())

	require.NoError(t, p.Start(context.Background()))
	waitDone(t, p)
	require.NoError(t, p.Stop())

	assert.Equal(t, 1, engine.Executed)
	assert.Equal(t, 3, engine.Options[transport.OptTimeout])
	require.Len(t, rec.results, 1)
	assert.Equal(t, 1, rec.results[0].Attempts)
	assert.Equal(t, map[string]any{"ok": true}, rec.results[0].Call.Response())
	assert.Same(t, rec.results[0].Call, p.Last())
	assert.Equal(t, []poller.State{
		poller.StateStarting, poller.StateRunning, poller.StateStopping, poller.StateStopped,
	}, rec.states)
	assert.Equal(t, poller.StateStopped, p.Status())
}

func TestPoller_RetriesConnectionFailures(t *testing.T) {
	engine := transporttest.Failing(errors.New("connection refused"))
	attempts := 0
	engine.OnExecute = func(transport.Options) {
		attempts++
		if attempts == 3 {
			engine.Err = nil
			engine.Raw = []byte(`{}`)
			engine.Status = 200
		}
	}
	rec := &recorder{}

	p, err := poller.New(poller.Config{Once: true, Retries: 4, RetryDelay: time.Millisecond},
		getFactory(t), engine, poller.WithEventHandler(rec.handler()))
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))
	waitDone(t, p)
	require.NoError(t, p.Stop())

	require.Len(t, rec.results, 1)
	assert.Equal(t, 3, rec.results[0].Attempts)
	assert.Equal(t, 200, rec.results[0].Call.StatusCode())
}

func TestPoller_RetriesExhausted(t *testing.T) {
	engine := transporttest.Failing(errors.New("connection refused"))
	rec := &recorder{}

	p, err := poller.New(poller.Config{Once: true, Retries: 2, RetryDelay: time.Millisecond},
		getFactory(t), engine, poller.WithEventHandler(rec.handler()))
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))
	waitDone(t, p)
	require.NoError(t, p.Stop())

	assert.Equal(t, 3, engine.Executed)
	require.Len(t, rec.results, 1)
	assert.Equal(t, 0, rec.results[0].Call.StatusCode())
	assert.Equal(t, "0 Connection failed", rec.results[0].Call.Status())
}

func TestPoller_HookErrorIsNotRetried(t *testing.T) {
	engine := transporttest.New("{}", 200)
	rec := &recorder{}

	p, err := poller.New(poller.Config{Once: true, Retries: 3, RetryDelay: time.Millisecond},
		getFactory(t), engine,
		poller.WithEventHandler(rec.handler()),
		poller.WithOptions(map[string]any{"no_such_option": 1}))
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))
	waitDone(t, p)
	require.NoError(t, p.Stop())

	assert.Equal(t, 0, engine.Executed)
	require.Len(t, rec.errs, 1)
	assert.Equal(t, 1, rec.errs[0].Attempts)
	assert.ErrorIs(t, rec.errs[0].Error, transport.ErrUnknownOption)
	assert.Nil(t, p.Last())
}

func TestPoller_UndecodableBodyKeepsCall(t *testing.T) {
	engine := transporttest.New("HTTP/1.1 502 Bad Gateway\r\n\r\n<html>bad gateway</html>", 502)
	rec := &recorder{}

	p, err := poller.New(poller.Config{Once: true, Retries: 3, RetryDelay: time.Millisecond},
		getFactory(t), engine, poller.WithEventHandler(rec.handler()))
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))
	waitDone(t, p)
	require.NoError(t, p.Stop())

	assert.Equal(t, 1, engine.Executed)
	assert.Empty(t, rec.results)
	require.Len(t, rec.errs, 1)
	var de *call.DecodeError
	assert.ErrorAs(t, rec.errs[0].Error, &de)
	require.NotNil(t, rec.errs[0].Call)
	assert.Equal(t, "502 Bad Gateway", rec.errs[0].Call.Status())
	assert.Same(t, rec.errs[0].Call, p.Last())
}

func TestPoller_IntervalUntilStopped(t *testing.T) {
	engine := transporttest.New("{}", 200)
	p, err := poller.New(poller.Config{Interval: 5 * time.Millisecond}, getFactory(t), engine)
	require.NoError(t, err)

	require.NoError(t, p.Start(context.Background()))
	assert.ErrorIs(t, p.Start(context.Background()), poller.ErrAlreadyRunning)

	require.Eventually(t, func() bool { return p.Last() != nil }, time.Second, 5*time.Millisecond)
	require.NoError(t, p.Stop())
	assert.Equal(t, poller.StateStopped, p.Status())
	assert.ErrorIs(t, p.Stop(), poller.ErrNotRunning)
}

type optionsPlugin struct {
	initialized bool
	shutdown    bool
	cfg         poller.PluginConfig
	err         error
}

func (o *optionsPlugin) Name() string { return "options" }

func (o *optionsPlugin) Initialize(ctx context.Context, cfg poller.PluginConfig) error {
	o.initialized = true
	o.cfg = cfg
	return o.err
}

func (o *optionsPlugin) Shutdown(ctx context.Context) error {
	o.shutdown = true
	return nil
}

func TestPoller_Plugins(t *testing.T) {
	engine := transporttest.New("{}", 200)
	plugin := &optionsPlugin{}

	p, err := poller.New(poller.Config{Interval: time.Hour, ConfigPath: "/etc/apicaller.toml"},
		getFactory(t), engine, poller.WithPlugin(plugin))
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))

	assert.True(t, plugin.initialized)
	assert.Equal(t, "/etc/apicaller.toml", plugin.cfg.ConfigPath)

	plugin.cfg.Options.SetOptions(map[string]any{"followlocation": true})
	assert.Equal(t, map[string]any{"followlocation": true}, p.Options())

	require.NoError(t, p.Stop())
	assert.True(t, plugin.shutdown)
}

func TestPoller_PluginInitFailure(t *testing.T) {
	plugin := &optionsPlugin{err: errors.New("nope")}
	p, err := poller.New(poller.Config{}, getFactory(t), transporttest.New("{}", 200), poller.WithPlugin(plugin))
	require.NoError(t, err)

	assert.Error(t, p.Start(context.Background()))
	assert.Equal(t, poller.StateCrashed, p.Status())
	require.NoError(t, p.Stop())
	assert.Equal(t, poller.StateStopped, p.Status())
}

func TestPoller_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := poller.New(poller.Config{Once: true}, getFactory(t), transporttest.New("{}", 200),
		poller.WithMetrics(reg))
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))
	waitDone(t, p)
	require.NoError(t, p.Stop())

	n, err := testutil.GatherAndCount(reg, "apicaller_transfers_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := poller.New(poller.Config{Retries: -1}, getFactory(t), transporttest.New("", 200))
	assert.Error(t, err)

	_, err = poller.New(poller.Config{}, nil, transporttest.New("", 200))
	assert.Error(t, err)

	_, err = poller.New(poller.Config{}, getFactory(t), nil)
	assert.Error(t, err)
}
