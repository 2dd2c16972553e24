package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	retry "github.com/avast/retry-go/v4"

	"github.com/bft-labs/apicaller/pkg/call"
	"github.com/bft-labs/apicaller/pkg/log"
	"github.com/bft-labs/apicaller/pkg/status"
	"github.com/bft-labs/apicaller/pkg/transport"
)

// ErrConnectionFailed marks an attempt whose transfer never reached the server.
var ErrConnectionFailed = errors.New("apicaller: connection failed")

// Factory builds the call executed by one attempt.
type Factory func() (*call.Call, error)

// Config controls polling.
type Config struct {
	// Interval separates the start of consecutive polls.
	Interval time.Duration

	// Once runs a single poll and then stops polling.
	Once bool

	// Fresh asks for a new connection on every execution.
	Fresh bool

	// Retries is the number of extra attempts after a connection failure.
	Retries int

	// RetryDelay separates attempts.
	RetryDelay time.Duration

	// ConfigPath is passed on to plugins.
	ConfigPath string
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Interval == 0 {
		c.Interval = 30 * time.Second
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 500 * time.Millisecond
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay must not be negative")
	}
	return nil
}

// Poller executes calls built by a Factory until stopped.
type Poller struct {
	config  Config
	newCall Factory
	engine  transport.Engine
	logger  log.Logger
	handler EventHandler
	plugins []Plugin
	state   *machine

	mu          sync.RWMutex
	execOptions map[string]any
	last        *call.Call
	cancel      context.CancelFunc
	done        chan struct{}
}

// New creates a Poller in StateStopped; call Start to begin polling.
func New(cfg Config, newCall Factory, engine transport.Engine, opts ...Option) (*Poller, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if newCall == nil {
		return nil, errors.New("apicaller: nil call factory")
	}
	if engine == nil {
		return nil, errors.New("apicaller: nil transport engine")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	logger := log.Or(o.logger)
	if o.metrics {
		engine = transport.Instrument(engine, transport.NewMetrics(o.registerer))
	}

	p := &Poller{
		config:      cfg,
		newCall:     newCall,
		engine:      engine,
		logger:      logger,
		handler:     o.eventHandler,
		plugins:     o.plugins,
		execOptions: transport.Merge(nil, o.execOptions),
		done:        make(chan struct{}),
	}
	p.state = &machine{logger: logger, onEvent: p.emitStateChange}
	close(p.done)
	return p, nil
}

// Start initializes plugins and begins polling in the background.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.state.canStart() {
		return ErrAlreadyRunning
	}
	if err := p.state.transition(StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	pluginCfg := PluginConfig{
		ConfigPath: p.config.ConfigPath,
		Logger:     p.logger,
		Options:    p,
	}
	for _, pl := range p.plugins {
		if err := pl.Initialize(runCtx, pluginCfg); err != nil {
			p.logger.Error("plugin initialization failed",
				log.String("plugin", pl.Name()),
				log.Err(err))
			cancel()
			close(p.done)
			_ = p.state.transition(StateCrashed, "plugin init failed: "+pl.Name())
			return err
		}
		p.logger.Info("plugin initialized", log.String("plugin", pl.Name()))
	}

	p.state.wg.Add(1)
	go func(done chan struct{}) {
		defer p.state.wg.Done()
		defer close(done)

		if err := p.state.transition(StateRunning, "polling started"); err != nil {
			p.logger.Error("failed to transition to running", log.Err(err))
			return
		}
		if err := p.run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			p.logger.Error("poller error", log.Err(err))
			_ = p.state.transition(StateCrashed, err.Error())
		}
	}(p.done)

	return nil
}

// Stop cancels polling, waits for the loop to return and shuts plugins down.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.state.canStop() {
		p.mu.Unlock()
		return ErrNotRunning
	}
	if err := p.state.transition(StateStopping, "Stop() called"); err != nil {
		p.mu.Unlock()
		return err
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()

	err := p.state.wait(ShutdownTimeout)

	shutdownCtx := context.Background()
	for i := len(p.plugins) - 1; i >= 0; i-- {
		pl := p.plugins[i]
		if shutdownErr := pl.Shutdown(shutdownCtx); shutdownErr != nil {
			p.logger.Error("plugin shutdown failed",
				log.String("plugin", pl.Name()),
				log.Err(shutdownErr))
		} else {
			p.logger.Info("plugin shutdown complete", log.String("plugin", pl.Name()))
		}
	}

	if err != nil {
		_ = p.state.transition(StateCrashed, "shutdown timeout")
	} else {
		_ = p.state.transition(StateStopped, "graceful shutdown")
	}
	return err
}

// Status returns the current lifecycle state.
func (p *Poller) Status() State {
	return p.state.current()
}

// Done is closed when the polling loop returns: after the single poll in
// Once mode, on cancellation, or on a fatal error.
func (p *Poller) Done() <-chan struct{} {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.done
}

// SetOptions replaces the per-execution transport options used by later polls.
func (p *Poller) SetOptions(opts map[string]any) {
	p.mu.Lock()
	p.execOptions = transport.Merge(nil, opts)
	p.mu.Unlock()
	p.logger.Info("transport options updated", log.Int("options", len(opts)))
}

// Options returns a copy of the current per-execution transport options.
func (p *Poller) Options() map[string]any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return transport.Merge(nil, p.execOptions)
}

// Last returns the call executed by the most recent poll that reached the
// server or exhausted its retries, including one whose body failed to decode.
func (p *Poller) Last() *call.Call {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

func (p *Poller) run(ctx context.Context) error {
	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		if err := p.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var nie *call.NotImplementedError
			if errors.As(err, &nie) {
				return err
			}
		}
		if p.config.Once {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// poll runs one poll: build and execute a call, retrying connection
// failures. Errors other than connection failures are not retried.
func (p *Poller) poll(ctx context.Context) error {
	start := time.Now()
	opts := p.Options()
	attempts := 0
	var executed *call.Call

	err := retry.Do(func() error {
		attempts++
		executed = nil
		c, err := p.newCall()
		if err != nil {
			return retry.Unrecoverable(err)
		}
		if _, err := c.Execute(ctx, opts, p.engine, p.config.Fresh); err != nil {
			var de *call.DecodeError
			if errors.As(err, &de) {
				executed = c
			}
			return retry.Unrecoverable(err)
		}
		executed = c
		if c.StatusCode() == status.ConnectionFailed {
			return fmt.Errorf("%w: %v", ErrConnectionFailed, c.TransportError())
		}
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(uint(p.config.Retries)+1),
		retry.Delay(p.config.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			p.logger.Warn("retrying call",
				log.Int("attempt", int(n)+1),
				log.Err(err))
		}),
	)

	if executed == nil || (err != nil && !errors.Is(err, ErrConnectionFailed)) {
		p.logger.Error("poll failed", log.Int("attempts", attempts), log.Err(err))
		if executed != nil {
			p.mu.Lock()
			p.last = executed
			p.mu.Unlock()
		}
		if p.handler != nil {
			p.handler.OnError(ErrorEvent{Error: err, Attempts: attempts, Call: executed})
		}
		return err
	}

	p.mu.Lock()
	p.last = executed
	p.mu.Unlock()

	p.logger.Info("poll completed",
		log.Endpoint(executed.Endpoint()),
		log.StatusCode(executed.StatusCode()),
		log.Int("attempts", attempts),
		log.Duration("duration", time.Since(start)))
	if p.handler != nil {
		p.handler.OnResult(ResultEvent{Call: executed, Attempts: attempts, Duration: time.Since(start)})
	}
	return nil
}

func (p *Poller) emitStateChange(e StateChangeEvent) {
	if p.handler != nil {
		p.handler.OnStateChange(e)
	}
}

var _ OptionsSetter = (*Poller)(nil)
