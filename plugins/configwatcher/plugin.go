// Package configwatcher reloads a poller's transport options when its
// configuration file changes on disk.
package configwatcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/apicaller/pkg/log"
	"github.com/bft-labs/apicaller/pkg/poller"
)

// ErrNoLoader is returned by Initialize when the plugin has no Loader.
var ErrNoLoader = errors.New("configwatcher: no loader configured")

// Loader reads the file at path and returns the transport options it describes.
type Loader func(path string) (map[string]any, error)

// Plugin watches the poller's configuration file and pushes the options
// produced by its Loader to the poller after every change.
type Plugin struct {
	mu sync.Mutex

	loader        Loader
	retryInterval time.Duration
	debounceDelay time.Duration

	path     string
	logger   log.Logger
	target   poller.OptionsSetter
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
	reloads  int
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Loader turns the config file into transport options. Required.
	Loader Loader

	// RetryInterval is the delay before reading the file again after a
	// failed load.
	// Default: 5 seconds
	RetryInterval time.Duration

	// DebounceDelay is the delay to wait after a file change before loading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults and no Loader.
func DefaultConfig() Config {
	return Config{
		RetryInterval: 5 * time.Second,
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 5 * time.Second
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		loader:        cfg.Loader,
		retryInterval: cfg.RetryInterval,
		debounceDelay: cfg.DebounceDelay,
		logger:        log.NoopLogger{},
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts watching cfg.ConfigPath. Without a path the plugin stays idle.
func (p *Plugin) Initialize(ctx context.Context, cfg poller.PluginConfig) error {
	p.mu.Lock()
	p.path = cfg.ConfigPath
	p.logger = log.Or(cfg.Logger)
	p.target = cfg.Options
	p.mu.Unlock()

	if p.path == "" || p.target == nil {
		p.logger.Warn("config watcher disabled: no config file")
		return nil
	}
	if p.loader == nil {
		return ErrNoLoader
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("configwatcher: create watcher: %w", err)
	}
	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("configwatcher: watch %s: %w", filepath.Dir(p.path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher plugin initialized", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)
	return nil
}

// Shutdown stops the watcher and any pending reload.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

// Reloads returns how many times options were pushed to the poller.
func (p *Plugin) Reloads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reloads
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.schedule(ctx, p.debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher: watcher error", log.Err(err))
		}
	}
}

// schedule (re)arms the reload timer, dropping any reload still pending.
func (p *Plugin) schedule(ctx context.Context, delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(delay, func() {
		p.reload(ctx)
	})
}

func (p *Plugin) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	opts, err := p.loader(p.path)
	if err != nil {
		p.logger.Error("config watcher: reload failed",
			log.String("path", p.path),
			log.Duration("retry_in", p.retryInterval),
			log.Err(err))
		p.schedule(ctx, p.retryInterval)
		return
	}

	p.target.SetOptions(opts)

	p.mu.Lock()
	p.reloads++
	p.mu.Unlock()
	p.logger.Info("config watcher: options reloaded", log.String("path", p.path))
}

// Ensure Plugin implements poller.Plugin.
var _ poller.Plugin = (*Plugin)(nil)
