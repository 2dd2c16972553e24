package configwatcher

import "github.com/bft-labs/apicaller/pkg/poller"

// WithConfigWatcher returns a poller Option that enables config file watching.
// When enabled, the plugin reloads the transport options from the poller's
// config file whenever it changes.
//
// Usage:
//
//	p, err := poller.New(cfg, factory, engine,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Loader:        cliconfig.LoadTransportOptions,
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) poller.Option {
	return poller.WithPlugin(New(cfg))
}

// WithLoader returns a poller Option that enables config watching with
// default settings and the given loader.
func WithLoader(loader Loader) poller.Option {
	cfg := DefaultConfig()
	cfg.Loader = loader
	return WithConfigWatcher(cfg)
}
