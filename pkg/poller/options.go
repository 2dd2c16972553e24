package poller

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/apicaller/pkg/log"
)

// Option configures optional behavior of a Poller.
type Option func(*options)

type options struct {
	logger       log.Logger
	eventHandler EventHandler
	plugins      []Plugin
	registerer   prometheus.Registerer
	metrics      bool
	execOptions  map[string]any
}

// WithLogger sets the logger. Without it nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for poller events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the poller starts.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithMetrics instruments the engine and registers its collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.metrics = true
		o.registerer = reg
	}
}

// WithOptions sets the initial per-execution transport options.
func WithOptions(opts map[string]any) Option {
	return func(o *options) {
		o.execOptions = opts
	}
}
