package call

import (
	"github.com/bft-labs/apicaller/pkg/log"
	"github.com/bft-labs/apicaller/pkg/transport"
)

// Option configures a Call at construction.
type Option func(*options)

type options struct {
	associative      bool
	transportOptions map[string]any
	registry         *transport.Registry
	logger           log.Logger
	name             string
}

// WithAssociative selects associative output: decoded responses become maps
// and slices, and headers are parsed into a header.Header instead of being
// kept as the raw blob.
func WithAssociative(enabled bool) Option {
	return func(o *options) {
		o.associative = enabled
	}
}

// WithTransportOptions sets per-call transport options. They are merged with
// the options given to Execute and win on collision.
func WithTransportOptions(opts map[string]any) Option {
	return func(o *options) {
		o.transportOptions = transport.Merge(nil, opts)
	}
}

// WithRegistry sets the registry used to translate transport options.
// Defaults to transport.DefaultRegistry().
func WithRegistry(r *transport.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithName overrides the call name, which defaults to the Kind's type name.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}
