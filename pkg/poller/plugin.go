package poller

import (
	"context"

	"github.com/bft-labs/apicaller/pkg/log"
)

// Plugin extends a Poller with background behavior bound to its lifecycle.
type Plugin interface {
	// Name identifies the plugin in logs.
	Name() string

	// Initialize is called by Start. ctx is cancelled when the poller stops.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown is called by Stop, in reverse registration order.
	Shutdown(ctx context.Context) error
}

// OptionsSetter replaces the per-execution transport options of a Poller.
type OptionsSetter interface {
	SetOptions(options map[string]any)
}

// PluginConfig is handed to plugins on initialization.
type PluginConfig struct {
	// ConfigPath is the configuration file the poller was set up from, if any.
	ConfigPath string

	Logger  log.Logger
	Options OptionsSetter
}
