// Package poller runs an API call once or on a fixed interval.
//
// A Poller builds a fresh call.Call for every attempt, executes it on a
// transport engine and reports the outcome to an EventHandler. Attempts that
// never reach the server (status 0) are retried with a fixed delay.
//
// # Basic Usage
//
//	p, err := poller.New(poller.Config{Interval: 30 * time.Second},
//	    func() (*call.Call, error) {
//	        return call.New(url, nil, &calls.GetJSON{})
//	    },
//	    engine,
//	    poller.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := p.Start(ctx); err != nil {
//	    return err
//	}
//	defer p.Stop()
//
// # Plugins
//
// Plugins are initialized in registration order when the poller starts and
// shut down in reverse order when it stops. They receive a PluginConfig whose
// Options field lets them replace the per-execution transport options, which
// is how the configwatcher plugin applies a reloaded config file.
//
// # State Machine
//
// Valid state transitions:
//   - Stopped -> Starting
//   - Starting -> Running, Crashed
//   - Running -> Stopping, Crashed
//   - Stopping -> Stopped, Crashed
//   - Crashed -> Starting, Stopping
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package poller
