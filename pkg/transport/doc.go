// Package transport defines the boundary between API calls and the engine
// that performs the network transfer.
//
// An Engine is configured with engine-native Options, executes one transfer
// and reports numeric information (most importantly the status code)
// afterwards. The package also owns the option-naming convention: a Registry
// translates a generic, case-insensitive configuration dictionary such as
//
//	map[string]any{"timeout": 30, "useragent": "my-app/1.0"}
//
// into engine identifiers (OptTimeout, OptUserAgent), failing fast on any
// key it does not know.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package transport
