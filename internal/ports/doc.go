// Package ports defines the interfaces that connect the apicaller core to
// infrastructure adapters.
//
// # Port Interfaces
//
//   - [HTTPClient]: HTTP request abstraction used by the net/http engine
//
// Adapters under internal/adapters depend on these interfaces so tests can
// substitute their own implementations.
package ports
