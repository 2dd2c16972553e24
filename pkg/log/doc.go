// Package log provides the logging abstraction used by apicaller components.
//
// Calls, transport engines and plugins log through the Logger interface so
// that host applications decide where messages go. A zerolog adapter and a
// no-op logger are provided.
//
// # Usage
//
// Wrap an existing zerolog logger:
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//
// Or discard everything, which is the default for a Call:
//
//	logger := log.NewNoopLogger()
//
// # Custom Loggers
//
// Implement Logger to route call diagnostics into your own infrastructure:
//
//	type MyLogger struct { ... }
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.0.0
package log
