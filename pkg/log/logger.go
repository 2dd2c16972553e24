package log

import "time"

// Logger provides structured logging capabilities.
// Implementations can wrap zerolog, zap, logrus, or any other logging library.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field with key "error".
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Any creates a field with any value.
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Endpoint creates the "endpoint" field carried by every call log line.
func Endpoint(url string) Field {
	return Field{Key: "endpoint", Value: url}
}

// Kind creates the "kind" field naming the concrete call type.
func Kind(name string) Field {
	return Field{Key: "kind", Value: name}
}

// StatusCode creates the "status_code" field.
func StatusCode(code int) Field {
	return Field{Key: "status_code", Value: code}
}

// Or returns logger, or a NoopLogger when logger is nil.
func Or(logger Logger) Logger {
	if logger == nil {
		return NoopLogger{}
	}
	return logger
}
