package call

import (
	"errors"
	"fmt"
)

var (
	// ErrNotImplemented is wrapped by every *NotImplementedError.
	ErrNotImplemented = errors.New("apicaller: hook not implemented")

	// ErrNoResponse is returned by representations of a call that has not been executed.
	ErrNoResponse = errors.New("apicaller: call has not been executed")
)

// NotImplementedError reports a Kind hook that was invoked without being
// implemented. It is a programming error in the Kind, not a runtime condition.
type NotImplementedError struct {
	// Kind is the name of the concrete call type.
	Kind string
	// Hook is the name of the missing method.
	Hook string
	// Hint shows the expected method.
	Hint string
}

func (e *NotImplementedError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "call kind"
	}
	return fmt.Sprintf("%s must implement method '%s'. Hint:\n\n%s", kind, e.Hook, e.Hint)
}

func (e *NotImplementedError) Unwrap() error {
	return ErrNotImplemented
}

// DecodeError reports a response body the Kind could not decode. The call
// still records the raw response, header and status of the execution.
type DecodeError struct {
	// Kind is the name of the concrete call type.
	Kind string
	// StatusCode is the status of the response that failed to decode.
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response (status %d): %v", e.Kind, e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
