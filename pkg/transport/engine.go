package transport

import "context"

// Engine performs network transfers on behalf of a call.
// Implementations are not required to be safe for concurrent use; callers
// that execute calls concurrently use one engine per goroutine.
type Engine interface {
	// SetOption configures a single option before the transfer.
	SetOption(opt Option, value any) error

	// SetOptions configures a batch of options before the transfer.
	SetOptions(opts Options) error

	// Execute performs the transfer and returns the raw response: the status
	// line, headers, a blank line and the body when OptHeader is enabled,
	// the body alone otherwise.
	// A non-nil error means the server was never reached; Info(InfoStatusCode)
	// then reports 0.
	Execute(ctx context.Context) ([]byte, error)

	// Info returns numeric information about the last transfer.
	Info(key InfoKey) int64
}

// InfoKey identifies a piece of information reported by Engine.Info.
type InfoKey int

const (
	// InfoStatusCode is the numeric status code of the last response, 0 if none.
	InfoStatusCode InfoKey = iota + 1
	// InfoHeaderSize is the size in bytes of the received header section.
	InfoHeaderSize
	// InfoSizeDownload is the size in bytes of the received body.
	InfoSizeDownload
	// InfoTotalTimeMillis is the duration of the last transfer in milliseconds.
	InfoTotalTimeMillis
)
