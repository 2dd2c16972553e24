package poller

import (
	"time"

	"github.com/bft-labs/apicaller/pkg/call"
)

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// ResultEvent is emitted after a poll that produced an executed call. The
// call may still report status 0 when every retry failed to connect.
type ResultEvent struct {
	Call     *call.Call
	Attempts int
	Duration time.Duration
}

// ErrorEvent is emitted when a poll fails before producing a result.
type ErrorEvent struct {
	Error    error
	Attempts int
	// Call is set when the server answered but the body could not be decoded.
	Call *call.Call
}

// EventHandler receives poller events. Methods are called synchronously from
// the polling goroutine.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
	OnResult(ResultEvent)
	OnError(ErrorEvent)
}

// EventHandlerFuncs adapts optional functions to EventHandler.
type EventHandlerFuncs struct {
	StateChange func(StateChangeEvent)
	Result      func(ResultEvent)
	Error       func(ErrorEvent)
}

func (h EventHandlerFuncs) OnStateChange(e StateChangeEvent) {
	if h.StateChange != nil {
		h.StateChange(e)
	}
}

func (h EventHandlerFuncs) OnResult(e ResultEvent) {
	if h.Result != nil {
		h.Result(e)
	}
}

func (h EventHandlerFuncs) OnError(e ErrorEvent) {
	if h.Error != nil {
		h.Error(e)
	}
}
