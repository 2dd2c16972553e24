// Package transporttest provides a scripted transport.Engine for tests.
package transporttest

import (
	"context"

	"github.com/bft-labs/apicaller/pkg/transport"
)

// Engine is a transport.Engine that replays a canned response and records
// every option it was given.
type Engine struct {
	// Raw is returned by Execute.
	Raw []byte
	// Err is returned by Execute; when set the status code reads as 0.
	Err error
	// Status is reported for transport.InfoStatusCode after Execute.
	Status int

	Options   transport.Options
	Executed  int
	OnExecute func(opts transport.Options)

	ran bool
}

// New returns an Engine replying raw with status code.
func New(raw string, status int) *Engine {
	return &Engine{Raw: []byte(raw), Status: status}
}

// Failing returns an Engine whose transfer fails with err.
func Failing(err error) *Engine {
	return &Engine{Err: err}
}

func (e *Engine) SetOption(opt transport.Option, value any) error {
	if e.Options == nil {
		e.Options = make(transport.Options)
	}
	e.Options[opt] = value
	return nil
}

func (e *Engine) SetOptions(opts transport.Options) error {
	for opt, v := range opts {
		if err := e.SetOption(opt, v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) Execute(ctx context.Context) ([]byte, error) {
	e.Executed++
	e.ran = true
	if e.OnExecute != nil {
		e.OnExecute(e.Options)
	}
	if e.Err != nil {
		return nil, e.Err
	}
	return e.Raw, nil
}

func (e *Engine) Info(key transport.InfoKey) int64 {
	if !e.ran || e.Err != nil {
		return 0
	}
	switch key {
	case transport.InfoStatusCode:
		return int64(e.Status)
	case transport.InfoSizeDownload:
		return int64(len(e.Raw))
	default:
		return 0
	}
}

var _ transport.Engine = (*Engine)(nil)
