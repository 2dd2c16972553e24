package call

import (
	"context"

	"github.com/bft-labs/apicaller/pkg/log"
	"github.com/bft-labs/apicaller/pkg/transport"
)

// Exchange carries the state of one execution between the Call and its
// Transferer. Nothing written to it is visible on the Call until every hook
// of the execution has succeeded.
type Exchange struct {
	endpoint string
	encoded  []byte
	fresh    bool
	logger   log.Logger

	body         []byte
	header       []byte
	hasHeader    bool
	transportErr error
}

// Endpoint returns the call's target URL.
func (x *Exchange) Endpoint() string { return x.endpoint }

// EncodedRequest returns the request as encoded for the current raw-query mode.
func (x *Exchange) EncodedRequest() []byte { return x.encoded }

// FreshConnection reports whether the transfer should use a new connection
// instead of reusing one.
func (x *Exchange) FreshConnection() bool { return x.fresh }

// SetResponse stores the raw body and, when header is non-nil, the raw header section.
func (x *Exchange) SetResponse(body, header []byte) {
	x.body = body
	x.header = header
	x.hasHeader = header != nil
}

// SetTransportError records that the transfer never reached the server.
func (x *Exchange) SetTransportError(err error) {
	x.transportErr = err
}

// TransportError returns the recorded transport failure, if any.
func (x *Exchange) TransportError() error { return x.transportErr }

// Exec runs the transfer on engine and stores its result, split into header
// section and body with SplitRaw. A transport failure is recorded, not
// returned; the call then reports status 0.
func (x *Exchange) Exec(ctx context.Context, engine transport.Engine) {
	raw, err := engine.Execute(ctx)
	if err != nil {
		x.logger.Warn("transfer failed", log.Endpoint(x.endpoint), log.Err(err))
		x.SetTransportError(err)
		x.SetResponse(nil, nil)
		return
	}
	if header, body, ok := SplitRaw(raw); ok {
		x.SetResponse(body, header)
		return
	}
	x.SetResponse(raw, nil)
}
