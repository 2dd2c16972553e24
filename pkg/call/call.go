package call

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bft-labs/apicaller/pkg/dump"
	"github.com/bft-labs/apicaller/pkg/header"
	"github.com/bft-labs/apicaller/pkg/log"
	"github.com/bft-labs/apicaller/pkg/status"
	"github.com/bft-labs/apicaller/pkg/transport"
)

// returnTransferKey is forced on every execution so engines hand the response
// back instead of writing it elsewhere.
const returnTransferKey = "returntransfer"

// Call is one API invocation. It is not safe for concurrent use.
type Call struct {
	kind             Kind
	name             string
	endpoint         string
	request          any
	encoded          []byte
	rawQuery         bool
	associative      bool
	transportOptions map[string]any
	registry         *transport.Registry
	logger           log.Logger

	executed       bool
	rawResponse    []byte
	rawHeader      []byte
	response       any
	responseHeader any
	statusCode     int
	transportErr   error
}

// New creates a Call for endpoint and encodes request through kind.
// It fails when the encoding hook fails, including when it is not implemented.
func New(endpoint string, request any, kind Kind, opts ...Option) (*Call, error) {
	if kind == nil {
		return nil, errors.New("apicaller: nil call kind")
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = transport.DefaultRegistry()
	}
	if o.name == "" {
		o.name = strings.TrimPrefix(fmt.Sprintf("%T", kind), "*")
	}

	c := &Call{
		kind:             kind,
		name:             o.name,
		endpoint:         endpoint,
		request:          request,
		associative:      o.associative,
		transportOptions: o.transportOptions,
		registry:         o.registry,
		logger:           log.Or(o.logger),
	}
	if err := c.encode(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Call) encode() error {
	encoded, err := c.kind.EncodeRequest(c.request, c.rawQuery)
	if err != nil {
		return c.hookError(err)
	}
	c.encoded = encoded
	return nil
}

// SetRawQueryMode switches raw-query encoding on or off and re-derives the
// encoded request. If encoding fails the previous mode and encoding are kept.
func (c *Call) SetRawQueryMode(enabled bool) error {
	prev := c.rawQuery
	c.rawQuery = enabled
	if err := c.encode(); err != nil {
		c.rawQuery = prev
		return err
	}
	return nil
}

// Execute runs the call on engine and returns the decoded response.
//
// options are merged with the call's transport options, which win on
// collision, return-transfer is forced on, and the result is translated through the registry before any
// I/O. fresh asks the Kind for a new connection. Configuration errors and
// missing hooks abort the execution and leave any previous response state
// untouched. A body the Kind cannot decode returns a *DecodeError after the
// raw response, header and status have been recorded, with a nil response.
// A transport failure is not an error and is reported as status 0.
func (c *Call) Execute(ctx context.Context, options map[string]any, engine transport.Engine, fresh bool) (any, error) {
	merged := transport.Merge(options, c.transportOptions)
	merged = transport.Merge(merged, map[string]any{returnTransferKey: true})
	opts, err := c.registry.Translate(merged)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("executing call",
		log.Kind(c.name),
		log.Endpoint(c.endpoint),
		log.Bool("fresh", fresh),
		log.Int("options", len(opts)))

	x := &Exchange{
		endpoint: c.endpoint,
		encoded:  c.encoded,
		fresh:    fresh,
		logger:   c.logger,
	}
	if err := c.kind.Transfer(ctx, x, engine, opts); err != nil {
		return nil, c.hookError(err)
	}

	response, decodeErr := c.kind.DecodeResponse(x.body, c.associative)
	if errors.Is(decodeErr, ErrNotImplemented) {
		return nil, c.hookError(decodeErr)
	}

	code := int(engine.Info(transport.InfoStatusCode))

	c.executed = true
	c.rawResponse = x.body
	c.rawHeader = nil
	if x.hasHeader {
		c.rawHeader = x.header
	}
	c.response = response
	c.responseHeader = c.decodeHeader()
	c.statusCode = code
	c.transportErr = x.transportErr

	if decodeErr != nil {
		c.response = nil
		c.logger.Warn("response not decoded",
			log.Kind(c.name),
			log.Endpoint(c.endpoint),
			log.StatusCode(code),
			log.Err(decodeErr))
		return nil, &DecodeError{Kind: c.name, StatusCode: code, Err: decodeErr}
	}

	c.logger.Debug("call executed",
		log.Kind(c.name),
		log.Endpoint(c.endpoint),
		log.StatusCode(code),
		log.Int("bytes", len(x.body)))

	return response, nil
}

// decodeHeader returns the structured header in associative mode, the raw
// blob otherwise, and nil when the response carried no header section.
func (c *Call) decodeHeader() any {
	if len(c.rawHeader) == 0 {
		return nil
	}
	if c.associative {
		return header.Parse(string(c.rawHeader))
	}
	return string(c.rawHeader)
}

// hookError names the kind on not-implemented errors raised by Unimplemented.
func (c *Call) hookError(err error) error {
	var nie *NotImplementedError
	if errors.As(err, &nie) && nie.Kind == "" {
		named := *nie
		named.Kind = c.name
		return &named
	}
	return err
}

// Endpoint returns the target URL.
func (c *Call) Endpoint() string { return c.endpoint }

// Name returns the call name, by default the Kind's type name.
func (c *Call) Name() string { return c.name }

// Request returns the request object.
func (c *Call) Request() any { return c.request }

// EncodedRequest returns the transport-ready encoding of the request.
func (c *Call) EncodedRequest() []byte { return c.encoded }

// RawQueryMode reports whether raw-query encoding is enabled.
func (c *Call) RawQueryMode() bool { return c.rawQuery }

// Associative reports whether associative output is enabled.
func (c *Call) Associative() bool { return c.associative }

// TransportOptions returns a copy of the per-call transport options.
func (c *Call) TransportOptions() map[string]any {
	return transport.Merge(nil, c.transportOptions)
}

// Executed reports whether Execute has completed successfully at least once.
func (c *Call) Executed() bool { return c.executed }

// RawResponse returns the raw response body.
func (c *Call) RawResponse() []byte { return c.rawResponse }

// RawResponseHeader returns the raw header section, nil when there was none.
func (c *Call) RawResponseHeader() []byte { return c.rawHeader }

// Response returns the decoded response object.
func (c *Call) Response() any { return c.response }

// ResponseHeader returns a header.Header in associative mode, the raw header
// string otherwise, or nil when the response had no header section.
func (c *Call) ResponseHeader() any { return c.responseHeader }

// Header parses the raw header section regardless of output mode.
func (c *Call) Header() (header.Header, bool) {
	if len(c.rawHeader) == 0 {
		return nil, false
	}
	return header.Parse(string(c.rawHeader)), true
}

// StatusCode returns the numeric status of the last execution; 0 means the
// server was never reached (or the call has not been executed).
func (c *Call) StatusCode() int { return c.statusCode }

// Status returns "<code> <label>", or the bare code when the label is unknown.
// Before the first execution it reads "0 Connection failed" like a transport
// failure; use Executed to tell the two apart.
func (c *Call) Status() string { return status.Format(c.statusCode) }

// TransportError returns the transport failure of the last execution, if any.
func (c *Call) TransportError() error { return c.transportErr }

// RequestRepresentation renders the request object as YAML for diagnostics.
func (c *Call) RequestRepresentation() (string, error) {
	return dump.Representation(c.request)
}

// ResponseRepresentation renders the response object as YAML for diagnostics.
func (c *Call) ResponseRepresentation() (string, error) {
	if !c.executed {
		return "", ErrNoResponse
	}
	return dump.Representation(c.response)
}
