package call

import (
	"context"

	"github.com/bft-labs/apicaller/pkg/transport"
)

// RequestEncoder turns the request object into its transport-ready form.
// rawQuery asks for an encoding that keeps duplicate and irregular keys verbatim.
type RequestEncoder interface {
	EncodeRequest(request any, rawQuery bool) ([]byte, error)
}

// Transferer configures the engine for x and runs the transfer, storing the
// raw response on x (usually through x.Exec).
type Transferer interface {
	Transfer(ctx context.Context, x *Exchange, engine transport.Engine, opts transport.Options) error
}

// ResponseDecoder turns the raw body into the response object. asMap selects
// associative output (maps and slices) over the kind's object form. The body
// is empty after a transport failure.
type ResponseDecoder interface {
	DecodeResponse(body []byte, asMap bool) (any, error)
}

// Kind is a concrete call type.
type Kind interface {
	RequestEncoder
	Transferer
	ResponseDecoder
}

const (
	encodeHint = `func (k *MyCall) EncodeRequest(request any, rawQuery bool) ([]byte, error) {
	q, err := calls.EncodeQuery(request, rawQuery)
	return []byte(q), err
}`
	transferHint = `func (k *MyCall) Transfer(ctx context.Context, x *call.Exchange, engine transport.Engine, opts transport.Options) error {
	if err := engine.SetOption(transport.OptURL, x.Endpoint()+"?"+string(x.EncodedRequest())); err != nil {
		return err
	}
	if err := engine.SetOptions(opts); err != nil {
		return err
	}
	x.Exec(ctx, engine)
	return nil
}`
	decodeHint = `func (k *MyCall) DecodeResponse(body []byte, asMap bool) (any, error) {
	return calls.DecodeJSON(body, asMap, nil)
}`
)

// Unimplemented can be embedded in a Kind under construction. Each hook it
// provides fails with a *NotImplementedError.
type Unimplemented struct{}

func (Unimplemented) EncodeRequest(any, bool) ([]byte, error) {
	return nil, &NotImplementedError{Hook: "EncodeRequest", Hint: encodeHint}
}

func (Unimplemented) Transfer(context.Context, *Exchange, transport.Engine, transport.Options) error {
	return &NotImplementedError{Hook: "Transfer", Hint: transferHint}
}

func (Unimplemented) DecodeResponse([]byte, bool) (any, error) {
	return nil, &NotImplementedError{Hook: "DecodeResponse", Hint: decodeHint}
}

var _ Kind = Unimplemented{}
