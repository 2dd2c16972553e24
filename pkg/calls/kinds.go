package calls

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bft-labs/apicaller/pkg/call"
	"github.com/bft-labs/apicaller/pkg/transport"
)

const (
	contentTypeForm = "application/x-www-form-urlencoded"
	contentTypeJSON = "application/json"
)

// GetJSON sends the request as the query of a GET and decodes a JSON response.
type GetJSON struct {
	// Target is an OPTIONAL prototype of the response type used in object mode.
	Target any
}

// EncodeRequest encodes request as a query string.
func (k *GetJSON) EncodeRequest(request any, rawQuery bool) ([]byte, error) {
	return encodeQueryBytes(request, rawQuery)
}

// Transfer appends the query to the endpoint and sends a GET.
func (k *GetJSON) Transfer(ctx context.Context, x *call.Exchange, engine transport.Engine, opts transport.Options) error {
	return perform(ctx, x, engine, opts, request{method: http.MethodGet, query: true})
}

// DecodeResponse decodes the JSON body, into Target's type in object mode.
func (k *GetJSON) DecodeResponse(body []byte, asMap bool) (any, error) {
	return DecodeJSON(body, asMap, k.Target)
}

// DeleteJSON is GetJSON with the DELETE method.
type DeleteJSON struct {
	// Target is an OPTIONAL prototype of the response type used in object mode.
	Target any
}

// EncodeRequest encodes request as a query string.
func (k *DeleteJSON) EncodeRequest(request any, rawQuery bool) ([]byte, error) {
	return encodeQueryBytes(request, rawQuery)
}

// Transfer appends the query to the endpoint and sends a DELETE.
func (k *DeleteJSON) Transfer(ctx context.Context, x *call.Exchange, engine transport.Engine, opts transport.Options) error {
	return perform(ctx, x, engine, opts, request{method: http.MethodDelete, query: true})
}

// DecodeResponse decodes the JSON body, into Target's type in object mode.
func (k *DeleteJSON) DecodeResponse(body []byte, asMap bool) (any, error) {
	return DecodeJSON(body, asMap, k.Target)
}

// GetHTML sends the request as the query of a GET and returns the body as a string.
type GetHTML struct{}

// EncodeRequest encodes request as a query string.
func (GetHTML) EncodeRequest(request any, rawQuery bool) ([]byte, error) {
	return encodeQueryBytes(request, rawQuery)
}

// Transfer appends the query to the endpoint and sends a GET.
func (GetHTML) Transfer(ctx context.Context, x *call.Exchange, engine transport.Engine, opts transport.Options) error {
	return perform(ctx, x, engine, opts, request{method: http.MethodGet, query: true})
}

// DecodeResponse returns the body unchanged as a string.
func (GetHTML) DecodeResponse(body []byte, asMap bool) (any, error) {
	return string(body), nil
}

// PostForm posts the request urlencoded and decodes a JSON response.
type PostForm struct {
	Target any
}

// EncodeRequest encodes request as an urlencoded form body.
func (k *PostForm) EncodeRequest(request any, rawQuery bool) ([]byte, error) {
	return encodeQueryBytes(request, rawQuery)
}

// Transfer posts the form with its Content-Type.
func (k *PostForm) Transfer(ctx context.Context, x *call.Exchange, engine transport.Engine, opts transport.Options) error {
	return perform(ctx, x, engine, opts, request{method: http.MethodPost, contentType: contentTypeForm})
}

// DecodeResponse decodes the JSON body, into Target's type in object mode.
func (k *PostForm) DecodeResponse(body []byte, asMap bool) (any, error) {
	return DecodeJSON(body, asMap, k.Target)
}

// PostJSON posts the request as a JSON document and decodes a JSON response.
// Raw-query mode does not apply to JSON bodies.
type PostJSON struct {
	Target any
}

// EncodeRequest marshals request as JSON.
func (k *PostJSON) EncodeRequest(request any, rawQuery bool) ([]byte, error) {
	return encodeJSON(request)
}

// Transfer posts the JSON body with its Content-Type.
func (k *PostJSON) Transfer(ctx context.Context, x *call.Exchange, engine transport.Engine, opts transport.Options) error {
	return perform(ctx, x, engine, opts, request{method: http.MethodPost, contentType: contentTypeJSON})
}

// DecodeResponse decodes the JSON body, into Target's type in object mode.
func (k *PostJSON) DecodeResponse(body []byte, asMap bool) (any, error) {
	return DecodeJSON(body, asMap, k.Target)
}

// PutJSON is PostJSON with the PUT method.
type PutJSON struct {
	Target any
}

// EncodeRequest marshals request as JSON.
func (k *PutJSON) EncodeRequest(request any, rawQuery bool) ([]byte, error) {
	return encodeJSON(request)
}

// Transfer sends the JSON body with PUT.
func (k *PutJSON) Transfer(ctx context.Context, x *call.Exchange, engine transport.Engine, opts transport.Options) error {
	return perform(ctx, x, engine, opts, request{method: http.MethodPut, contentType: contentTypeJSON})
}

// DecodeResponse decodes the JSON body, into Target's type in object mode.
func (k *PutJSON) DecodeResponse(body []byte, asMap bool) (any, error) {
	return DecodeJSON(body, asMap, k.Target)
}

var (
	_ call.Kind = (*GetJSON)(nil)
	_ call.Kind = (*DeleteJSON)(nil)
	_ call.Kind = GetHTML{}
	_ call.Kind = (*PostForm)(nil)
	_ call.Kind = (*PostJSON)(nil)
	_ call.Kind = (*PutJSON)(nil)
)

// request describes how a kind maps the encoded request onto the transfer.
type request struct {
	method      string
	query       bool
	contentType string
}

func encodeQueryBytes(request any, rawQuery bool) ([]byte, error) {
	q, err := EncodeQuery(request, rawQuery)
	if err != nil {
		return nil, err
	}
	return []byte(q), nil
}

// perform configures engine for req and runs the transfer. Options given by
// the caller override the kind's own, except that request headers are merged.
// The method, body and header list are always set, so nothing carries over
// from a previous transfer on the same engine.
func perform(ctx context.Context, x *call.Exchange, engine transport.Engine, opts transport.Options, req request) error {
	encoded := x.EncodedRequest()
	target := x.Endpoint()
	final := transport.Options{
		transport.OptHeader:        true,
		transport.OptCustomRequest: "",
		transport.OptPostFields:    "",
	}

	switch req.method {
	case http.MethodGet:
		final[transport.OptHTTPGet] = true
	case http.MethodPost:
		final[transport.OptPost] = true
	default:
		final[transport.OptCustomRequest] = req.method
	}

	headers := []string{}
	if req.query {
		target = withQuery(target, string(encoded))
	} else {
		final[transport.OptPostFields] = string(encoded)
		headers = append(headers, "Content-Type: "+req.contentType)
	}
	final[transport.OptURL] = target
	final[transport.OptFreshConnect] = x.FreshConnection()

	for opt, v := range opts {
		if opt == transport.OptHTTPHeader {
			list, err := transport.HeaderList(v)
			if err != nil {
				return err
			}
			headers = append(headers, list...)
			continue
		}
		final[opt] = v
	}
	final[transport.OptHTTPHeader] = headers

	if err := engine.SetOptions(final); err != nil {
		return fmt.Errorf("configure engine: %w", err)
	}
	x.Exec(ctx, engine)
	return nil
}

func withQuery(endpoint, query string) string {
	if query == "" {
		return endpoint
	}
	if strings.Contains(endpoint, "?") {
		return endpoint + "&" + query
	}
	return endpoint + "?" + query
}
