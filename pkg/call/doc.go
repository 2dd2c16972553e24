// Package call implements the lifecycle shared by every API call.
//
// A Call pairs a target endpoint and a caller-supplied request object with a
// Kind, the concrete call type that knows how to encode the request, drive the
// transport engine and decode the response. Constructing a Call encodes the
// request immediately; Execute then merges transport options, translates them
// into engine identifiers, runs the transfer and decodes body, headers and
// status:
//
//	c, err := call.New("https://api.example.com/v1/items", map[string]any{"page": 2}, &calls.GetJSON{},
//	    call.WithAssociative(true),
//	    call.WithTransportOptions(map[string]any{"timeout": 10}),
//	)
//	if err != nil {
//	    return err
//	}
//	resp, err := c.Execute(ctx, map[string]any{"useragent": "my-app"}, engine, false)
//	if err != nil {
//	    return err // configuration error or defective Kind
//	}
//	if c.StatusCode() == status.ConnectionFailed {
//	    // the server was never reached; resp is whatever the decoder made of an empty body
//	}
//
// # Writing a Kind
//
// A Kind implements RequestEncoder, Transferer and ResponseDecoder. Kinds that
// are assembled incrementally may embed Unimplemented, whose hooks fail with a
// *NotImplementedError describing the expected method.
//
// # Errors
//
// Unknown transport options (transport.ErrUnknownOption) and missing hooks
// (ErrNotImplemented) abort Execute before any response state changes. A body
// the Kind cannot decode yields a *DecodeError, but the raw response and the
// status are still recorded. A transport failure is not an error: it yields
// status 0, "0 Connection failed".
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package call
