// Package apicaller executes HTTP API calls through pluggable call kinds.
//
// A call kind decides how a request object is encoded, how the transfer is
// performed on a transport engine and how the response body is decoded.
// The sub-packages can be imported directly; this package re-exports the
// common types and wires the net/http engine.
//
// Example usage:
//
//	c, err := apicaller.Do(ctx, "https://api.example.com/items",
//	    map[string]any{"page": 2}, &calls.GetJSON{},
//	    map[string]any{"timeout": 10},
//	    call.WithAssociative(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(c.Status(), c.Response())
package apicaller

import (
	"context"
	"errors"
	"fmt"

	httpengine "github.com/bft-labs/apicaller/internal/adapters/http"
	"github.com/bft-labs/apicaller/pkg/call"
	"github.com/bft-labs/apicaller/pkg/calls"
	"github.com/bft-labs/apicaller/pkg/header"
	"github.com/bft-labs/apicaller/pkg/log"
	"github.com/bft-labs/apicaller/pkg/poller"
	"github.com/bft-labs/apicaller/pkg/transport"
)

// Re-exported types.
type (
	Call     = call.Call
	Kind     = call.Kind
	Exchange = call.Exchange
	Option   = call.Option

	// DecodeError reports a response body the call kind could not decode.
	DecodeError = call.DecodeError

	Engine        = transport.Engine
	EngineOptions = transport.Options

	Header = header.Header
	Logger = log.Logger

	// HTTPEngine is the net/http transport engine.
	HTTPEngine = httpengine.Engine
	// HTTPEngineOption configures an HTTPEngine.
	HTTPEngineOption = httpengine.Option
)

// NewHTTPEngine returns a transport engine backed by net/http.
func NewHTTPEngine(opts ...HTTPEngineOption) *HTTPEngine {
	return httpengine.NewEngine(opts...)
}

// WithHTTPClient makes an HTTPEngine send requests through client.
var WithHTTPClient = httpengine.WithClient

// WithEngineLogger sets the logger of an HTTPEngine.
var WithEngineLogger = httpengine.WithLogger

// New creates a Call after checking that the linked modules are compatible.
func New(endpoint string, request any, kind Kind, opts ...Option) (*Call, error) {
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}
	return call.New(endpoint, request, kind, opts...)
}

// Do creates a Call and executes it once on a new HTTP engine.
// A transport failure is not an error; check Call.StatusCode for 0. When the
// body cannot be decoded the executed Call is returned with the *DecodeError.
func Do(ctx context.Context, endpoint string, request any, kind Kind, options map[string]any, opts ...Option) (*Call, error) {
	c, err := New(endpoint, request, kind, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := c.Execute(ctx, options, NewHTTPEngine(), false); err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			return c, err
		}
		return nil, err
	}
	return c, nil
}

// validateModuleVersions checks that all module versions are compatible.
// Returns an error if any module version is below its minimum compatible version.
func validateModuleVersions() error {
	modules := map[string]struct {
		version    string
		minVersion string
	}{
		"call":      {call.Version, call.MinCompatibleVersion},
		"calls":     {calls.Version, calls.MinCompatibleVersion},
		"transport": {transport.Version, transport.MinCompatibleVersion},
		"poller":    {poller.Version, poller.MinCompatibleVersion},
		"log":       {log.Version, log.MinCompatibleVersion},
	}

	for name, m := range modules {
		if !isVersionCompatible(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}

	return nil
}

// isVersionCompatible checks if version >= minVersion using semantic versioning.
// Assumes versions are in format "major.minor.patch".
func isVersionCompatible(version, minVersion string) bool {
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
