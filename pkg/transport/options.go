package transport

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Option is an engine-native option identifier.
type Option int

// Options maps engine-native identifiers to values, ready to be applied to an Engine.
type Options map[Option]any

// Engine option identifiers understood by DefaultRegistry.
const (
	OptURL Option = iota + 1
	OptReturnTransfer
	OptHeader
	OptHTTPHeader
	OptCustomRequest
	OptPost
	OptPostFields
	OptHTTPGet
	OptNoBody
	OptTimeout
	OptTimeoutMS
	OptConnectTimeout
	OptUserAgent
	OptReferer
	OptCookie
	OptUserPwd
	OptFollowLocation
	OptMaxRedirs
	OptFreshConnect
	OptForbidReuse
	OptSSLVerifyPeer
	OptProxy
	OptEncoding
	OptVerbose
)

// DefaultPrefix is the option namespace used by DefaultRegistry.
const DefaultPrefix = "OPT_"

var (
	// ErrUnknownOption is returned when a configuration key has no engine identifier.
	ErrUnknownOption = errors.New("transport: unknown option")

	// ErrDuplicateOption is returned when two configuration keys name the same identifier.
	ErrDuplicateOption = errors.New("transport: duplicate option")
)

// OptionError reports a configuration key that could not be translated.
type OptionError struct {
	Key    string
	Prefix string
	Err    error
}

func (e *OptionError) Error() string {
	if errors.Is(e.Err, ErrDuplicateOption) {
		return fmt.Sprintf("invalid option '%s' in transport options: given more than once (option names are case-insensitive)", e.Key)
	}
	return fmt.Sprintf("invalid option '%s' in transport options: use engine option names without the prefix '%s'", e.Key, e.Prefix)
}

func (e *OptionError) Unwrap() error {
	return e.Err
}

// Registry resolves prefixed, upper-case option names to engine identifiers.
type Registry struct {
	prefix string
	known  map[string]Option
}

// NewRegistry creates a Registry. Names in known must already carry prefix.
func NewRegistry(prefix string, known map[string]Option) *Registry {
	m := make(map[string]Option, len(known))
	for name, opt := range known {
		m[name] = opt
	}
	return &Registry{prefix: prefix, known: m}
}

// DefaultRegistry returns the registry for the identifiers declared in this package.
func DefaultRegistry() *Registry {
	return NewRegistry(DefaultPrefix, map[string]Option{
		"OPT_URL":            OptURL,
		"OPT_RETURNTRANSFER": OptReturnTransfer,
		"OPT_HEADER":         OptHeader,
		"OPT_HTTPHEADER":     OptHTTPHeader,
		"OPT_CUSTOMREQUEST":  OptCustomRequest,
		"OPT_POST":           OptPost,
		"OPT_POSTFIELDS":     OptPostFields,
		"OPT_HTTPGET":        OptHTTPGet,
		"OPT_NOBODY":         OptNoBody,
		"OPT_TIMEOUT":        OptTimeout,
		"OPT_TIMEOUT_MS":     OptTimeoutMS,
		"OPT_CONNECTTIMEOUT": OptConnectTimeout,
		"OPT_USERAGENT":      OptUserAgent,
		"OPT_REFERER":        OptReferer,
		"OPT_COOKIE":         OptCookie,
		"OPT_USERPWD":        OptUserPwd,
		"OPT_FOLLOWLOCATION": OptFollowLocation,
		"OPT_MAXREDIRS":      OptMaxRedirs,
		"OPT_FRESH_CONNECT":  OptFreshConnect,
		"OPT_FORBID_REUSE":   OptForbidReuse,
		"OPT_SSL_VERIFYPEER": OptSSLVerifyPeer,
		"OPT_PROXY":          OptProxy,
		"OPT_ENCODING":       OptEncoding,
		"OPT_VERBOSE":        OptVerbose,
	})
}

// Prefix returns the option namespace of r.
func (r *Registry) Prefix() string {
	return r.prefix
}

// Lookup resolves a generic key such as "timeout" to its identifier.
func (r *Registry) Lookup(key string) (Option, bool) {
	opt, ok := r.known[r.prefix+strings.ToUpper(key)]
	return opt, ok
}

// Translate converts a generic configuration dictionary into engine Options.
// Keys are case-insensitive. Translation is all-or-nothing: if any key is
// unknown the result is nil and the error is an *OptionError.
func (r *Registry) Translate(config map[string]any) (Options, error) {
	out := make(Options, len(config))
	for _, k := range sortedKeys(config) {
		opt, ok := r.Lookup(k)
		if !ok {
			return nil, &OptionError{Key: k, Prefix: r.prefix, Err: ErrUnknownOption}
		}
		if _, dup := out[opt]; dup {
			return nil, &OptionError{Key: k, Prefix: r.prefix, Err: ErrDuplicateOption}
		}
		out[opt] = config[k]
	}
	return out, nil
}

// Merge returns a new dictionary holding base overlaid with override.
// Keys are compared case-insensitively; on collision the override key and
// value win.
func Merge(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(override))
	index := make(map[string]string, len(base)+len(override))
	put := func(k string, v any) {
		norm := strings.ToLower(k)
		if prev, ok := index[norm]; ok {
			delete(out, prev)
		}
		index[norm] = k
		out[k] = v
	}
	for _, k := range sortedKeys(base) {
		put(k, base[k])
	}
	for _, k := range sortedKeys(override) {
		put(k, override[k])
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HeaderList converts an HTTPHEADER option value into "Name: value" lines.
func HeaderList(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{val}, nil
	case []string:
		return append([]string(nil), val...), nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("httpheader: expected string entries, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	case map[string]any:
		out := make([]string, 0, len(val))
		for _, k := range sortedKeys(val) {
			out = append(out, fmt.Sprintf("%s: %v", k, val[k]))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("httpheader: unsupported value type %T", v)
	}
}
