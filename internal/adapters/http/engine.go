// Package http implements transport.Engine on top of net/http.
package http

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/apicaller/internal/ports"
	"github.com/bft-labs/apicaller/pkg/log"
	"github.com/bft-labs/apicaller/pkg/transport"
)

// DefaultMaxRedirects bounds redirect following when OptMaxRedirs is unset.
const DefaultMaxRedirects = 30

// ErrNoURL is returned by Execute when OptURL was never set.
var ErrNoURL = errors.New("http engine: no URL set")

// Engine is a transport.Engine backed by an HTTP client.
//
// Options persist across executions until overwritten or Reset. Options that
// shape the connection itself (connect timeout, proxy, peer verification)
// only apply when the engine owns its client.
type Engine struct {
	client     ports.HTTPClient
	ownsClient bool
	logger     log.Logger

	opts transport.Options
	info map[transport.InfoKey]int64

	transport    *http.Transport
	transportKey string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClient makes the engine send requests through client. The client should
// not follow redirects itself; the engine does so when OptFollowLocation is set.
func WithClient(client ports.HTTPClient) Option {
	return func(e *Engine) {
		e.client = client
		e.ownsClient = false
	}
}

// WithLogger sets the logger used for transfer diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine. Without WithClient it builds its own client.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		ownsClient: true,
		opts:       make(transport.Options),
		info:       make(map[transport.InfoKey]int64),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = log.Or(e.logger)
	return e
}

// SetOption validates and stores a single option.
func (e *Engine) SetOption(opt transport.Option, value any) error {
	v, err := coerce(opt, value)
	if err != nil {
		return err
	}
	switch opt {
	case transport.OptHTTPGet:
		if v == true {
			delete(e.opts, transport.OptPost)
			delete(e.opts, transport.OptNoBody)
		}
	case transport.OptPost:
		if v == true {
			delete(e.opts, transport.OptHTTPGet)
			delete(e.opts, transport.OptNoBody)
		}
	}
	e.opts[opt] = v
	return nil
}

// SetOptions applies opts in identifier order.
func (e *Engine) SetOptions(opts transport.Options) error {
	for _, opt := range sortedOptions(opts) {
		if err := e.SetOption(opt, opts[opt]); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears every option and the information of the last transfer.
func (e *Engine) Reset() {
	e.opts = make(transport.Options)
	e.info = make(map[transport.InfoKey]int64)
}

// Info returns information about the last transfer.
func (e *Engine) Info(key transport.InfoKey) int64 {
	return e.info[key]
}

// Execute performs the transfer described by the current options.
func (e *Engine) Execute(ctx context.Context) ([]byte, error) {
	e.info = make(map[transport.InfoKey]int64)
	start := time.Now()
	requestID := uuid.NewString()

	target := e.str(transport.OptURL)
	if target == "" {
		return nil, ErrNoURL
	}

	if timeout := e.timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	method, body := e.method()
	client := e.httpClient()

	e.logger.Debug("transfer started",
		log.String("request_id", requestID),
		log.String("method", method),
		log.Endpoint(target))

	resp, err := e.roundTrip(ctx, client, method, target, body, requestID)
	e.info[transport.InfoTotalTimeMillis] = time.Since(start).Milliseconds()
	if err != nil {
		e.logger.Debug("transfer failed",
			log.String("request_id", requestID),
			log.Endpoint(target),
			log.Err(err))
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := e.readBody(resp)
	e.info[transport.InfoTotalTimeMillis] = time.Since(start).Milliseconds()
	if err != nil {
		return nil, fmt.Errorf("http engine: read body: %w", err)
	}

	var head bytes.Buffer
	fmt.Fprintf(&head, "%s %s\r\n", resp.Proto, resp.Status)
	if err := resp.Header.Write(&head); err != nil {
		return nil, fmt.Errorf("http engine: write header: %w", err)
	}
	head.WriteString("\r\n")

	e.info[transport.InfoStatusCode] = int64(resp.StatusCode)
	e.info[transport.InfoHeaderSize] = int64(head.Len())
	e.info[transport.InfoSizeDownload] = int64(len(payload))

	e.logger.Debug("transfer finished",
		log.String("request_id", requestID),
		log.Endpoint(target),
		log.StatusCode(resp.StatusCode),
		log.Int("bytes", len(payload)),
		log.Int64("millis", e.info[transport.InfoTotalTimeMillis]))

	if !e.flag(transport.OptHeader) {
		return payload, nil
	}
	return append(head.Bytes(), payload...), nil
}

func (e *Engine) roundTrip(ctx context.Context, client ports.HTTPClient, method, target string, body []byte, requestID string) (*http.Response, error) {
	maxRedirs := DefaultMaxRedirects
	if _, ok := e.opts[transport.OptMaxRedirs]; ok {
		maxRedirs = int(e.num(transport.OptMaxRedirs))
	}

	for followed := 0; ; followed++ {
		req, err := e.newRequest(ctx, method, target, body)
		if err != nil {
			return nil, err
		}
		if e.flag(transport.OptVerbose) {
			e.logger.Debug("request",
				log.String("request_id", requestID),
				log.String("method", method),
				log.Endpoint(target),
				log.Any("header", req.Header))
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("http engine: %w", err)
		}
		if e.flag(transport.OptVerbose) {
			e.logger.Debug("response",
				log.String("request_id", requestID),
				log.StatusCode(resp.StatusCode),
				log.Any("header", resp.Header))
		}

		if !e.flag(transport.OptFollowLocation) || !isRedirect(resp.StatusCode) {
			return resp, nil
		}
		loc, err := resp.Location()
		if err != nil {
			return resp, nil
		}
		if maxRedirs >= 0 && followed >= maxRedirs {
			resp.Body.Close()
			return nil, fmt.Errorf("http engine: maximum (%d) redirects followed", maxRedirs)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusSeeOther ||
			(method == http.MethodPost && (resp.StatusCode == http.StatusMovedPermanently || resp.StatusCode == http.StatusFound)) {
			method = http.MethodGet
			body = nil
		}
		target = loc.String()
	}
}

func (e *Engine) newRequest(ctx context.Context, method, target string, body []byte) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return nil, fmt.Errorf("http engine: create request: %w", err)
	}

	if body != nil && method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if ua := e.str(transport.OptUserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	if ref := e.str(transport.OptReferer); ref != "" {
		req.Header.Set("Referer", ref)
	}
	if cookie := e.str(transport.OptCookie); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	if enc, ok := e.opts[transport.OptEncoding].(string); ok {
		if enc == "" {
			enc = "gzip"
		}
		req.Header.Set("Accept-Encoding", enc)
	}
	if lines, _ := e.opts[transport.OptHTTPHeader].([]string); len(lines) > 0 {
		for _, line := range lines {
			name, value, _ := strings.Cut(line, ":")
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			value = strings.TrimSpace(value)
			if value == "" {
				req.Header.Del(name)
				continue
			}
			req.Header.Set(name, value)
		}
	}
	if userpwd := e.str(transport.OptUserPwd); userpwd != "" {
		user, pwd, _ := strings.Cut(userpwd, ":")
		req.SetBasicAuth(user, pwd)
	}
	if e.flag(transport.OptFreshConnect) || e.flag(transport.OptForbidReuse) {
		req.Close = true
	}
	return req, nil
}

// method resolves the request method and body from the current options.
func (e *Engine) method() (string, []byte) {
	var body []byte
	if fields, ok := e.opts[transport.OptPostFields].(string); ok && fields != "" {
		body = []byte(fields)
	}
	method := http.MethodGet
	switch {
	case e.flag(transport.OptNoBody):
		method = http.MethodHead
	case e.flag(transport.OptPost):
		method = http.MethodPost
		if body == nil {
			body = []byte{}
		}
	case e.flag(transport.OptHTTPGet):
		body = nil
	case body != nil:
		method = http.MethodPost
	}
	if custom := e.str(transport.OptCustomRequest); custom != "" {
		method = strings.ToUpper(custom)
	}
	return method, body
}

func (e *Engine) readBody(resp *http.Response) ([]byte, error) {
	var rd io.Reader = resp.Body
	if _, ok := e.opts[transport.OptEncoding]; ok && strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		rd = gz
	}
	return io.ReadAll(rd)
}

func (e *Engine) timeout() time.Duration {
	if ms := e.num(transport.OptTimeoutMS); ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return time.Duration(e.num(transport.OptTimeout)) * time.Second
}

// httpClient returns the injected client, or the engine's own client with a
// transport matching the connection options.
func (e *Engine) httpClient() ports.HTTPClient {
	if !e.ownsClient {
		return e.client
	}
	connect := time.Duration(e.num(transport.OptConnectTimeout)) * time.Second
	insecure := false
	if v, ok := e.opts[transport.OptSSLVerifyPeer]; ok && v == false {
		insecure = true
	}
	proxy := e.str(transport.OptProxy)

	key := fmt.Sprintf("%s|%t|%s", connect, insecure, proxy)
	if e.transport == nil || e.transportKey != key {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if connect > 0 {
			t.DialContext = (&net.Dialer{Timeout: connect, KeepAlive: 30 * time.Second}).DialContext
		}
		if insecure {
			t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via OPT_SSL_VERIFYPEER=false
		}
		if proxy != "" {
			if u, err := url.Parse(proxy); err == nil {
				t.Proxy = http.ProxyURL(u)
			} else {
				e.logger.Warn("ignoring invalid proxy", log.String("proxy", proxy), log.Err(err))
			}
		}
		if e.transport != nil {
			e.transport.CloseIdleConnections()
		}
		e.transport = t
		e.transportKey = key
	}
	e.client = &http.Client{
		Transport: e.transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return e.client
}

func (e *Engine) flag(opt transport.Option) bool {
	v, _ := e.opts[opt].(bool)
	return v
}

func (e *Engine) str(opt transport.Option) string {
	v, _ := e.opts[opt].(string)
	return v
}

func (e *Engine) num(opt transport.Option) int64 {
	v, _ := e.opts[opt].(int64)
	return v
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// coerce normalises a value to the type the engine stores for opt:
// string, bool, int64 or []string.
func coerce(opt transport.Option, value any) (any, error) {
	switch opt {
	case transport.OptURL, transport.OptCustomRequest, transport.OptPostFields,
		transport.OptUserAgent, transport.OptReferer, transport.OptCookie,
		transport.OptUserPwd, transport.OptProxy, transport.OptEncoding:
		switch v := value.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		}
	case transport.OptReturnTransfer, transport.OptHeader, transport.OptPost,
		transport.OptHTTPGet, transport.OptNoBody, transport.OptFollowLocation,
		transport.OptFreshConnect, transport.OptForbidReuse,
		transport.OptSSLVerifyPeer, transport.OptVerbose:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err == nil {
				return b, nil
			}
		default:
			if n, ok := toInt(value); ok {
				return n != 0, nil
			}
		}
	case transport.OptTimeout, transport.OptTimeoutMS, transport.OptConnectTimeout, transport.OptMaxRedirs:
		if n, ok := toInt(value); ok {
			return n, nil
		}
		if s, ok := value.(string); ok {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n, nil
			}
		}
	case transport.OptHTTPHeader:
		lines, err := transport.HeaderList(value)
		if err != nil {
			return nil, fmt.Errorf("http engine: %w", err)
		}
		return lines, nil
	default:
		return nil, fmt.Errorf("http engine: unsupported option %d", opt)
	}
	return nil, fmt.Errorf("http engine: option %d: invalid value %v (%T)", opt, value, value)
}

func toInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float32:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}

func sortedOptions(opts transport.Options) []transport.Option {
	keys := make([]transport.Option, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

var _ transport.Engine = (*Engine)(nil)
