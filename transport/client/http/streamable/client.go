package streamable

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs/url"
	"github.com/viant/mcpcore"
	"github.com/viant/mcpcore/corerr"
	"github.com/viant/mcpcore/ssestream"
	"github.com/viant/mcpcore/transport"
	"github.com/viant/mcpcore/transport/client/base"
)

const sseMime = "text/event-stream"

// protocolVersion2024 is the legacy HTTP+SSE dialect: a long-lived GET
// stream carries an "endpoint" event naming the POST URL, in place of the
// 2025-03-26 session-id-header handshake.
const protocolVersion2024 = "2024-11-05"

// maxReconnectAttempts and maxReconnectBackoff bound the GET-stream
// reconnection loop per spec §4.F; after maxReconnectAttempts consecutive
// failures the loop gives up and reports KindReconnectionFailed instead of
// retrying forever.
const (
	maxReconnectAttempts = 10
	maxReconnectBackoff  = 2 * time.Minute
	initialBackoff       = 500 * time.Millisecond
)

// Authorizer is the OAuth 401 hook from spec §4.E/§4.F: when a request
// fails with 401, the client calls Authorize once to obtain a fresh
// Authorization header value and retries the request a single time.
type Authorizer interface {
	Authorize(ctx context.Context) (string, error)
}

// Client implements the streamable-HTTP transport consumer of spec §4.F.
//
// Handshake: POST /mcp (the initialize request) returns an Mcp-Session-Id
// response header for the 2025-03-26 dialect. An "endpoint" event arriving
// on the GET stream replaces the URL used for later POSTs. The client does
// not switch to the 2024-11-05 dialect by itself: a 4xx on the initialize
// POST is returned as an error, and the GET stream is only opened once a
// session id has been received.
// Stream: GET /mcp with the session header open a long-lived SSE stream of
// server-initiated messages; failed attempts to open it are retried with
// capped exponential backoff, up to maxReconnectAttempts in a row. The
// Keep-Alive timeout of the GET response is recorded but not acted on.
// Messages: subsequent POST /mcp with the session header carry requests and
// notifications; a POST response may itself be a single JSON object or an
// SSE stream (consumed inline, once).
type Client struct {
	endpointURL string
	base        *base.Client

	httpClient       *http.Client
	handshakeTimeout time.Duration
	authorizer       Authorizer

	mu        sync.Mutex
	sessionID string

	// postEndpoint is the URL used for POSTs. Equal to endpointURL under the
	// 2025-03-26 dialect; replaced by the "endpoint" SSE event's value under
	// the 2024-11-05 fallback.
	postEndpoint string

	lastEventIDGet  string
	lastEventIDPost string

	transport *Transport

	sessionHeaderName string
	protocolVersion   string

	// keepAliveTimeout records the timeout= value of the GET-stream
	// response's Keep-Alive header. Nothing else reads it: no read deadline
	// or ping timer is derived from it.
	keepAliveTimeout time.Duration

	streamMu      sync.Mutex
	streamActive  bool
	streamCancel  context.CancelFunc
	exited        chan struct{}
	reinitialized bool

	// reinitialize redrives the MCP initialize handshake, set by the
	// high-level client.Client via SetReinitializer. It is called from
	// Transport.sendData before the single allowed 404 retry so the
	// session-id recovery in spec §4.F/scenario 2 actually re-establishes
	// a session instead of just clearing one.
	reinitialize func(ctx context.Context) error
}

// SetReinitializer registers the callback Transport.sendData invokes to
// redrive the initialize handshake after a 404 session loss.
func (c *Client) SetReinitializer(fn func(ctx context.Context) error) {
	c.mu.Lock()
	c.reinitialize = fn
	c.mu.Unlock()
}

// sessionContext returns a context carrying the current MCP session id, so
// the base.Client's logging/interceptor hooks can see it.
func (c *Client) sessionContext(ctx context.Context) context.Context {
	c.mu.Lock()
	sid := c.sessionID
	c.mu.Unlock()
	if sid == "" {
		return ctx
	}
	return context.WithValue(ctx, jsonrpc.SessionKey, sid)
}

// Notify sends a JSON-RPC notification.
func (c *Client) Notify(ctx context.Context, n *jsonrpc.Notification) error {
	return c.base.Notify(c.sessionContext(ctx), n)
}

// Send sends a JSON-RPC request and waits for its response.
func (c *Client) Send(ctx context.Context, r *jsonrpc.Request) (*jsonrpc.Response, error) {
	return c.base.Send(c.sessionContext(ctx), r)
}

// CancelPending retires one of our own pending requests, for an inbound
// "notifications/cancelled" or a caller-side cancellation.
func (c *Client) CancelPending(id interface{}) bool {
	return c.base.CancelPending(id)
}

// Exited is closed once the GET stream's reconnection loop gives up,
// letting Client.watchTransportExit observe the disconnect.
func (c *Client) Exited() <-chan struct{} {
	return c.exited
}

// hasReinitialized reports whether the 404-retry-once allowance for this
// connection has already been used.
func (c *Client) hasReinitialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reinitialized
}

func (c *Client) markReinitialized() {
	c.mu.Lock()
	c.reinitialized = true
	c.mu.Unlock()
}

// Close tears down the background SSE stream.
func (c *Client) Close(_ context.Context) error {
	c.streamMu.Lock()
	cancel := c.streamCancel
	c.streamMu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}

// validateSessionID enforces spec §4.F's byte range for a session id: every
// byte must be in the visible-ASCII range 0x21-0x7E.
func validateSessionID(id string) error {
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7E {
			return corerr.New(corerr.KindInvalidSessionID, "streamable", fmt.Sprintf("session id contains byte 0x%02x outside 0x21-0x7E", id[i]))
		}
	}
	return nil
}

// setSessionID validates and stores sessionID, starting the background GET
// stream the first time a session is established.
func (c *Client) setSessionID(sessionID string) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	c.mu.Lock()
	isNew := c.sessionID == ""
	c.sessionID = sessionID
	c.mu.Unlock()
	c.transport.headers.Set(c.sessionHeaderName, sessionID)
	if isNew {
		c.ensureStream()
	}
	return nil
}

// openStream dials the GET SSE stream and consumes it until the server
// closes it, an error occurs, or ctx is cancelled.
func (c *Client) openStream(ctx context.Context) error {
	c.mu.Lock()
	sid := c.sessionID
	lastID := c.lastEventIDGet
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpointURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", sseMime)
	if sid != "" {
		req.Header.Set(c.sessionHeaderName, sid)
	}
	if c.protocolVersion != "" {
		req.Header.Set("MCP-Protocol-Version", c.protocolVersion)
	}
	if lastID != "" {
		req.Header.Set("Last-Event-ID", lastID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return corerr.Wrap(corerr.KindTransportIO, "streamable", "failed to open GET stream", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotFound {
		// Server does not support the standalone GET stream at all; not an
		// error condition, simply nothing to consume.
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return corerr.New(corerr.KindServerHTTPError, "streamable", fmt.Sprintf("GET stream returned status %d", resp.StatusCode))
	}

	c.captureKeepAlive(resp.Header.Get("Keep-Alive"))
	return c.consumeSSEGet(ctx, resp)
}

func (c *Client) captureKeepAlive(header string) {
	if header == "" {
		return
	}
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if kv := strings.SplitN(part, "=", 2); len(kv) == 2 && strings.EqualFold(strings.TrimSpace(kv[0]), "timeout") {
			if secs, err := strconv.Atoi(strings.TrimSpace(kv[1])); err == nil && secs > 0 {
				c.mu.Lock()
				c.keepAliveTimeout = time.Duration(secs) * time.Second
				c.mu.Unlock()
			}
		}
	}
}

// consumeSSEGet reads SSE frames from the long-lived GET stream, dispatching
// "message" events to the base client and tracking the standalone
// "endpoint" event used by the 2024-11-05 fallback dialect.
func (c *Client) consumeSSEGet(ctx context.Context, resp *http.Response) error {
	parser := ssestream.NewParser()
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			for _, ev := range parser.Feed(buf[:n]) {
				c.handleGetEvent(ctx, ev)
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil // server closed the stream; reconnect loop handles retry
		}
	}
}

func (c *Client) handleGetEvent(ctx context.Context, ev ssestream.Event) {
	if ev.ID != "" {
		c.mu.Lock()
		c.lastEventIDGet = ev.ID
		c.mu.Unlock()
	}
	switch ev.Type {
	case "endpoint":
		c.mu.Lock()
		c.postEndpoint = resolveEndpoint(c.endpointURL, ev.Data)
		c.mu.Unlock()
	case "message":
		if strings.TrimSpace(ev.Data) != "" {
			c.base.HandleMessage(c.sessionContext(ctx), []byte(ev.Data))
		}
	}
}

// resolveEndpoint resolves the 2024-11-05 "endpoint" event's value against
// base, allowing the server to send either an absolute URL or a path.
func resolveEndpoint(base, endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	schema := url.Scheme(base, "http")
	host := url.Host(base)
	if strings.HasPrefix(endpoint, "/") {
		return fmt.Sprintf("%s://%s%s", schema, host, endpoint)
	}
	return fmt.Sprintf("%s://%s/%s", schema, host, endpoint)
}

// consumeSSEPost consumes a POST response delivered as an SSE stream,
// per the 2025-03-26 dialect's allowance for a streamed reply to a single
// request.
func (c *Client) consumeSSEPost(ctx context.Context, resp *http.Response) error {
	parser := ssestream.NewParser()
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			for _, ev := range parser.Feed(buf[:n]) {
				if ev.ID != "" {
					c.mu.Lock()
					c.lastEventIDPost = ev.ID
					c.mu.Unlock()
				}
				if ev.Type == "message" && strings.TrimSpace(ev.Data) != "" {
					c.base.HandleMessage(c.sessionContext(ctx), []byte(ev.Data))
				}
			}
		}
		if err != nil {
			return nil
		}
	}
}

// ensureStream starts the background GET-stream reconnection loop exactly
// once, lazily - it is a no-op until a session id exists.
func (c *Client) ensureStream() {
	c.streamMu.Lock()
	if c.streamActive {
		c.streamMu.Unlock()
		return
	}
	c.streamActive = true
	ctx, cancel := context.WithCancel(context.Background())
	c.streamCancel = cancel
	c.streamMu.Unlock()

	go c.runStream(ctx)
}

// runStream retries openStream with exponential backoff capped at
// maxReconnectBackoff, giving up after maxReconnectAttempts consecutive
// failures and closing c.exited.
func (c *Client) runStream(ctx context.Context) {
	backoff := initialBackoff
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := c.openStream(ctx)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			backoff = initialBackoff
			attempts = 0
			continue
		}

		attempts++
		if attempts >= maxReconnectAttempts {
			c.base.SetError(corerr.Wrap(corerr.KindReconnectionFailed, "streamable", fmt.Sprintf("GET stream reconnection failed after %d attempts", attempts), err))
			close(c.exited)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxReconnectBackoff {
			backoff = maxReconnectBackoff
		}
	}
}

// New dials endpointURL and prepares (but does not yet perform) the
// initialize handshake - the caller drives that via the high-level
// client.Client, as with the stdio transport.
func New(ctx context.Context, endpointURL string, opts ...Option) (*Client, error) {
	jar, _ := cookiejar.New(nil)
	httpClient := &http.Client{Jar: jar}

	c := &Client{
		endpointURL:       endpointURL,
		postEndpoint:      endpointURL,
		httpClient:        httpClient,
		handshakeTimeout:  30 * time.Second,
		sessionHeaderName: "Mcp-Session-Id",
		protocolVersion:   "2025-03-26",
		exited:            make(chan struct{}),
	}

	c.transport = &Transport{
		client:  httpClient,
		headers: make(http.Header),
		c:       c,
	}

	c.base = &base.Client{
		RunTimeout: 15 * time.Minute,
		RoundTrips: transport.NewRoundTrips(100),
		Handler:    &base.Handler{},
		Logger:     jsonrpc.DefaultLogger,
	}
	c.base.Transport = c.transport

	for _, opt := range opts {
		opt(c)
	}

	c.transport.client = c.httpClient
	c.transport.setEndpoint(c.postEndpoint)
	if c.protocolVersion != "" {
		c.transport.headers.Set("MCP-Protocol-Version", c.protocolVersion)
	}

	return c, nil
}
