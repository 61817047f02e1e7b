package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/mcpcore"
	"github.com/viant/mcpcore/corerr"
	"github.com/viant/mcpcore/transport"
)

// State is one of the four states of the client's connection lifecycle
// defined in spec §4.H.
type State string

const (
	StateDisconnected  State = "disconnected"
	StateConnecting    State = "connecting"
	StateConnected     State = "connected"
	StateDisconnecting State = "disconnecting"
)

// DefaultRequestTimeout is the per-request default from spec §4.H/§5.
const DefaultRequestTimeout = 120 * time.Second

// Transport is the subset of transport.Transport a Client drives. Every
// concrete transport in this module (stdio.Client, streamable.Client,
// dxt.Client) satisfies it.
type Transport = transport.Transport

// closer is implemented by transports that own a resource requiring
// explicit teardown (a child process, an HTTP connection pool).
type closer interface {
	Close(ctx context.Context) error
}

// SamplingHandler answers a server-initiated "sampling/createMessage"
// request. A nil handler causes the Client to reply with JSON-RPC error
// -32601 "Sampling not supported", per spec §4.H.
type SamplingHandler func(ctx context.Context, params CreateMessageParams) (*CreateMessageResult, error)

// Client is the protocol-aware high-level MCP client of spec §4.H. It
// multiplexes typed request/response calls, server-initiated requests, and
// notifications over an injected Transport.
//
// Grounded on the teacher's transport/client/base.Client dispatch
// (Send/Notify/HandleMessage already implement component H's "Transport
// owns process/socket; Client owns request dispatch" split); the
// capability gate, server-initiated handlers, and channel-based
// connectionState/errors/streamErrors/logs surface are new.
type Client struct {
	mu    sync.RWMutex
	state State

	transport Transport

	clientInfo   Implementation
	capabilities ClientCapabilities
	requestTimeout time.Duration
	samplingHandler SamplingHandler
	logger          jsonrpc.Logger

	serverInfo   Implementation
	serverCaps   ServerCapabilities
	protoVersion string

	roots []Root

	toolsChanged     atomic.Bool
	promptsChanged   atomic.Bool
	resourcesChanged atomic.Bool

	subsMu sync.Mutex
	subs   map[string]chan ResourceUpdatedParams

	connectionState chan State
	errors          chan *jsonrpc.Error
	streamErrors    chan error
	logs            chan LogMessageParams
	progress        chan ProgressParams

	idCounter uint64

	closeOnce sync.Once
	watchOnce sync.Once
}

// New constructs a Client in the disconnected state. Attach must be called
// (directly, or via one of the opts) before Connect.
func New(opts ...Option) *Client {
	c := &Client{
		state:          StateDisconnected,
		clientInfo:     Implementation{Name: "mcpcore", Version: "0.1.0"},
		capabilities:   ClientCapabilities{Roots: &RootsCapability{ListChanged: true}, Sampling: &SamplingCapability{}},
		requestTimeout: DefaultRequestTimeout,
		logger:         jsonrpc.DefaultLogger,
		subs:           make(map[string]chan ResourceUpdatedParams),

		connectionState: make(chan State, 16),
		errors:          make(chan *jsonrpc.Error, 64),
		streamErrors:    make(chan error, 64),
		logs:            make(chan LogMessageParams, 256),
		progress:        make(chan ProgressParams, 256),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Attach binds the Client to a Transport. The transport should have been
// constructed with its Handler option pointed at this Client (see
// Client.Serve/Client.OnNotification) so server-initiated requests and
// notifications reach it.
func (c *Client) Attach(t Transport) {
	c.mu.Lock()
	c.transport = t
	c.mu.Unlock()
	if r, ok := t.(reinitializer); ok {
		r.SetReinitializer(c.reinitialize)
	}
}

// reinitializer is implemented by transports that need the high-level
// client to redrive the initialize handshake after recovering a lost
// session (the streamable-HTTP 404 case of spec §4.F/scenario 2).
type reinitializer interface {
	SetReinitializer(fn func(ctx context.Context) error)
}

// reinitialize redrives the MCP initialize handshake on the current
// transport without touching the Client's own connection state, so a
// transport recovering from a lost session can re-establish
// serverInfo/capabilities before retrying the request that triggered the
// recovery.
func (c *Client) reinitialize(ctx context.Context) error {
	c.mu.RLock()
	t := c.transport
	c.mu.RUnlock()
	if t == nil {
		return corerr.New(corerr.KindNotStarted, "client", "no transport attached")
	}

	params := InitializeParams{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    c.capabilities,
		ClientInfo:      c.clientInfo,
	}
	req, err := jsonrpc.NewRequest(methodInitialize, params)
	if err != nil {
		return corerr.Wrap(corerr.KindRequestFailed, "client", "failed to build initialize request", err)
	}
	req.Id = c.nextID()

	resp, err := t.Send(ctx, req)
	if err != nil {
		return corerr.Wrap(corerr.KindRequestFailed, "client", "re-initialize failed", err)
	}
	if resp.Error != nil {
		return corerr.New(corerr.KindRequestFailed, "client", resp.Error.Message)
	}

	var result InitializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return corerr.Wrap(corerr.KindRequestInvalidResponse, "client", "invalid re-initialize result", err)
	}

	c.mu.Lock()
	c.serverInfo = result.ServerInfo
	c.serverCaps = result.Capabilities
	c.protoVersion = result.ProtocolVersion
	c.mu.Unlock()

	return t.Notify(ctx, &jsonrpc.Notification{Jsonrpc: jsonrpc.Version, Method: methodInitialized})
}

// ConnectionState streams StateConnecting/StateConnected/
// StateDisconnecting/StateDisconnected transitions.
func (c *Client) ConnectionState() <-chan State { return c.connectionState }

// Errors is the channel for standalone JSON-RPC error envelopes that have
// no matching pending request. The transports in this module do not hand
// such envelopes to the Client, so nothing is sent on it.
func (c *Client) Errors() <-chan *jsonrpc.Error { return c.errors }

// StreamErrors streams transport-level errors not attributable to a single
// request (connection drops, malformed frames, unsupported notifications).
func (c *Client) StreamErrors() <-chan error { return c.streamErrors }

// Logs streams "notifications/message" and "notifications/stderr" entries.
func (c *Client) Logs() <-chan LogMessageParams { return c.logs }

// Progress streams "notifications/progress" params. Reserved per spec
// §9(a): accepted but not required reading - an unread channel never blocks
// dispatch because publishes are non-blocking best-effort sends.
func (c *Client) Progress() <-chan ProgressParams { return c.progress }

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	select {
	case c.connectionState <- s:
	default:
	}
}

// State returns the client's current lifecycle state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Connect performs the MCP initialize handshake. It is idempotent from
// StateDisconnected: calling it while already StateConnecting or
// StateConnected is a no-op that returns nil.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.RLock()
	state := c.state
	t := c.transport
	c.mu.RUnlock()
	if state == StateConnecting || state == StateConnected {
		return nil
	}
	if t == nil {
		return corerr.New(corerr.KindNotStarted, "client", "no transport attached; call Attach before Connect")
	}

	c.setState(StateConnecting)

	params := InitializeParams{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    c.capabilities,
		ClientInfo:      c.clientInfo,
	}
	req, err := jsonrpc.NewRequest(methodInitialize, params)
	if err != nil {
		c.setState(StateDisconnected)
		return corerr.Wrap(corerr.KindRequestFailed, "client", "failed to build initialize request", err)
	}
	req.Id = c.nextID()

	resp, err := t.Send(ctx, req)
	if err != nil {
		c.setState(StateDisconnected)
		return corerr.Wrap(corerr.KindRequestFailed, "client", "initialize failed", err)
	}
	if resp.Error != nil {
		c.setState(StateDisconnected)
		return corerr.New(corerr.KindRequestFailed, "client", resp.Error.Message)
	}

	var result InitializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		c.setState(StateDisconnected)
		return corerr.Wrap(corerr.KindRequestInvalidResponse, "client", "invalid initialize result", err)
	}

	c.mu.Lock()
	c.serverInfo = result.ServerInfo
	c.serverCaps = result.Capabilities
	c.protoVersion = result.ProtocolVersion
	c.mu.Unlock()

	if err := t.Notify(ctx, &jsonrpc.Notification{Jsonrpc: jsonrpc.Version, Method: methodInitialized}); err != nil {
		c.setState(StateDisconnected)
		return corerr.Wrap(corerr.KindTransportIO, "client", "failed to send notifications/initialized", err)
	}

	c.setState(StateConnected)
	c.watchTransportExit()
	return nil
}

// ServerInfo returns the serverInfo captured during initialize.
func (c *Client) ServerInfo() Implementation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverInfo
}

// ServerCapabilities returns the capabilities captured during initialize.
func (c *Client) ServerCapabilities() ServerCapabilities {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverCaps
}

// exitNotifier is implemented by transports that can report an
// out-of-band disconnect (a child process exiting, an HTTP session
// dying) so the Client can reflect it on ConnectionState without a
// caller having to poll.
type exitNotifier interface {
	Exited() <-chan struct{}
}

func (c *Client) watchTransportExit() {
	c.watchOnce.Do(func() {
		t, ok := c.transport.(exitNotifier)
		if !ok {
			return
		}
		go func() {
			<-t.Exited()
			c.mu.RLock()
			state := c.state
			c.mu.RUnlock()
			if state == StateConnected {
				c.setState(StateDisconnected)
			}
		}()
	})
}

// Disconnect moves the Client through StateDisconnecting to
// StateDisconnected and closes the transport when it implements Close. It
// does not fail requests that are still in flight (each ends when its own
// context or timeout does), and it leaves the Logs/Errors channels open.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.RLock()
	state := c.state
	t := c.transport
	c.mu.RUnlock()
	if state == StateDisconnected || state == "" {
		return nil
	}
	c.setState(StateDisconnecting)

	var closeErr error
	c.closeOnce.Do(func() {
		if cl, ok := t.(closer); ok {
			closeErr = cl.Close(ctx)
		}
	})

	c.setState(StateDisconnected)
	return closeErr
}

func (c *Client) nextID() interface{} {
	return fmt.Sprintf("%d", atomic.AddUint64(&c.idCounter, 1))
}

// dispatch sends req, applying the request-timeout/cancellation race from
// spec §4.H: a caller-cancelled ctx or a timeout both produce a best-effort
// notifications/cancelled and a local failure; only a genuine response (or
// lower-level send error) is returned otherwise.
func (c *Client) dispatch(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	c.mu.RLock()
	t := c.transport
	timeout := c.requestTimeout
	c.mu.RUnlock()
	if t == nil {
		return nil, corerr.New(corerr.KindNotConnected, "client", "not connected")
	}
	req.Id = c.nextID()

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := t.Send(runCtx, req)
	if err == nil {
		return resp, nil
	}

	// Distinguish our own timeout from the caller's upstream cancellation.
	var kind corerr.Kind
	if ctx.Err() != nil {
		kind = corerr.KindRequestCancelled
	} else {
		kind = corerr.KindRequestTimedOut
	}
	c.notifyCancelled(req.Id)
	if kind == corerr.KindRequestCancelled {
		return nil, corerr.Wrap(corerr.KindRequestCancelled, "client", "request cancelled", err)
	}
	return nil, corerr.Wrap(corerr.KindRequestTimedOut, "client", "request timed out", err)
}

// notifyCancelled sends a best-effort notifications/cancelled for id and
// purges our own pending-request entry for it via the transport's
// CancelPending, so a local timeout/cancellation retires the id from the
// pending-request map just as an inbound notifications/cancelled does in
// handler.go's cancelPending - required by §8's "every id placed into the
// pending-request map is removed within bounded time" invariant.
func (c *Client) notifyCancelled(id interface{}) {
	c.mu.RLock()
	t := c.transport
	c.mu.RUnlock()
	if t == nil {
		return
	}
	if cn, ok := t.(canceller); ok {
		cn.CancelPending(id)
	}
	params, err := json.Marshal(CancelledParams{RequestID: id, Reason: "timeout"})
	if err != nil {
		return
	}
	_ = t.Notify(context.Background(), &jsonrpc.Notification{
		Jsonrpc: jsonrpc.Version,
		Method:  notificationCancelled,
		Params:  params,
	})
}

// requireCapability implements the capability gate from spec §4.H.
func (c *Client) requireCapability(ok bool, name string) error {
	if ok {
		return nil
	}
	return corerr.New(corerr.KindCapabilityNotSupported, "client", fmt.Sprintf("server did not advertise capability %q", name))
}

func decodeResult(resp *jsonrpc.Response, out interface{}) error {
	if resp.Error != nil {
		return corerr.New(corerr.KindRequestFailed, "client", resp.Error.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return corerr.Wrap(corerr.KindRequestInvalidResponse, "client", "invalid response payload", err)
	}
	return nil
}
