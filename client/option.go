package client

import (
	"time"

	"github.com/viant/mcpcore"
)

// Option configures a Client at construction time, in the teacher's
// functional-options style (see e.g. transport/client/stdio.Option).
type Option func(*Client)

// WithTransport attaches t immediately, equivalent to calling Attach after
// New.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.Attach(t) }
}

// WithClientInfo overrides the name/version reported in the initialize
// handshake.
func WithClientInfo(info Implementation) Option {
	return func(c *Client) { c.clientInfo = info }
}

// WithCapabilities overrides the capabilities offered in the initialize
// handshake. Callers that only want to add sampling or drop roots should
// read Client.capabilities defaults from New's zero-value Client first.
func WithCapabilities(caps ClientCapabilities) Option {
	return func(c *Client) { c.capabilities = caps }
}

// WithRequestTimeout overrides DefaultRequestTimeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) { c.requestTimeout = d }
}

// WithSamplingHandler registers the callback invoked for an inbound
// "sampling/createMessage" request. Without one, the Client replies with
// JSON-RPC error -32601.
func WithSamplingHandler(handler SamplingHandler) Option {
	return func(c *Client) { c.samplingHandler = handler }
}

// WithLogger overrides the jsonrpc.Logger used for transport-level
// diagnostics (distinct from the Logs() notification channel).
func WithLogger(logger jsonrpc.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithRoots seeds the client's roots list before Connect, so the first
// "roots/list" the server issues already has an answer.
func WithRoots(roots ...Root) Option {
	return func(c *Client) { c.roots = append([]Root(nil), roots...) }
}
