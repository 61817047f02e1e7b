package jsonrpc

import "context"

// Listener observes every inbound and outbound Message a transport handles,
// regardless of whether it is ultimately routed to a pending request, a
// notification handler, or a server-initiated request handler. It is a
// diagnostics hook set through a transport's WithListener option; the
// high-level client does not install one.
type Listener func(message *Message)

// sessionKey is an unexported type so values stored under it cannot collide
// with keys set by other packages sharing the same context.
type sessionKey struct{}

// SessionKey is the context key under which the active MCP session id is
// stored by the Streamable-HTTP transport so that nested calls (e.g. an
// OAuth token refresh triggered mid-request) can recover it without a
// parameter threaded through every signature.
var SessionKey = sessionKey{}

// SessionFromContext returns the session id stored by the Streamable-HTTP
// transport, if any.
func SessionFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(SessionKey).(string)
	return v, ok
}
