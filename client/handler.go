package client

import (
	"context"
	"encoding/json"

	"github.com/viant/mcpcore"
)

// Serve implements transport.Handler for server-initiated requests, per
// spec §4.H: "ping" replies with an empty result, "roots/list" replies with
// the currently configured roots, and "sampling/createMessage" dispatches
// to the user-supplied SamplingHandler (or JSON-RPC -32601 if none is set).
func (c *Client) Serve(ctx context.Context, request *jsonrpc.Request, response *jsonrpc.Response) {
	response.Id = request.Id
	response.Jsonrpc = jsonrpc.Version
	switch request.Method {
	case methodPing:
		response.Result = json.RawMessage(`{}`)
	case methodRootsList:
		c.mu.RLock()
		roots := append([]Root(nil), c.roots...)
		c.mu.RUnlock()
		data, _ := json.Marshal(ListRootsResult{Roots: roots})
		response.Result = data
	case methodSamplingCreateMessage:
		c.serveSampling(ctx, request, response)
	default:
		response.Error = &jsonrpc.InnerError{Code: jsonrpc.MethodNotFound, Message: "unexpected request type: " + request.Method}
	}
}

func (c *Client) serveSampling(ctx context.Context, request *jsonrpc.Request, response *jsonrpc.Response) {
	c.mu.RLock()
	handler := c.samplingHandler
	c.mu.RUnlock()
	if handler == nil {
		response.Error = &jsonrpc.InnerError{Code: jsonrpc.MethodNotFound, Message: "Sampling not supported"}
		return
	}
	var params CreateMessageParams
	if err := json.Unmarshal(request.Params, &params); err != nil {
		response.Error = &jsonrpc.InnerError{Code: jsonrpc.InvalidParams, Message: err.Error()}
		return
	}
	result, err := handler(ctx, params)
	if err != nil {
		response.Error = &jsonrpc.InnerError{Code: jsonrpc.InternalError, Message: "Internal error", Data: err.Error()}
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		response.Error = &jsonrpc.InnerError{Code: jsonrpc.InternalError, Message: "Internal error", Data: err.Error()}
		return
	}
	response.Result = data
}

// OnNotification implements transport.Handler's notification half,
// dispatching every inbound notification per spec §4.H's table.
func (c *Client) OnNotification(ctx context.Context, notification *jsonrpc.Notification) {
	switch notification.Method {
	case notificationMessage:
		c.publishLog(notification.Params, "")
	case notificationStderr:
		c.publishLog(notification.Params, "stderr")
	case notificationToolsListChanged:
		c.toolsChanged.Store(true)
	case notificationPromptsListChanged:
		c.promptsChanged.Store(true)
	case notificationResourcesListChanged:
		c.resourcesChanged.Store(true)
	case notificationCancelled:
		c.cancelPending(notification.Params)
	case notificationResourceUpdated:
		c.dispatchResourceUpdated(notification.Params)
	case notificationProgress:
		c.dispatchProgress(notification.Params)
	default:
		c.publishStreamError(&unsupportedNotification{method: notification.Method})
	}
}

func (c *Client) publishLog(raw json.RawMessage, forceLogger string) {
	var params LogMessageParams
	if err := json.Unmarshal(raw, &params); err != nil {
		// notifications/stderr carries a plain string payload, not the
		// structured logging/message shape; fall back to treating raw as
		// the message data itself.
		params = LogMessageParams{Level: "info", Data: raw}
	}
	if forceLogger != "" {
		params.Logger = forceLogger
	}
	select {
	case c.logs <- params:
	default:
	}
}

func (c *Client) dispatchResourceUpdated(raw json.RawMessage) {
	var params ResourceUpdatedParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return
	}
	c.subsMu.Lock()
	ch, ok := c.subs[params.URI]
	c.subsMu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- params:
	default:
	}
}

func (c *Client) dispatchProgress(raw json.RawMessage) {
	var params ProgressParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return
	}
	select {
	case c.progress <- params:
	default:
	}
}

// canceller is implemented by transports able to retire one of our own
// pending requests, matched against an inbound "notifications/cancelled".
type canceller interface {
	CancelPending(id interface{}) bool
}

func (c *Client) cancelPending(raw json.RawMessage) {
	var params CancelledParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return
	}
	c.mu.RLock()
	t := c.transport
	c.mu.RUnlock()
	if cn, ok := t.(canceller); ok {
		cn.CancelPending(params.RequestID)
	}
}

func (c *Client) publishStreamError(err error) {
	select {
	case c.streamErrors <- err:
	default:
	}
}

// publishError publishes a standalone JSON-RPC error envelope (one with no
// matching pending request) on the Errors channel.
func (c *Client) publishError(e *jsonrpc.Error) {
	select {
	case c.errors <- e:
	default:
	}
}

type unsupportedNotification struct{ method string }

func (e *unsupportedNotification) Error() string {
	return "unsupported notification: " + e.method
}
