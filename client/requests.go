package client

import (
	"context"

	"github.com/viant/mcpcore"
	"github.com/viant/mcpcore/corerr"
)

// ListPrompts calls "prompts/list", gated on the server advertising a
// prompts capability during initialize.
func (c *Client) ListPrompts(ctx context.Context, params ListPromptsParams) (*ListPromptsResult, error) {
	c.mu.RLock()
	ok := c.serverCaps.Prompts != nil
	c.mu.RUnlock()
	if err := c.requireCapability(ok, "prompts"); err != nil {
		return nil, err
	}
	req, err := jsonrpc.NewRequest(methodListPrompts, params)
	if err != nil {
		return nil, corerr.Wrap(corerr.KindRequestFailed, "client", "failed to build prompts/list request", err)
	}
	resp, err := c.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	var result ListPromptsResult
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPrompt calls "prompts/get".
func (c *Client) GetPrompt(ctx context.Context, params GetPromptParams) (*GetPromptResult, error) {
	c.mu.RLock()
	ok := c.serverCaps.Prompts != nil
	c.mu.RUnlock()
	if err := c.requireCapability(ok, "prompts"); err != nil {
		return nil, err
	}
	req, err := jsonrpc.NewRequest(methodGetPrompt, params)
	if err != nil {
		return nil, corerr.Wrap(corerr.KindRequestFailed, "client", "failed to build prompts/get request", err)
	}
	resp, err := c.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	var result GetPromptResult
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListResources calls "resources/list".
func (c *Client) ListResources(ctx context.Context, params ListResourcesParams) (*ListResourcesResult, error) {
	c.mu.RLock()
	ok := c.serverCaps.Resources != nil
	c.mu.RUnlock()
	if err := c.requireCapability(ok, "resources"); err != nil {
		return nil, err
	}
	req, err := jsonrpc.NewRequest(methodListResources, params)
	if err != nil {
		return nil, corerr.Wrap(corerr.KindRequestFailed, "client", "failed to build resources/list request", err)
	}
	resp, err := c.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	var result ListResourcesResult
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListResourceTemplates calls "resources/templates/list".
func (c *Client) ListResourceTemplates(ctx context.Context, params ListResourceTemplatesParams) (*ListResourceTemplatesResult, error) {
	c.mu.RLock()
	ok := c.serverCaps.Resources != nil
	c.mu.RUnlock()
	if err := c.requireCapability(ok, "resources"); err != nil {
		return nil, err
	}
	req, err := jsonrpc.NewRequest(methodListResourceTemplates, params)
	if err != nil {
		return nil, corerr.Wrap(corerr.KindRequestFailed, "client", "failed to build resources/templates/list request", err)
	}
	resp, err := c.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	var result ListResourceTemplatesResult
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ReadResource calls "resources/read".
func (c *Client) ReadResource(ctx context.Context, params ReadResourceParams) (*ReadResourceResult, error) {
	c.mu.RLock()
	ok := c.serverCaps.Resources != nil
	c.mu.RUnlock()
	if err := c.requireCapability(ok, "resources"); err != nil {
		return nil, err
	}
	req, err := jsonrpc.NewRequest(methodReadResource, params)
	if err != nil {
		return nil, corerr.Wrap(corerr.KindRequestFailed, "client", "failed to build resources/read request", err)
	}
	resp, err := c.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	var result ReadResourceResult
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SubscribeToResource calls "resources/subscribe" and returns a channel
// that receives ResourceUpdatedParams for uri until UnsubscribeFromResource
// is called. The capability gate also requires the server to advertise
// subscribe support specifically, not just resources generally.
func (c *Client) SubscribeToResource(ctx context.Context, uri string) (<-chan ResourceUpdatedParams, error) {
	c.mu.RLock()
	ok := c.serverCaps.Resources != nil && c.serverCaps.Resources.Subscribe
	c.mu.RUnlock()
	if err := c.requireCapability(ok, "resources.subscribe"); err != nil {
		return nil, err
	}
	req, err := jsonrpc.NewRequest(methodSubscribeResource, SubscribeParams{URI: uri})
	if err != nil {
		return nil, corerr.Wrap(corerr.KindRequestFailed, "client", "failed to build resources/subscribe request", err)
	}
	resp, err := c.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := decodeResult(resp, nil); err != nil {
		return nil, err
	}
	ch := make(chan ResourceUpdatedParams, 16)
	c.subsMu.Lock()
	c.subs[uri] = ch
	c.subsMu.Unlock()
	return ch, nil
}

// UnsubscribeFromResource calls "resources/unsubscribe" and closes the
// channel previously returned by SubscribeToResource for uri.
func (c *Client) UnsubscribeFromResource(ctx context.Context, uri string) error {
	c.mu.RLock()
	ok := c.serverCaps.Resources != nil && c.serverCaps.Resources.Subscribe
	c.mu.RUnlock()
	if err := c.requireCapability(ok, "resources.subscribe"); err != nil {
		return err
	}
	req, err := jsonrpc.NewRequest(methodUnsubscribeResource, UnsubscribeParams{URI: uri})
	if err != nil {
		return corerr.Wrap(corerr.KindRequestFailed, "client", "failed to build resources/unsubscribe request", err)
	}
	resp, err := c.dispatch(ctx, req)
	if err != nil {
		return err
	}
	if err := decodeResult(resp, nil); err != nil {
		return err
	}
	c.subsMu.Lock()
	if ch, ok := c.subs[uri]; ok {
		close(ch)
		delete(c.subs, uri)
	}
	c.subsMu.Unlock()
	return nil
}

// ListTools calls "tools/list".
func (c *Client) ListTools(ctx context.Context, params ListToolsParams) (*ListToolsResult, error) {
	c.mu.RLock()
	ok := c.serverCaps.Tools != nil
	c.mu.RUnlock()
	if err := c.requireCapability(ok, "tools"); err != nil {
		return nil, err
	}
	req, err := jsonrpc.NewRequest(methodListTools, params)
	if err != nil {
		return nil, corerr.Wrap(corerr.KindRequestFailed, "client", "failed to build tools/list request", err)
	}
	resp, err := c.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	var result ListToolsResult
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CallTool calls "tools/call".
func (c *Client) CallTool(ctx context.Context, params CallToolParams) (*CallToolResult, error) {
	c.mu.RLock()
	ok := c.serverCaps.Tools != nil
	c.mu.RUnlock()
	if err := c.requireCapability(ok, "tools"); err != nil {
		return nil, err
	}
	req, err := jsonrpc.NewRequest(methodCallTool, params)
	if err != nil {
		return nil, corerr.Wrap(corerr.KindRequestFailed, "client", "failed to build tools/call request", err)
	}
	resp, err := c.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	var result CallToolResult
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Complete calls "completion/complete", gated on the server advertising the
// completions capability.
func (c *Client) Complete(ctx context.Context, params CompleteParams) (*CompleteResult, error) {
	c.mu.RLock()
	ok := c.serverCaps.Completions != nil
	c.mu.RUnlock()
	if err := c.requireCapability(ok, "completions"); err != nil {
		return nil, err
	}
	req, err := jsonrpc.NewRequest(methodComplete, params)
	if err != nil {
		return nil, corerr.Wrap(corerr.KindRequestFailed, "client", "failed to build completion/complete request", err)
	}
	resp, err := c.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	var result CompleteResult
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping calls "ping". Unlike the other feature calls, it requires no
// capability - every server must answer it.
func (c *Client) Ping(ctx context.Context) error {
	req, err := jsonrpc.NewRequest(methodPing, struct{}{})
	if err != nil {
		return corerr.Wrap(corerr.KindRequestFailed, "client", "failed to build ping request", err)
	}
	resp, err := c.dispatch(ctx, req)
	if err != nil {
		return err
	}
	return decodeResult(resp, nil)
}

// SetRoots replaces the client's roots list and, if the client advertised
// listChanged support and is connected, notifies the server.
func (c *Client) SetRoots(ctx context.Context, roots []Root) error {
	c.mu.Lock()
	c.roots = append([]Root(nil), roots...)
	state := c.state
	listChanged := c.capabilities.Roots != nil && c.capabilities.Roots.ListChanged
	t := c.transport
	c.mu.Unlock()
	if state != StateConnected || !listChanged || t == nil {
		return nil
	}
	return t.Notify(ctx, &jsonrpc.Notification{Jsonrpc: jsonrpc.Version, Method: notificationRootsListChanged})
}

// ToolsListChanged reports whether a "notifications/tools/list_changed" has
// arrived since the last call, clearing the flag.
func (c *Client) ToolsListChanged() bool { return c.toolsChanged.Swap(false) }

// PromptsListChanged reports whether a "notifications/prompts/list_changed"
// has arrived since the last call, clearing the flag.
func (c *Client) PromptsListChanged() bool { return c.promptsChanged.Swap(false) }

// ResourcesListChanged reports whether a
// "notifications/resources/list_changed" has arrived since the last call,
// clearing the flag.
func (c *Client) ResourcesListChanged() bool { return c.resourcesChanged.Swap(false) }
