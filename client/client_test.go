package client

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/mcpcore"
)

// fakeTransport answers every request with a canned response, keyed by
// method, and records every notification it receives.
type fakeTransport struct {
	mu        sync.Mutex
	responses map[string]*jsonrpc.Response
	notified  []string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{responses: make(map[string]*jsonrpc.Response)}
}

func (f *fakeTransport) Send(_ context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	resp, ok := f.responses[req.Method]
	if !ok {
		return &jsonrpc.Response{Jsonrpc: jsonrpc.Version, Id: req.Id, Result: json.RawMessage(`{}`)}, nil
	}
	out := *resp
	out.Id = req.Id
	return &out, nil
}

func (f *fakeTransport) Notify(_ context.Context, n *jsonrpc.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, n.Method)
	return nil
}

func connectedClient(t *testing.T, caps ServerCapabilities) (*Client, *fakeTransport) {
	t.Helper()
	ft := newFakeTransport()
	initResult, err := json.Marshal(InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    caps,
		ServerInfo:      Implementation{Name: "fake", Version: "1.0"},
	})
	assert.NoError(t, err)
	ft.responses[methodInitialize] = &jsonrpc.Response{Jsonrpc: jsonrpc.Version, Result: initResult}

	c := New(WithTransport(ft))
	assert.NoError(t, c.Connect(context.Background()))
	assert.Equal(t, StateConnected, c.State())
	return c, ft
}

func TestClient_ConnectCapturesServerInfo(t *testing.T) {
	c, _ := connectedClient(t, ServerCapabilities{Tools: &ToolsCapability{}})
	assert.Equal(t, "fake", c.ServerInfo().Name)
	assert.NotNil(t, c.ServerCapabilities().Tools)
}

func TestClient_ListTools_RequiresCapability(t *testing.T) {
	c, _ := connectedClient(t, ServerCapabilities{})
	_, err := c.ListTools(context.Background(), ListToolsParams{})
	assert.Error(t, err)
}

func TestClient_ListTools_DecodesResult(t *testing.T) {
	c, ft := connectedClient(t, ServerCapabilities{Tools: &ToolsCapability{}})
	toolsJSON, _ := json.Marshal(ListToolsResult{Tools: []Tool{{Name: "echo"}}})
	ft.responses[methodListTools] = &jsonrpc.Response{Jsonrpc: jsonrpc.Version, Result: toolsJSON}

	result, err := c.ListTools(context.Background(), ListToolsParams{})
	assert.NoError(t, err)
	assert.Len(t, result.Tools, 1)
	assert.Equal(t, "echo", result.Tools[0].Name)
}

func TestClient_Ping_NeedsNoCapability(t *testing.T) {
	c, _ := connectedClient(t, ServerCapabilities{})
	assert.NoError(t, c.Ping(context.Background()))
}

func TestClient_SetRoots_NotifiesOnListChanged(t *testing.T) {
	c, ft := connectedClient(t, ServerCapabilities{})
	c.capabilities.Roots = &RootsCapability{ListChanged: true}

	assert.NoError(t, c.SetRoots(context.Background(), []Root{{URI: "file:///tmp"}}))
	ft.mu.Lock()
	defer ft.mu.Unlock()
	assert.Contains(t, ft.notified, notificationRootsListChanged)
}

func TestClient_SubscribeUnsubscribeResource(t *testing.T) {
	c, _ := connectedClient(t, ServerCapabilities{Resources: &ResourcesCapability{Subscribe: true}})
	ch, err := c.SubscribeToResource(context.Background(), "file:///a")
	assert.NoError(t, err)
	assert.NotNil(t, ch)

	assert.NoError(t, c.UnsubscribeFromResource(context.Background(), "file:///a"))
	_, open := <-ch
	assert.False(t, open)
}

func TestClient_ListChangedFlags_ClearOnRead(t *testing.T) {
	c, _ := connectedClient(t, ServerCapabilities{})
	c.toolsChanged.Store(true)
	assert.True(t, c.ToolsListChanged())
	assert.False(t, c.ToolsListChanged())
}

func TestClient_ListTools_NoServerCapabilityWithoutConnect(t *testing.T) {
	c := New()
	_, err := c.ListTools(context.Background(), ListToolsParams{})
	assert.Error(t, err)
}
