package streamable

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/viant/mcpcore/corerr"
)

// Transport implements the POST side of the streamable-HTTP transport.
type Transport struct {
	client   *http.Client
	headers  http.Header
	endpoint string
	c        *Client
	sync.Mutex
}

func (t *Transport) setEndpoint(uri string) {
	t.endpoint = uri
}

// SendData posts a single JSON-RPC message to the server, retrying once
// against a fresh Authorization header on 401 (per spec §4.E/§4.F) and
// re-initializing once on 404 (a stale session id, per spec §4.F).
func (t *Transport) SendData(ctx context.Context, data []byte) error {
	return t.sendData(ctx, data, true)
}

func (t *Transport) sendData(ctx context.Context, data []byte, allowRetry bool) error {
	t.c.mu.Lock()
	endpoint := t.c.postEndpoint
	t.c.mu.Unlock()
	if endpoint == "" {
		return corerr.New(corerr.KindInvalidServerURL, "streamable", "transport is not initialized - endpoint is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return corerr.Wrap(corerr.KindTransportIO, "streamable", "failed to build POST request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	t.Lock()
	for k, v := range t.headers {
		req.Header[k] = v
	}
	t.Unlock()

	resp, err := t.client.Do(req)
	if err != nil {
		return corerr.Wrap(corerr.KindTransportIO, "streamable", "failed to send request", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && allowRetry && t.c.authorizer != nil {
		_ = resp.Body.Close()
		header, authErr := t.c.authorizer.Authorize(ctx)
		if authErr != nil {
			return corerr.Wrap(corerr.KindAuthenticationRequired, "streamable", "authorization failed", authErr)
		}
		t.Lock()
		t.headers.Set("Authorization", header)
		t.Unlock()
		return t.sendData(ctx, data, false)
	}

	if resp.StatusCode == http.StatusNotFound && allowRetry && !t.c.hasReinitialized() {
		// A 404 on an established session means the server no longer
		// recognizes it (restart, eviction); clear it, redrive the
		// initialize handshake to obtain a fresh session id, then retry the
		// original send exactly once, per spec §4.F / scenario 2.
		_ = resp.Body.Close()
		t.c.markReinitialized()
		t.c.mu.Lock()
		t.c.sessionID = ""
		reinit := t.c.reinitialize
		t.c.mu.Unlock()
		t.headers.Del(t.c.sessionHeaderName)
		if reinit != nil {
			if err := reinit(ctx); err != nil {
				return corerr.Wrap(corerr.KindServerHTTPError, "streamable", "re-initialize after session loss failed", err)
			}
		}
		return t.sendData(ctx, data, false)
	}

	if sessionID := resp.Header.Get(t.c.sessionHeaderName); sessionID != "" {
		if err := t.c.setSessionID(sessionID); err != nil {
			_ = resp.Body.Close()
			return err
		}
	}

	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "text/event-stream") {
		defer resp.Body.Close()
		return t.c.consumeSSEPost(ctx, resp)
	}

	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		if len(body) > 0 {
			t.c.base.HandleMessage(ctx, body)
		}
		return nil
	default:
		return corerr.New(corerr.KindServerHTTPError, "streamable", "unexpected status "+resp.Status+": "+string(body))
	}
}
