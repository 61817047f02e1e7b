package streamable

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSessionID(t *testing.T) {
	assert.NoError(t, validateSessionID("abc-123"))
	assert.Error(t, validateSessionID("has\x00null"))
	assert.Error(t, validateSessionID("has space"))
}

func TestSendData_CapturesSessionIDHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Mcp-Session-Id", "sess-1")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
	}))
	defer srv.Close()

	c, err := New(context.Background(), srv.URL)
	assert.NoError(t, err)
	defer c.Close(context.Background())

	assert.NoError(t, c.transport.SendData(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)))

	c.mu.Lock()
	sid := c.sessionID
	c.mu.Unlock()
	assert.Equal(t, "sess-1", sid)
}

func TestSendData_404ReinitializesOnce(t *testing.T) {
	attempt := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempt++
		if attempt == 1 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Mcp-Session-Id", "fresh")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
	}))
	defer srv.Close()

	c, err := New(context.Background(), srv.URL)
	assert.NoError(t, err)
	defer c.Close(context.Background())
	c.mu.Lock()
	c.sessionID = "stale"
	c.mu.Unlock()

	reinitCalled := false
	c.SetReinitializer(func(ctx context.Context) error {
		reinitCalled = true
		return nil
	})

	assert.NoError(t, c.transport.SendData(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)))
	assert.Equal(t, 2, attempt)
	assert.True(t, c.hasReinitialized())
	assert.True(t, reinitCalled, "404 recovery must redrive the initialize handshake before retrying")
}

func TestSendData_404WithoutReinitializerStillRetriesOnce(t *testing.T) {
	attempt := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempt++
		if attempt == 1 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
	}))
	defer srv.Close()

	c, err := New(context.Background(), srv.URL)
	assert.NoError(t, err)
	defer c.Close(context.Background())
	c.mu.Lock()
	c.sessionID = "stale"
	c.mu.Unlock()

	assert.NoError(t, c.transport.SendData(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)))
	assert.Equal(t, 2, attempt)
}

func TestSendData_401WithoutAuthorizerFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := New(context.Background(), srv.URL)
	assert.NoError(t, err)
	defer c.Close(context.Background())

	err = c.transport.SendData(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	assert.Error(t, err)
}

type fixedAuthorizer struct{ header string }

func (f fixedAuthorizer) Authorize(context.Context) (string, error) { return f.header, nil }

func TestSendData_401RetriesWithAuthorizer(t *testing.T) {
	var sawAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		sawAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
	}))
	defer srv.Close()

	c, err := New(context.Background(), srv.URL, WithAuthorizer(fixedAuthorizer{header: "Bearer tok123"}))
	assert.NoError(t, err)
	defer c.Close(context.Background())

	assert.NoError(t, c.transport.SendData(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)))
	assert.Equal(t, "Bearer tok123", sawAuth)
}

func TestResolveEndpoint(t *testing.T) {
	assert.Equal(t, "http://example.com/session/abc", resolveEndpoint("http://example.com/mcp", "/session/abc"))
	assert.Equal(t, "https://other.example/x", resolveEndpoint("http://example.com/mcp", "https://other.example/x"))
}

func TestCaptureKeepAlive(t *testing.T) {
	c := &Client{}
	c.captureKeepAlive("timeout=30, max=5")
	assert.Equal(t, 30_000_000_000.0, float64(c.keepAliveTimeout))
}
