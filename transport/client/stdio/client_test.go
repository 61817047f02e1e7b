package stdio

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/viant/mcpcore"
)

// fixedPathProbe lets tests avoid shelling out to a real login shell.
func fixedPathProbe(path string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		return path, nil
	}
}

// echoServerScript is a tiny POSIX shell JSON-RPC server: for every
// newline-delimited request it receives, it replies with a response
// carrying the same id and a fixed result, until stdin closes.
const echoServerScript = `
while IFS= read -r line; do
  id=$(printf '%s' "$line" | sed -n 's/.*"id":\([0-9]*\).*/\1/p')
  printf '{"jsonrpc":"2.0","id":%s,"result":{"ok":true}}\n' "$id"
done
`

func TestClient_SendReceivesResponse(t *testing.T) {
	c, err := New("/bin/sh", WithArguments("-c", echoServerScript), WithPathProbe(fixedPathProbe("/usr/bin:/bin")))
	assert.NoError(t, err)
	defer c.Close(context.Background())

	resp, err := c.Send(context.Background(), &jsonrpc.Request{Jsonrpc: jsonrpc.Version, Method: "ping"})
	assert.NoError(t, err)
	assert.NotNil(t, resp)

	var result map[string]bool
	assert.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.True(t, result["ok"])
}

func TestClient_EmbeddedNewlineRejected(t *testing.T) {
	c, err := New("/bin/sh", WithArguments("-c", "cat >/dev/null"), WithPathProbe(fixedPathProbe("/usr/bin:/bin")))
	assert.NoError(t, err)
	defer c.Close(context.Background())

	err = c.transport.SendData(context.Background(), []byte("line one\nline two\n"))
	assert.Error(t, err)
}

func TestClient_WithConnectionStateReportsConnected(t *testing.T) {
	states := make(chan string, 4)
	c, err := New("/bin/sh", WithArguments("-c", "sleep 0.2"),
		WithPathProbe(fixedPathProbe("/usr/bin:/bin")),
		WithConnectionState(states))
	assert.NoError(t, err)
	defer c.Close(context.Background())

	select {
	case s := <-states:
		assert.Equal(t, "connected", s)
	case <-time.After(time.Second):
		t.Fatal("expected a connected state")
	}
}

func TestClient_ExitEmitsDisconnected(t *testing.T) {
	states := make(chan string, 4)
	c, err := New("/bin/sh", WithArguments("-c", "exit 0"),
		WithPathProbe(fixedPathProbe("/usr/bin:/bin")),
		WithConnectionState(states))
	assert.NoError(t, err)

	assert.Equal(t, "connected", <-states)
	select {
	case s := <-states:
		assert.Equal(t, "disconnected", s)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a disconnected state after the child exited")
	}
}

func TestClient_StderrForwardedToLogs(t *testing.T) {
	logs := make(chan string, 4)
	c, err := New("/bin/sh", WithArguments("-c", "echo boom 1>&2; sleep 0.2"),
		WithPathProbe(fixedPathProbe("/usr/bin:/bin")),
		WithLogs(logs))
	assert.NoError(t, err)
	defer c.Close(context.Background())

	select {
	case line := <-logs:
		assert.Equal(t, "boom", line)
	case <-time.After(time.Second):
		t.Fatal("expected stderr line to be forwarded")
	}
}

func TestMergePath_DeduplicatesPreservingOrder(t *testing.T) {
	got := mergePath("/usr/local/bin:/usr/bin", "/usr/bin:/bin")
	assert.True(t, strings.HasPrefix(got, "/usr/local/bin:/usr/bin:/bin"))
}

func TestClient_Close_IsIdempotent(t *testing.T) {
	c, err := New("/bin/sh", WithArguments("-c", "sleep 5"), WithPathProbe(fixedPathProbe("/usr/bin:/bin")))
	assert.NoError(t, err)

	assert.NoError(t, c.Close(context.Background()))
	assert.NoError(t, c.Close(context.Background()))
}
