package stdio

import (
	"context"
	"time"

	"github.com/viant/mcpcore"
	"github.com/viant/mcpcore/transport"
)

type Option func(c *Client)

// WithArguments is used to set the command line arguments for the child process.
func WithArguments(args ...string) Option {
	return func(c *Client) {
		c.args = args
	}
}

// WithEnvironment sets an environment variable override for the child process.
func WithEnvironment(key, value string) Option {
	return func(c *Client) {
		if c.env == nil {
			c.env = make(map[string]string)
		}
		c.env[key] = value
	}
}

// WithWorkingDirectory sets the child process's working directory.
func WithWorkingDirectory(dir string) Option {
	return func(c *Client) {
		c.dir = dir
	}
}

// WithPathProbe overrides how the merged PATH is discovered, letting tests
// supply a fixed value instead of shelling out to a login shell.
func WithPathProbe(probe func(ctx context.Context) (string, error)) Option {
	return func(c *Client) {
		c.pathProbe = probe
	}
}

// WithConnectionState registers a channel that receives "connected" and
// "disconnected" as the child process starts and exits.
func WithConnectionState(state chan<- string) Option {
	return func(c *Client) {
		c.connState = state
	}
}

// WithLogs registers a channel that receives the child's stderr, line by line.
func WithLogs(logs chan<- string) Option {
	return func(c *Client) {
		c.logs = logs
	}
}

// WithTrips overrides the pending-request correlator.
func WithTrips(trips *transport.RoundTrips) Option {
	return func(c *Client) {
		c.base.RoundTrips = trips
	}
}

// WithListener sets a listener invoked for every inbound/outbound message.
func WithListener(listener jsonrpc.Listener) Option {
	return func(c *Client) {
		c.base.Listener = listener
	}
}

// WithRunTimeout sets how long a request waits for its matching response.
func WithRunTimeout(timeoutMs int) Option {
	return func(c *Client) {
		c.base.RunTimeout = time.Duration(timeoutMs) * time.Millisecond
	}
}

// WithHandler overrides the handler invoked for server-initiated requests.
func WithHandler(handler transport.Handler) Option {
	return func(c *Client) {
		c.base.Handler = handler
	}
}

// WithLogger overrides the logger used for transport-level diagnostics.
func WithLogger(logger jsonrpc.Logger) Option {
	return func(c *Client) {
		c.base.Logger = logger
	}
}
