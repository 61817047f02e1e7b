package stdio

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/viant/mcpcore"
	"github.com/viant/mcpcore/corerr"
	"github.com/viant/mcpcore/transport"
	"github.com/viant/mcpcore/transport/client/base"
)

// maxBufferBytes is the inbound read-buffer cap from spec §4.D; a child
// that emits an unterminated line larger than this is treated as fatal.
const maxBufferBytes = 128 * 1024 * 1024

// fallbackPath is appended to PATH merging when neither the login shell nor
// the current process contributed it already.
const fallbackPath = "/usr/local/bin:/usr/bin:/bin:/usr/sbin:/sbin"

// pathProbe invokes the user's login shell to discover its PATH, so a
// spawned server inherits the same executable search path a terminal
// session would. Injectable for tests per spec §9's "should be injectable"
// design note.
type pathProbe func(ctx context.Context) (string, error)

// Client spawns a child process and speaks newline-delimited JSON-RPC over
// its stdin/stdout, generalizing the teacher's gosh-runner-backed stdio
// client into a direct os/exec driver (see DESIGN.md).
type Client struct {
	base      *base.Client
	transport *Transport

	command string
	args    []string
	env     map[string]string
	dir     string

	pathProbe pathProbe

	cmd    *exec.Cmd
	ctx    context.Context
	exited chan struct{}

	connState chan<- string
	logs      chan<- string

	stderrMu   sync.Mutex
	stderrTail string

	closeOnce sync.Once
}

// New spawns command with the given options applied, and returns once the
// process has been started (not once it has produced its first message).
func New(command string, options ...Option) (*Client, error) {
	c := &Client{
		command:   command,
		ctx:       context.Background(),
		pathProbe: defaultPathProbe,
		transport: &Transport{},
	}
	c.base = &base.Client{
		Transport:  c.transport,
		RoundTrips: transport.NewRoundTrips(20),
		RunTimeout: 15 * time.Minute,
		Handler:    &base.Handler{},
		Logger:     jsonrpc.DefaultLogger,
	}
	for _, opt := range options {
		opt(c)
	}
	if err := c.start(c.ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) Notify(ctx context.Context, notification *jsonrpc.Notification) error {
	return c.base.Notify(ctx, notification)
}

func (c *Client) Send(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	return c.base.Send(ctx, request)
}

func (c *Client) start(ctx context.Context) error {
	mergedPath := c.resolvePath(ctx)

	cmd := exec.Command(c.command, c.args...)
	cmd.Env = buildEnv(os.Environ(), c.env, mergedPath)
	if c.dir != "" {
		cmd.Dir = c.dir
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return corerr.Wrap(corerr.KindTransportIO, "stdio", "failed to open stdin pipe", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return corerr.Wrap(corerr.KindTransportIO, "stdio", "failed to open stdout pipe", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return corerr.Wrap(corerr.KindTransportIO, "stdio", "failed to open stderr pipe", err)
	}

	if err := cmd.Start(); err != nil {
		return corerr.Wrap(corerr.KindTransportIO, "stdio", "failed to start child process", err)
	}

	c.cmd = cmd
	c.exited = make(chan struct{})
	c.transport.stdin = stdin

	go c.readStdout(stdout)
	go c.readStderr(stderr)
	go c.waitForExit()

	c.publishState("connected")
	return nil
}

// Close performs the shutdown sequence from spec §4.D: close stdin, request
// graceful termination, wait up to 2s, escalate to a hard kill, wait up to
// 1s more.
func (c *Client) Close(_ context.Context) error {
	var closeErr error
	c.closeOnce.Do(func() {
		_ = c.transport.closeStdin()
		if c.cmd == nil || c.cmd.Process == nil {
			return
		}
		_ = terminate(c.cmd)
		if c.waitExited(2 * time.Second) {
			return
		}
		_ = c.cmd.Process.Kill()
		c.waitExited(1 * time.Second)
	})
	return closeErr
}

func (c *Client) waitExited(timeout time.Duration) bool {
	select {
	case <-c.exited:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (c *Client) waitForExit() {
	_ = c.cmd.Wait()
	close(c.exited)
	c.publishState("disconnected")
}

func (c *Client) publishState(state string) {
	if c.connState == nil {
		return
	}
	select {
	case c.connState <- state:
	default:
	}
}

// readStdout scans stdout for newline-framed messages, enforcing the
// capped accumulation buffer from spec §4.D.
func (c *Client) readStdout(r io.Reader) {
	var buf []byte
	chunk := make([]byte, 32*1024)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			for {
				idx := bytes.IndexByte(buf, '\n')
				if idx < 0 {
					break
				}
				line := bytes.TrimRight(buf[:idx], "\r")
				msg := append([]byte(nil), line...)
				buf = buf[idx+1:]
				c.base.HandleMessage(c.ctx, msg)
			}
			if len(buf) > maxBufferBytes {
				c.base.SetError(corerr.New(corerr.KindBufferLimitExceeded, "stdio", "stdout buffer exceeded 128MiB cap with no newline"))
				return
			}
		}
		if err != nil {
			if err == io.EOF {
				c.onStdoutClosed()
			} else {
				c.base.SetError(corerr.Wrap(corerr.KindTransportIO, "stdio", "stdout read error", err))
			}
			return
		}
	}
}

func (c *Client) onStdoutClosed() {
	c.stderrMu.Lock()
	tail := c.stderrTail
	c.stderrMu.Unlock()
	c.base.SetError(corerr.New(corerr.KindServerClosedOutputStream, "stdio", "server closed stdout: "+tail))
}

// readStderr streams stderr line-by-line to the optional logs channel and
// retains the most recent text so an unexpected stdout EOF can report it.
func (c *Client) readStderr(r io.Reader) {
	var buf []byte
	chunk := make([]byte, 4096)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			for {
				idx := bytes.IndexByte(buf, '\n')
				if idx < 0 {
					break
				}
				line := string(bytes.TrimRight(buf[:idx], "\r"))
				buf = buf[idx+1:]
				c.appendStderr(line)
				if c.logs != nil {
					select {
					case c.logs <- line:
					default:
					}
				}
			}
		}
		if err != nil {
			if len(buf) > 0 {
				c.appendStderr(string(buf))
			}
			return
		}
	}
}

const stderrTailCap = 8 * 1024

func (c *Client) appendStderr(line string) {
	c.stderrMu.Lock()
	defer c.stderrMu.Unlock()
	if c.stderrTail != "" {
		c.stderrTail += "\n"
	}
	c.stderrTail += line
	if len(c.stderrTail) > stderrTailCap {
		c.stderrTail = c.stderrTail[len(c.stderrTail)-stderrTailCap:]
	}
}

// LastStderr returns the most recently captured stderr text.
func (c *Client) LastStderr() string {
	c.stderrMu.Lock()
	defer c.stderrMu.Unlock()
	return c.stderrTail
}

// Exited is closed once the child process has been waited on, letting a
// caller observe an out-of-band disconnect without polling.
func (c *Client) Exited() <-chan struct{} {
	return c.exited
}

// CancelPending retires the pending request matching id, for an inbound
// "notifications/cancelled" or a caller-side cancellation.
func (c *Client) CancelPending(id interface{}) bool {
	return c.base.CancelPending(id)
}

func defaultPathProbe(ctx context.Context) (string, error) {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	cmd := exec.CommandContext(ctx, shell, "-l", "-c", "env | grep '^PATH='")
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	line := strings.TrimSpace(string(out))
	return strings.TrimPrefix(line, "PATH="), nil
}

// resolvePath merges the login shell's PATH, the current process's PATH,
// and a fixed fallback, de-duplicating while preserving order. A probe
// failure is non-fatal - it simply contributes nothing to the merge.
func (c *Client) resolvePath(ctx context.Context) string {
	shellPath, _ := c.pathProbe(ctx)
	return mergePath(shellPath, os.Getenv("PATH"))
}

func mergePath(shellPath, processPath string) string {
	seen := make(map[string]bool)
	var parts []string
	for _, source := range []string{shellPath, processPath, fallbackPath} {
		for _, p := range strings.Split(source, ":") {
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ":")
}

func buildEnv(base []string, overrides map[string]string, mergedPath string) []string {
	env := make(map[string]string, len(base)+len(overrides)+1)
	for _, kv := range base {
		if idx := strings.IndexByte(kv, '='); idx >= 0 {
			env[kv[:idx]] = kv[idx+1:]
		}
	}
	env["PATH"] = mergedPath
	for k, v := range overrides {
		env[k] = v
	}
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	return result
}
