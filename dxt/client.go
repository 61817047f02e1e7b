package dxt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
	"github.com/viant/mcpcore"
	"github.com/viant/mcpcore/corerr"
	"github.com/viant/mcpcore/transport"
	"github.com/viant/mcpcore/transport/client/base"
	"github.com/viant/scy/cred/secret"
)

// Client launches a DXT-packaged MCP server through a login shell and
// speaks newline-delimited JSON-RPC over the resulting pipeline, driving the
// manifest-resolved command through a gosh runner (runner.AsPipeline(),
// local.New()); transport/client/stdio.Client uses os/exec instead.
type Client struct {
	base   *base.Client
	runner runner.Runner

	manifest *Manifest
	cfg      MCPConfig

	// secrets maps environment variable names to scy secret resources
	// whose values are sensitive; each is resolved at launch time and set
	// as that variable instead of being substituted from plaintext - preserved from the teacher's SSH-credential field,
	// repurposed here for per-field extension secrets.
	secrets map[string]secret.Resource

	ctx context.Context
}

// Launch parses, validates, and starts a DXT extension's server process.
func Launch(ctx context.Context, manifestData []byte, dirName string, subCtx SubstitutionContext, secrets map[string]secret.Resource) (*Client, error) {
	manifest, err := ParseManifest(manifestData)
	if err != nil {
		return nil, err
	}
	if manifest.Server.Type != "" && manifest.Server.Type != "node" && manifest.Server.Type != "python" && manifest.Server.Type != "binary" {
		return nil, corerr.New(corerr.KindDXT, "dxt", fmt.Sprintf("unsupported server type %q", manifest.Server.Type))
	}

	cfg, err := SubstituteMCPConfig(manifest.Server.MCPConfig, subCtx, manifest)
	if err != nil {
		return nil, err
	}

	resolved, err := resolveSecrets(ctx, secrets)
	if err != nil {
		return nil, err
	}
	for k, v := range resolved {
		cfg.Env[k] = v
	}

	c := &Client{
		manifest: manifest,
		cfg:      cfg,
		secrets:  secrets,
		ctx:      ctx,
	}
	c.base = &base.Client{
		RoundTrips: transport.NewRoundTrips(20),
		RunTimeout: 15 * time.Minute,
		Handler:    &base.Handler{},
		Logger:     jsonrpc.DefaultLogger,
	}
	if err := c.start(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func resolveSecrets(ctx context.Context, secrets map[string]secret.Resource) (map[string]string, error) {
	if len(secrets) == 0 {
		return nil, nil
	}
	store := secret.New()
	resolved := make(map[string]string, len(secrets))
	for envVar, resource := range secrets {
		cred, err := store.GetCredentials(ctx, string(resource))
		if err != nil {
			return nil, corerr.Wrap(corerr.KindDXT, "dxt", fmt.Sprintf("failed to resolve secret for %s", envVar), err)
		}
		resolved[envVar] = cred.Password
	}
	return resolved, nil
}

func (c *Client) start(ctx context.Context) error {
	c.runner = local.New(runner.AsPipeline())
	c.base.Transport = &Transport{client: c.runner}

	cmd := c.cfg.Command
	if len(c.cfg.Args) > 0 {
		cmd = fmt.Sprintf("%s %s", c.cfg.Command, strings.Join(c.cfg.Args, " "))
	}
	go c.run(ctx, cmd)
	return nil
}

func (c *Client) run(ctx context.Context, cmd string) {
	output, code, err := c.runner.Run(ctx, cmd, runner.WithEnvironment(c.cfg.Env), runner.WithListener(c.stdoutListener()))
	if err != nil {
		c.base.SetError(corerr.Wrap(corerr.KindDXT, "dxt", "extension process failed", err))
		return
	}
	if code != 0 {
		c.base.SetError(corerr.New(corerr.KindDXT, "dxt", fmt.Sprintf("extension process exited with code %d: %s", code, output)))
	}
}

// stdoutListener buffers the runner's incremental stdout chunks into
// newline-delimited JSON-RPC messages, following the teacher's
// gosh-listener pattern exactly.
func (c *Client) stdoutListener() runner.Listener {
	var builder strings.Builder
	return func(stdout string, hasMore bool) {
		for {
			idx := strings.Index(stdout, "\n")
			if idx == -1 {
				builder.WriteString(stdout)
				return
			}
			builder.WriteString(stdout[:idx])
			data := []byte(builder.String())
			builder.Reset()
			c.base.HandleMessage(c.ctx, data)
			stdout = stdout[idx+1:]
		}
	}
}

func (c *Client) Notify(ctx context.Context, request *jsonrpc.Notification) error {
	return c.base.Notify(ctx, request)
}

func (c *Client) Send(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	return c.base.Send(ctx, request)
}

// CancelPending retires one of our own pending requests.
func (c *Client) CancelPending(id interface{}) bool {
	return c.base.CancelPending(id)
}

// Manifest returns the launched extension's parsed manifest.
func (c *Client) Manifest() *Manifest {
	return c.manifest
}
