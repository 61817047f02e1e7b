package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/viant/mcpcore/client"
)

// runSession drives a connected client.Client through an initialize
// handshake, prints what the server offers, streams log and progress
// notifications to stdout (error reports to stderr), and blocks until
// interrupted or the transport exits.
//
// Grounded on Sentinel-Gate's cmd/sentinel-gate/cmd/run.go: start a
// background goroutine draining a signal channel, run the main work, wait
// for either completion or an interrupt.
func runSession(ctx context.Context, c *client.Client) error {
	if err := c.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer c.Disconnect(context.Background())

	info := c.ServerInfo()
	caps := c.ServerCapabilities()
	fmt.Printf("connected to %s %s\n", info.Name, info.Version)

	if caps.Tools != nil {
		result, err := c.ListTools(ctx, client.ListToolsParams{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "list tools: %v\n", err)
		} else {
			fmt.Printf("tools (%d):\n", len(result.Tools))
			for _, tool := range result.Tools {
				fmt.Printf("  %s - %s\n", tool.Name, tool.Description)
			}
		}
	}
	if caps.Resources != nil {
		result, err := c.ListResources(ctx, client.ListResourcesParams{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "list resources: %v\n", err)
		} else {
			fmt.Printf("resources (%d):\n", len(result.Resources))
			for _, r := range result.Resources {
				fmt.Printf("  %s - %s\n", r.URI, r.Name)
			}
		}
	}
	if caps.Prompts != nil {
		result, err := c.ListPrompts(ctx, client.ListPromptsParams{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "list prompts: %v\n", err)
		} else {
			fmt.Printf("prompts (%d):\n", len(result.Prompts))
			for _, p := range result.Prompts {
				fmt.Printf("  %s - %s\n", p.Name, p.Description)
			}
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	fmt.Println("listening for notifications, press ctrl-c to exit")
	for {
		select {
		case <-sigCh:
			return nil
		case s := <-c.ConnectionState():
			if s == client.StateDisconnected {
				return nil
			}
		case entry := <-c.Logs():
			fmt.Printf("[%s] %s\n", entry.Level, entry.Data)
		case p := <-c.Progress():
			fmt.Printf("progress %v: %v/%v %s\n", p.ProgressToken, p.Progress, p.Total, p.Message)
		case jerr := <-c.Errors():
			fmt.Fprintf(os.Stderr, "server error: %s\n", jerr.Message)
		case err := <-c.StreamErrors():
			fmt.Fprintf(os.Stderr, "transport error: %v\n", err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
