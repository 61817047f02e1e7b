package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/viant/mcpcore/client"
	"github.com/viant/mcpcore/transport/client/http/streamable"
)

var httpCmd = &cobra.Command{
	Use:   "http <url>",
	Short: "Connect to an MCP server over streamable HTTP",
	Long: `http connects to the streamable-HTTP endpoint at <url>, opens its
SSE stream if the server offers one, and runs the initialize handshake.

Example:
  mcpcore http http://localhost:8080/mcp`,
	Args: cobra.ExactArgs(1),
	RunE: runHTTP,
}

func init() {
	rootCmd.AddCommand(httpCmd)
}

func runHTTP(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	hc := client.New(client.WithRequestTimeout(cfg.RequestTimeout))

	t, err := streamable.New(ctx, args[0], streamable.WithHandler(hc))
	if err != nil {
		return err
	}
	defer t.Close(context.Background())

	hc.Attach(t)
	return runSession(ctx, hc)
}
