package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/viant/mcpcore/client"
	"github.com/viant/mcpcore/transport/client/stdio"
)

var stdioCmd = &cobra.Command{
	Use:   "stdio -- <command> [args...]",
	Short: "Connect to an MCP server launched as a child process over stdio",
	Long: `stdio starts <command> [args...], speaks newline-delimited JSON-RPC
over its stdin/stdout, and runs the initialize handshake.

Example:
  mcpcore stdio -- npx -y @modelcontextprotocol/server-everything`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStdio,
}

func init() {
	rootCmd.AddCommand(stdioCmd)
}

func runStdio(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	hc := client.New(client.WithRequestTimeout(cfg.RequestTimeout))

	opts := []stdio.Option{stdio.WithHandler(hc)}
	if len(args) > 1 {
		opts = append(opts, stdio.WithArguments(args[1:]...))
	}
	t, err := stdio.New(args[0], opts...)
	if err != nil {
		return err
	}
	defer t.Close(context.Background())

	hc.Attach(t)
	return runSession(ctx, hc)
}
