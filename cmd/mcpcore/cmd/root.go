// Package cmd provides the mcpcore CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mcpcore",
	Short: "mcpcore connects to an MCP server for manual smoke testing",
	Long: `mcpcore is a client for the Model Context Protocol.

It connects to a server over stdio or streamable HTTP, runs the
initialize handshake, lists what the server offers, and prints what it
receives - notifications, logs, and progress - until interrupted.

Configuration:
  Settings are read from mcpcore.yaml in the current directory or
  $HOME/.mcpcore/, overridable with MCPCORE_-prefixed environment
  variables and command flags, in that order of precedence.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() { initViper(cfgFile) })
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./mcpcore.yaml)")
	rootCmd.PersistentFlags().Duration("request-timeout", defaultConfig().RequestTimeout, "per-request timeout")
	rootCmd.PersistentFlags().String("log-level", defaultConfig().LogLevel, "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("request_timeout", rootCmd.PersistentFlags().Lookup("request-timeout"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}
