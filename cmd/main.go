// file: cmd/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dkoosis/clevermcp/cmd/server"
	"github.com/spf13/cobra"
)

// Version information, set during build via ldflags.
var (
	Version    = "0.1.8"
	commitHash = "unknown"
	buildDate  = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clevermcp",
		Short: "clevermcp is an MCP server exposing Clever Cloud information.",
		Long: `clevermcp is a Model Context Protocol server that exposes read-only
Clever Cloud information: the hosting zones, the documentation index and a
webpage-to-Markdown converter.

By default it speaks newline-delimited JSON-RPC on stdin and stdout.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String("config", "", "Path to a YAML configuration file.")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging.")

	cmd.AddCommand(serveCmd(), checkCmd(), versionCmd())
	return cmd
}

func optionsFromFlags(cmd *cobra.Command) (server.Options, error) {
	opts := server.Options{Version: Version}
	var err error
	if opts.ConfigPath, err = cmd.Flags().GetString("config"); err != nil {
		return opts, err
	}
	if opts.Debug, err = cmd.Flags().GetBool("debug"); err != nil {
		return opts, err
	}
	if cmd.Flags().Lookup("transport") != nil {
		if opts.Transport, err = cmd.Flags().GetString("transport"); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// Serve MCP on stdio or HTTP until the input ends or a signal arrives.
func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := optionsFromFlags(cmd)
			if err != nil {
				return err
			}
			return server.RunServer(opts)
		},
	}
	cmd.Flags().String("transport", "", "Transport to serve on: stdio or http. Overrides the configuration.")
	return cmd
}

// Probe the remote endpoints and report reachability.
func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check connectivity to the Clever Cloud endpoints.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := optionsFromFlags(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.RunCheck(ctx, opts, cmd.OutOrStdout())
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "clevermcp %s (commit %s, built %s)\n", Version, commitHash, buildDate)
			return err
		},
	}
}
