package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	vmcp "github.com/verdeck/verdeck/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server for AI agents",
		Long: `Start a Model Context Protocol (MCP) server that exposes version
management and the audit log as tools for AI agents.

The server communicates over stdin/stdout using JSON-RPC, suitable for
direct integration with MCP clients that launch it as a subprocess.
Mutations made over MCP are written to the same audit log as the HTTP
API, tagged with source "mcp".`,
		Example: `  verdeck mcp`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP()
		},
	}

	return cmd
}

func runMCP() error {
	// stdout carries the JSON-RPC stream, so log to stderr only.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	mcpSrv := vmcp.NewMCPServer(st, logger)
	return mcpSrv.ServeStdio()
}
