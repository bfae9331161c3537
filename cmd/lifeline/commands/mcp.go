// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Exposes similarity, cross-reference, pattern and tag tools to LLM agents via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/harper/lifeline/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs lifeline as an MCP (Model Context Protocol) server, enabling
LLM agents like Claude to find similar events, analyze relationships,
detect patterns and suggest tags via stdio.

Configure in Claude Desktop's config file to enable lifeline tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  lifeline mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "lifeline": {
  #       "command": "lifeline",
  #       "args": ["mcp", "--db", "/path/to/lifeline.db"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	engine, store, err := openEngine()
	if err != nil {
		return err
	}

	server := mcpserver.NewMCPServer(
		"Lifeline",
		versionInfo.Version,
	)
	mcp.RegisterTools(server, engine)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("Lifeline MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}
		if err := store.Close(); err != nil {
			log.Printf("Warning: Error closing storage: %v", err)
		}
		if !quiet {
			log.Println("Shutdown complete")
		}

	case err := <-serverErr:
		_ = store.Close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
