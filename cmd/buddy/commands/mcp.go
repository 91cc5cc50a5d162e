// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents like Claude to use buddy via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/jvsazevedo/open-finance-buddy/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs buddy as an MCP (Model Context Protocol) server, enabling LLM
agents like Claude to record conversations, recall memory, and manage
expenses via stdio.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  buddy mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "buddy": {
  #       "command": "buddy",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}

	client, err := rt.openAI()
	if err != nil {
		rt.close()
		return err
	}

	server := mcpserver.NewMCPServer(
		"Finance Buddy Memory",
		"0.1.0",
	)

	mcp.RegisterTools(server, rt.memoryService(client), rt.expenses, rt.users)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("Buddy MCP server starting on stdio...")
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}

		rt.close()

		if !quiet {
			log.Println("Shutdown complete")
		}

	case err := <-serverErr:
		rt.close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
