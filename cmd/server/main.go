// ABOUTME: Main entry point for the buddy MCP server with stdio transport
// ABOUTME: Initializes storage, memory service, and MCP server with all tools
package main

import (
	"log"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/jvsazevedo/open-finance-buddy/internal/config"
	"github.com/jvsazevedo/open-finance-buddy/internal/llm"
	"github.com/jvsazevedo/open-finance-buddy/internal/mcp"
	"github.com/jvsazevedo/open-finance-buddy/internal/memory"
	"github.com/jvsazevedo/open-finance-buddy/internal/storage/sqlite"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	client, err := llm.NewOpenAIClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize OpenAI client: %v", err)
	}

	turns := sqlite.NewConversationStore(db)
	index := sqlite.NewEmbeddingIndexWithDimension(db, cfg.VectorDimension)
	mem := memory.NewService(turns, index, client)

	// Create MCP server
	server := mcpserver.NewMCPServer(
		"Finance Buddy Memory",
		"0.1.0",
	)

	// Register MCP tools
	mcp.RegisterTools(server, mem, sqlite.NewExpenseStore(db), sqlite.NewUserStore(db))

	// Start server with stdio transport
	log.Println("Buddy MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
