// ABOUTME: Shared wiring for CLI commands
// ABOUTME: Opens the database and assembles stores, memory service, and agent
package commands

import (
	"fmt"

	"github.com/joho/godotenv"

	"github.com/jvsazevedo/open-finance-buddy/internal/agent"
	"github.com/jvsazevedo/open-finance-buddy/internal/config"
	"github.com/jvsazevedo/open-finance-buddy/internal/llm"
	"github.com/jvsazevedo/open-finance-buddy/internal/memory"
	"github.com/jvsazevedo/open-finance-buddy/internal/storage/sqlite"
)

// runtime bundles everything a command can need. Fields beyond cfg, db,
// and the stores are populated lazily because they require an OpenAI key.
type runtime struct {
	cfg      *config.Config
	db       *sqlite.DB
	turns    *sqlite.ConversationStore
	index    *sqlite.EmbeddingIndex
	expenses *sqlite.ExpenseStore
	users    *sqlite.UserStore
}

// openRuntime loads .env and config, then opens the database
func openRuntime() (*runtime, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &runtime{
		cfg:      cfg,
		db:       db,
		turns:    sqlite.NewConversationStore(db),
		index:    sqlite.NewEmbeddingIndexWithDimension(db, cfg.VectorDimension),
		expenses: sqlite.NewExpenseStore(db),
		users:    sqlite.NewUserStore(db),
	}, nil
}

func (r *runtime) close() {
	_ = r.db.Close()
}

// openAI builds the LLM client; fails without an API key
func (r *runtime) openAI() (*llm.OpenAIClient, error) {
	client, err := llm.NewOpenAIClient(r.cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing OpenAI client: %w", err)
	}
	return client, nil
}

// memoryService wires the conversation memory on top of the LLM embedder
func (r *runtime) memoryService(client *llm.OpenAIClient) *memory.Service {
	return memory.NewService(r.turns, r.index, client)
}

// buildAgent assembles the full conversational agent
func (r *runtime) buildAgent() (*agent.Agent, error) {
	client, err := r.openAI()
	if err != nil {
		return nil, err
	}
	return agent.New(client, r.memoryService(client), r.expenses, r.users), nil
}
