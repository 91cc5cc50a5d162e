// ABOUTME: MCP tool definitions and registration for the finance assistant
// ABOUTME: Exposes conversation memory and the expense ledger as agent tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/jvsazevedo/open-finance-buddy/internal/memory"
	"github.com/jvsazevedo/open-finance-buddy/internal/storage/sqlite"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, mem *memory.Service, expenses *sqlite.ExpenseStore, users *sqlite.UserStore) *Handlers {
	handlers := &Handlers{
		mem:      mem,
		expenses: expenses,
		users:    users,
	}

	userIDProp := map[string]interface{}{
		"type":        "number",
		"description": "ID of the user the operation is scoped to",
	}

	// 1. record_turn - store one conversation turn with its embedding
	server.AddTool(mcp.Tool{
		Name:        "record_turn",
		Description: "Store one conversation turn (user or assistant) in semantic memory.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": userIDProp,
				"role": map[string]interface{}{
					"type":        "string",
					"description": "Who produced the turn: user or assistant",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Raw text of the turn",
				},
				"topic_summary": map[string]interface{}{
					"type":        "string",
					"description": "Short label for the turn's subject, e.g. groceries",
				},
			},
			Required: []string{"user_id", "role", "content"},
		},
	}, handlers.RecordTurn)

	// 2. recent_conversations - newest turns by insertion order
	server.AddTool(mcp.Tool{
		Name:        "recent_conversations",
		Description: "Fetch the user's most recent conversation turns, newest first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": userIDProp,
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum turns to return (default: 10)",
					"default":     10,
				},
			},
			Required: []string{"user_id"},
		},
	}, handlers.RecentConversations)

	// 3. similar_conversations - semantic search scoped to the user
	server.AddTool(mcp.Tool{
		Name:        "similar_conversations",
		Description: "Find the user's past conversation turns semantically similar to a query.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": userIDProp,
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Text to search for",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum turns to return (default: 5)",
					"default":     5,
				},
			},
			Required: []string{"user_id", "query"},
		},
	}, handlers.SimilarConversations)

	// 4. similar_recent_conversations - semantic search within a recency window
	server.AddTool(mcp.Tool{
		Name:        "similar_recent_conversations",
		Description: "Find similar conversation turns created within the last N days.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": userIDProp,
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Text to search for",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum turns to return (default: 5)",
					"default":     5,
				},
				"time_limit_days": map[string]interface{}{
					"type":        "number",
					"description": "Only consider turns newer than this many days (default: 7)",
					"default":     7,
				},
			},
			Required: []string{"user_id", "query"},
		},
	}, handlers.SimilarRecentConversations)

	// 5. similar_by_topic - semantic search filtered by topic keywords
	server.AddTool(mcp.Tool{
		Name:        "similar_by_topic",
		Description: "Find similar conversation turns whose topic summary matches any of the keywords.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Text to search for",
				},
				"topic_keywords": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Keywords matched case-insensitively against topic summaries",
				},
				"user_id": map[string]interface{}{
					"type":        "number",
					"description": "Optional user scope; omit to search across users",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum turns to return (default: 5)",
					"default":     5,
				},
			},
			Required: []string{"query", "topic_keywords"},
		},
	}, handlers.SimilarByTopic)

	// 6. get_monthly_income - latest recorded monthly income
	server.AddTool(mcp.Tool{
		Name:        "get_monthly_income",
		Description: "Look up the user's monthly income.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": userIDProp,
			},
			Required: []string{"user_id"},
		},
	}, handlers.GetMonthlyIncome)

	// 7. get_recent_expenses - newest ledger entries
	server.AddTool(mcp.Tool{
		Name:        "get_recent_expenses",
		Description: "List the user's most recent expenses, newest expiring first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": userIDProp,
			},
			Required: []string{"user_id"},
		},
	}, handlers.GetRecentExpenses)

	// 8. get_expenses_by_month - ledger entries for one month
	server.AddTool(mcp.Tool{
		Name:        "get_expenses_by_month",
		Description: "List the user's expenses for one month of the year (1-12).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": userIDProp,
				"month": map[string]interface{}{
					"type":        "number",
					"description": "Month to filter by (1-12)",
				},
			},
			Required: []string{"user_id", "month"},
		},
	}, handlers.GetExpensesByMonth)

	// 9. add_expense - record a new ledger entry
	server.AddTool(mcp.Tool{
		Name:        "add_expense",
		Description: "Record a new expense for the user.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": userIDProp,
				"label": map[string]interface{}{
					"type":        "string",
					"description": "Short name of the expense, e.g. Rent",
				},
				"value": map[string]interface{}{
					"type":        "number",
					"description": "Amount spent",
				},
				"currency": map[string]interface{}{
					"type":        "string",
					"description": "Currency code, e.g. BRL",
				},
				"recurrent": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the expense repeats every month",
				},
				"installments": map[string]interface{}{
					"type":        "number",
					"description": "Number of installments, 0 for none",
				},
				"expiring_date": map[string]interface{}{
					"type":        "string",
					"description": "Due date as YYYY-MM-DD, optional",
				},
			},
			Required: []string{"user_id", "label", "value"},
		},
	}, handlers.AddExpense)

	return handlers
}
