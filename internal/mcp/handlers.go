// ABOUTME: MCP tool handler implementations for the finance assistant server
// ABOUTME: Contains handler implementations with proper error handling for all 9 tools
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jvsazevedo/open-finance-buddy/internal/memory"
	"github.com/jvsazevedo/open-finance-buddy/internal/models"
	"github.com/jvsazevedo/open-finance-buddy/internal/storage/sqlite"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	mem      *memory.Service
	expenses *sqlite.ExpenseStore
	users    *sqlite.UserStore
}

// RecordTurn handles the record_turn tool
func (h *Handlers) RecordTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireInt("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id argument is required and must be a number"), nil
	}

	roleStr, err := request.RequireString("role")
	if err != nil {
		return mcp.NewToolResultError("role argument is required and must be a string"), nil
	}

	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content argument is required and must be a string"), nil
	}

	topicSummary := request.GetString("topic_summary", "")

	messageID, err := h.mem.RecordTurn(ctx, int64(userID), models.Role(roleStr), content, topicSummary)
	indexed := true
	if err != nil {
		var partial *memory.PartialWriteError
		if errors.As(err, &partial) {
			// The turn is durable; only its embedding is missing until repair.
			log.Printf("Warning: turn %d stored without embedding: %v", partial.MessageID, partial.Err)
			indexed = false
		} else {
			return mcp.NewToolResultError(fmt.Sprintf("failed to record turn: %v", err)), nil
		}
	}

	response := map[string]interface{}{
		"message_id": messageID,
		"indexed":    indexed,
	}

	return marshalResponse(response)
}

// RecentConversations handles the recent_conversations tool
func (h *Handlers) RecentConversations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireInt("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id argument is required and must be a number"), nil
	}

	limit := request.GetInt("limit", memory.DefaultRecentLimit)

	turns, err := h.mem.RecentForUser(ctx, int64(userID), limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch recent turns: %v", err)), nil
	}

	return marshalResponse(map[string]interface{}{
		"turns": formatTurns(turns),
	})
}

// SimilarConversations handles the similar_conversations tool
func (h *Handlers) SimilarConversations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireInt("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id argument is required and must be a number"), nil
	}

	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	limit := request.GetInt("limit", memory.DefaultSimilarLimit)

	turns, err := h.mem.SimilarForUser(ctx, query, int64(userID), limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("similarity search failed: %v", err)), nil
	}

	return marshalResponse(map[string]interface{}{
		"turns": formatTurns(turns),
	})
}

// SimilarRecentConversations handles the similar_recent_conversations tool
func (h *Handlers) SimilarRecentConversations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireInt("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id argument is required and must be a number"), nil
	}

	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	limit := request.GetInt("limit", memory.DefaultSimilarLimit)
	days := request.GetInt("time_limit_days", memory.DefaultTimeLimitDays)

	turns, err := h.mem.SimilarRecentForUser(ctx, query, int64(userID), limit, days)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("similarity search failed: %v", err)), nil
	}

	return marshalResponse(map[string]interface{}{
		"turns": formatTurns(turns),
	})
}

// SimilarByTopic handles the similar_by_topic tool
func (h *Handlers) SimilarByTopic(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	keywords := stringArrayArg(request, "topic_keywords")
	if len(keywords) == 0 {
		return mcp.NewToolResultError("topic_keywords argument is required and must be a string array"), nil
	}

	userID := request.GetInt("user_id", 0)
	limit := request.GetInt("limit", memory.DefaultSimilarLimit)

	turns, err := h.mem.SimilarByTopic(ctx, query, keywords, int64(userID), limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("topic search failed: %v", err)), nil
	}

	return marshalResponse(map[string]interface{}{
		"turns": formatTurns(turns),
	})
}

// GetMonthlyIncome handles the get_monthly_income tool
func (h *Handlers) GetMonthlyIncome(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireInt("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id argument is required and must be a number"), nil
	}

	income, found, err := h.users.GetMonthlyIncome(int64(userID))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch monthly income: %v", err)), nil
	}

	return marshalResponse(map[string]interface{}{
		"monthly_income": income,
		"found":          found,
	})
}

// GetRecentExpenses handles the get_recent_expenses tool
func (h *Handlers) GetRecentExpenses(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireInt("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id argument is required and must be a number"), nil
	}

	expenses, err := h.expenses.GetRecent(int64(userID))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch expenses: %v", err)), nil
	}

	return marshalResponse(map[string]interface{}{
		"expenses": formatExpenses(expenses),
	})
}

// GetExpensesByMonth handles the get_expenses_by_month tool
func (h *Handlers) GetExpensesByMonth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireInt("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id argument is required and must be a number"), nil
	}

	month, err := request.RequireInt("month")
	if err != nil {
		return mcp.NewToolResultError("month argument is required and must be a number"), nil
	}
	if month < 1 || month > 12 {
		return mcp.NewToolResultError("month must be between 1 and 12"), nil
	}

	expenses, err := h.expenses.GetByMonth(int64(userID), month)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch expenses: %v", err)), nil
	}

	return marshalResponse(map[string]interface{}{
		"expenses": formatExpenses(expenses),
	})
}

// AddExpense handles the add_expense tool
func (h *Handlers) AddExpense(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireInt("user_id")
	if err != nil {
		return mcp.NewToolResultError("user_id argument is required and must be a number"), nil
	}

	label, err := request.RequireString("label")
	if err != nil {
		return mcp.NewToolResultError("label argument is required and must be a string"), nil
	}

	value, err := request.RequireFloat("value")
	if err != nil {
		return mcp.NewToolResultError("value argument is required and must be a number"), nil
	}

	expense := &models.Expense{
		UserID:       int64(userID),
		Label:        label,
		Value:        value,
		Currency:     request.GetString("currency", "BRL"),
		Recurrent:    request.GetBool("recurrent", false),
		Installments: request.GetInt("installments", 0),
	}

	if raw := request.GetString("expiring_date", ""); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return mcp.NewToolResultError("expiring_date must be formatted as YYYY-MM-DD"), nil
		}
		expense.ExpiringDate = parsed
	}

	expenseID, err := h.expenses.Add(expense)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add expense: %v", err)), nil
	}

	return marshalResponse(map[string]interface{}{
		"expense_id": expenseID,
	})
}

// formatTurns converts stored turns into the wire shape shared by all memory tools
func formatTurns(turns []models.ConversationTurn) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(turns))
	for _, turn := range turns {
		out = append(out, map[string]interface{}{
			"message_id":    turn.ID,
			"user_id":       turn.UserID,
			"role":          string(turn.Role),
			"content":       turn.Content,
			"topic_summary": turn.TopicSummary,
			"created_at":    turn.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

func formatExpenses(expenses []models.Expense) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(expenses))
	for _, e := range expenses {
		entry := map[string]interface{}{
			"expense_id":   e.ID,
			"label":        e.Label,
			"value":        e.Value,
			"currency":     e.Currency,
			"recurrent":    e.Recurrent,
			"installments": e.Installments,
		}
		if !e.ExpiringDate.IsZero() {
			entry["expiring_date"] = e.ExpiringDate.Format("2006-01-02")
		}
		out = append(out, entry)
	}
	return out
}

// stringArrayArg extracts a string array argument from the raw request arguments
func stringArrayArg(request mcp.CallToolRequest, key string) []string {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil
	}
	raw, exists := args[key]
	if !exists {
		return nil
	}
	arr, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	result := make([]string, 0, len(arr))
	for _, item := range arr {
		if str, ok := item.(string); ok {
			result = append(result, str)
		}
	}
	return result
}

func marshalResponse(response map[string]interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
