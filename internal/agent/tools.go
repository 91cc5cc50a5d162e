// ABOUTME: Function-calling tool definitions and dispatch for the finance agent
// ABOUTME: Wraps the expense ledger and memory retrieval as LLM tools
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jvsazevedo/open-finance-buddy/internal/memory"
	"github.com/jvsazevedo/open-finance-buddy/internal/models"
)

// Tool names exposed to the model
const (
	toolMonthlyIncome  = "search_user_monthly_income"
	toolRecentExpenses = "search_user_recent_expenses"
	toolExpenseByMonth = "search_expense_by_month"
	toolAddExpense     = "add_user_expense"
	toolRecallHistory  = "recall_similar_conversations"
)

// chatTools returns the function definitions offered on every turn
func chatTools() []openai.Tool {
	return []openai.Tool{
		functionTool(toolMonthlyIncome,
			"Look up the user's monthly income.",
			map[string]interface{}{}),
		functionTool(toolRecentExpenses,
			"List the user's most recent expenses across all months.",
			map[string]interface{}{}),
		functionTool(toolExpenseByMonth,
			"List the user's expenses for one month of the year.",
			map[string]interface{}{
				"month": map[string]interface{}{
					"type":        "number",
					"description": "Month to filter by (1-12)",
				},
			}, "month"),
		functionTool(toolAddExpense,
			"Record a new expense for the user.",
			map[string]interface{}{
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
			}, "label", "value"),
		functionTool(toolRecallHistory,
			"Search the user's past conversations for related discussions.",
			map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "What to look for in past conversations",
				},
			}, "query"),
	}
}

func functionTool(name, description string, properties map[string]interface{}, required ...string) openai.Tool {
	if required == nil {
		required = []string{}
	}
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters: map[string]interface{}{
				"type":       "object",
				"properties": properties,
				"required":   required,
			},
		},
	}
}

// dispatchTool executes one tool call for the current user and returns
// the JSON payload handed back to the model
func (a *Agent) dispatchTool(ctx context.Context, userID int64, call openai.ToolCall) (string, error) {
	switch call.Function.Name {
	case toolMonthlyIncome:
		income, ok, err := a.users.GetMonthlyIncome(userID)
		if err != nil {
			return "", err
		}
		if !ok {
			return toJSON(map[string]interface{}{"monthly_income": nil, "note": "no income recorded"})
		}
		return toJSON(map[string]interface{}{"monthly_income": income})

	case toolRecentExpenses:
		expenses, err := a.expenses.GetRecent(userID)
		if err != nil {
			return "", err
		}
		return toJSON(expenses)

	case toolExpenseByMonth:
		var args struct {
			Month int `json:"month"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return "", fmt.Errorf("parsing %s arguments: %w", call.Function.Name, err)
		}
		expenses, err := a.expenses.GetByMonth(userID, args.Month)
		if err != nil {
			return "", err
		}
		return toJSON(expenses)

	case toolAddExpense:
		var args struct {
			Label        string  `json:"label"`
			Value        float64 `json:"value"`
			Currency     string  `json:"currency"`
			Recurrent    bool    `json:"recurrent"`
			Installments int     `json:"installments"`
			ExpiringDate string  `json:"expiring_date"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return "", fmt.Errorf("parsing %s arguments: %w", call.Function.Name, err)
		}

		expense := &models.Expense{
			UserID:       userID,
			Label:        args.Label,
			Value:        args.Value,
			Currency:     args.Currency,
			Recurrent:    args.Recurrent,
			Installments: args.Installments,
		}
		if args.ExpiringDate != "" {
			expiring, err := time.Parse("2006-01-02", args.ExpiringDate)
			if err != nil {
				return "", fmt.Errorf("parsing expiring_date: %w", err)
			}
			expense.ExpiringDate = expiring
		}

		id, err := a.expenses.Add(expense)
		if err != nil {
			return "", err
		}
		return toJSON(map[string]interface{}{"status": "success", "expense_id": id})

	case toolRecallHistory:
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return "", fmt.Errorf("parsing %s arguments: %w", call.Function.Name, err)
		}
		turns, err := a.mem.SimilarForUser(ctx, args.Query, userID, memory.DefaultSimilarLimit)
		if err != nil {
			return "", err
		}
		return toJSON(turns)

	default:
		return "", fmt.Errorf("unknown tool %q", call.Function.Name)
	}
}

func toJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
