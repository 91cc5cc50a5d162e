// ABOUTME: Tests for MCP tool handlers against in-memory stores
// ABOUTME: Verifies argument validation and JSON response shapes
package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jvsazevedo/open-finance-buddy/internal/memory"
	"github.com/jvsazevedo/open-finance-buddy/internal/models"
	"github.com/jvsazevedo/open-finance-buddy/internal/storage/sqlite"
)

const testDimension = 4

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vec := make([]float64, testDimension)
	for i, b := range []byte(text) {
		vec[i%testDimension] += float64(b)
	}
	return vec, nil
}

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()

	db, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	turns := sqlite.NewConversationStore(db)
	index := sqlite.NewEmbeddingIndexWithDimension(db, testDimension)
	mem := memory.NewService(turns, index, stubEmbedder{})

	return &Handlers{
		mem:      mem,
		expenses: sqlite.NewExpenseStore(db),
		users:    sqlite.NewUserStore(db),
	}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()

	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result.Content)
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload
}

func TestRecordTurnAndRecall(t *testing.T) {
	h := newTestHandlers(t)
	ctx := context.Background()

	result, err := h.RecordTurn(ctx, callRequest(map[string]any{
		"user_id":       float64(1),
		"role":          "user",
		"content":       "how much did I spend on groceries",
		"topic_summary": "groceries",
	}))
	if err != nil {
		t.Fatalf("RecordTurn returned error: %v", err)
	}
	payload := decodeResult(t, result)
	if payload["message_id"].(float64) <= 0 {
		t.Errorf("expected positive message_id, got %v", payload["message_id"])
	}
	if payload["indexed"] != true {
		t.Errorf("expected turn to be indexed, got %v", payload["indexed"])
	}

	result, err = h.RecentConversations(ctx, callRequest(map[string]any{
		"user_id": float64(1),
	}))
	if err != nil {
		t.Fatalf("RecentConversations returned error: %v", err)
	}
	payload = decodeResult(t, result)
	turns := payload["turns"].([]interface{})
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	turn := turns[0].(map[string]interface{})
	if turn["topic_summary"] != "groceries" {
		t.Errorf("unexpected topic_summary: %v", turn["topic_summary"])
	}
}

func TestRecordTurnRejectsMissingArguments(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.RecordTurn(context.Background(), callRequest(map[string]any{
		"user_id": float64(1),
		"role":    "user",
	}))
	if err != nil {
		t.Fatalf("RecordTurn returned error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for missing content argument")
	}
}

func TestSimilarConversationsScopedToUser(t *testing.T) {
	h := newTestHandlers(t)
	ctx := context.Background()

	for userID, content := range map[int64]string{
		1: "planning a trip to Lisbon",
		2: "planning a trip to Tokyo",
	} {
		if _, err := h.mem.RecordTurn(ctx, userID, models.RoleUser, content, "travel"); err != nil {
			t.Fatalf("failed to seed turn: %v", err)
		}
	}

	result, err := h.SimilarConversations(ctx, callRequest(map[string]any{
		"user_id": float64(1),
		"query":   "trip planning",
	}))
	if err != nil {
		t.Fatalf("SimilarConversations returned error: %v", err)
	}
	payload := decodeResult(t, result)
	turns := payload["turns"].([]interface{})
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn for user 1, got %d", len(turns))
	}
	turn := turns[0].(map[string]interface{})
	if turn["user_id"].(float64) != 1 {
		t.Errorf("expected turn from user 1, got %v", turn["user_id"])
	}
}

func TestSimilarByTopicRequiresKeywords(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.SimilarByTopic(context.Background(), callRequest(map[string]any{
		"query": "anything",
	}))
	if err != nil {
		t.Fatalf("SimilarByTopic returned error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for missing topic_keywords")
	}
}

func TestExpenseTools(t *testing.T) {
	h := newTestHandlers(t)
	ctx := context.Background()

	result, err := h.AddExpense(ctx, callRequest(map[string]any{
		"user_id":       float64(7),
		"label":         "Rent",
		"value":         float64(1800),
		"currency":      "BRL",
		"recurrent":     true,
		"expiring_date": "2026-09-05",
	}))
	if err != nil {
		t.Fatalf("AddExpense returned error: %v", err)
	}
	payload := decodeResult(t, result)
	if payload["expense_id"].(float64) <= 0 {
		t.Errorf("expected positive expense_id, got %v", payload["expense_id"])
	}

	result, err = h.GetExpensesByMonth(ctx, callRequest(map[string]any{
		"user_id": float64(7),
		"month":   float64(9),
	}))
	if err != nil {
		t.Fatalf("GetExpensesByMonth returned error: %v", err)
	}
	payload = decodeResult(t, result)
	expenses := payload["expenses"].([]interface{})
	if len(expenses) != 1 {
		t.Fatalf("expected 1 expense in September, got %d", len(expenses))
	}
	entry := expenses[0].(map[string]interface{})
	if entry["label"] != "Rent" {
		t.Errorf("unexpected label: %v", entry["label"])
	}

	result, err = h.GetExpensesByMonth(ctx, callRequest(map[string]any{
		"user_id": float64(7),
		"month":   float64(13),
	}))
	if err != nil {
		t.Fatalf("GetExpensesByMonth returned error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for month out of range")
	}
}

func TestGetMonthlyIncome(t *testing.T) {
	h := newTestHandlers(t)
	ctx := context.Background()

	result, err := h.GetMonthlyIncome(ctx, callRequest(map[string]any{
		"user_id": float64(3),
	}))
	if err != nil {
		t.Fatalf("GetMonthlyIncome returned error: %v", err)
	}
	payload := decodeResult(t, result)
	if payload["found"] != false {
		t.Errorf("expected found=false before any param is stored, got %v", payload["found"])
	}

	if _, err := h.users.AddParam(3, models.ParamMonthlyIncome, "5200.50"); err != nil {
		t.Fatalf("failed to store param: %v", err)
	}

	result, err = h.GetMonthlyIncome(ctx, callRequest(map[string]any{
		"user_id": float64(3),
	}))
	if err != nil {
		t.Fatalf("GetMonthlyIncome returned error: %v", err)
	}
	payload = decodeResult(t, result)
	if payload["found"] != true {
		t.Fatalf("expected found=true, got %v", payload["found"])
	}
	if payload["monthly_income"].(float64) != 5200.50 {
		t.Errorf("unexpected income: %v", payload["monthly_income"])
	}
}
