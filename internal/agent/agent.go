// ABOUTME: Finance assistant agent combining chat, tools, and conversation memory
// ABOUTME: Records every turn through the memory service and weaves recall into the prompt
package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jvsazevedo/open-finance-buddy/internal/memory"
	"github.com/jvsazevedo/open-finance-buddy/internal/models"
	"github.com/jvsazevedo/open-finance-buddy/internal/storage/sqlite"
)

// maxToolRounds bounds the tool-call loop for a single user message
const maxToolRounds = 5

// ChatClient is the LLM capability the agent needs
type ChatClient interface {
	Chat(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionMessage, error)
	SummarizeTopic(ctx context.Context, text string) (string, error)
}

// Agent answers finance questions for one user at a time, using the
// expense ledger tools and semantic conversation memory
type Agent struct {
	llm      ChatClient
	mem      *memory.Service
	expenses *sqlite.ExpenseStore
	users    *sqlite.UserStore
}

// New creates an agent over the given collaborators
func New(llm ChatClient, mem *memory.Service, expenses *sqlite.ExpenseStore, users *sqlite.UserStore) *Agent {
	return &Agent{
		llm:      llm,
		mem:      mem,
		expenses: expenses,
		users:    users,
	}
}

// Respond handles one user message: records it, assembles context from
// recent similar conversations, runs the tool-call loop, records the
// assistant reply, and returns it.
func (a *Agent) Respond(ctx context.Context, userID int64, message string) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("user id must be positive, got %d", userID)
	}
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("message cannot be empty")
	}

	topic := a.summarize(ctx, message)

	if _, err := a.mem.RecordTurn(ctx, userID, models.RoleUser, message, topic); err != nil {
		var partial *memory.PartialWriteError
		if !errors.As(err, &partial) {
			return "", fmt.Errorf("recording user turn: %w", err)
		}
		// Row is durable; the repair pass will re-embed it
		log.Printf("Warning: turn %d stored without embedding: %v", partial.MessageID, partial.Err)
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}
	if recall := a.recallContext(ctx, userID, message); recall != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: recall,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	reply, err := a.runToolLoop(ctx, userID, messages)
	if err != nil {
		return "", err
	}

	if _, err := a.mem.RecordTurn(ctx, userID, models.RoleAssistant, reply, topic); err != nil {
		var partial *memory.PartialWriteError
		if !errors.As(err, &partial) {
			return "", fmt.Errorf("recording assistant turn: %w", err)
		}
		log.Printf("Warning: turn %d stored without embedding: %v", partial.MessageID, partial.Err)
	}

	return reply, nil
}

// runToolLoop alternates chat completions and tool executions until the
// model produces a plain reply or the round budget runs out
func (a *Agent) runToolLoop(ctx context.Context, userID int64, messages []openai.ChatCompletionMessage) (string, error) {
	tools := chatTools()

	for round := 0; round < maxToolRounds; round++ {
		reply, err := a.llm.Chat(ctx, messages, tools)
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}

		if len(reply.ToolCalls) == 0 {
			return reply.Content, nil
		}

		messages = append(messages, reply)
		for _, call := range reply.ToolCalls {
			result, err := a.dispatchTool(ctx, userID, call)
			if err != nil {
				// The model gets the failure and can reformulate
				result = fmt.Sprintf(`{"error": %q}`, err.Error())
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}

	return "", fmt.Errorf("tool loop exceeded %d rounds without a final reply", maxToolRounds)
}

// recallContext formats recent similar conversations for the prompt.
// Retrieval failures degrade to no context rather than failing the turn.
func (a *Agent) recallContext(ctx context.Context, userID int64, message string) string {
	turns, err := a.mem.SimilarRecentForUser(ctx, message, userID,
		memory.DefaultSimilarLimit, memory.DefaultTimeLimitDays)
	if err != nil {
		log.Printf("Warning: memory recall failed: %v", err)
		return ""
	}
	if len(turns) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Relevant past conversations:\n")
	for _, turn := range turns {
		fmt.Fprintf(&b, "- [%s, %s] %s\n",
			turn.Role, turn.CreatedAt.Format("2006-01-02"), turn.Content)
	}
	return b.String()
}

// summarize asks the LLM for a topic label, falling back to a generic
// label when the call fails so recording is never blocked on it
func (a *Agent) summarize(ctx context.Context, message string) string {
	topic, err := a.llm.SummarizeTopic(ctx, message)
	if err != nil || strings.TrimSpace(topic) == "" {
		if err != nil {
			log.Printf("Warning: topic summarization failed: %v", err)
		}
		return "general"
	}
	return topic
}
