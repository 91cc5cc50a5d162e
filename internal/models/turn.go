// ABOUTME: ConversationTurn represents a single message in a user conversation
// ABOUTME: Core data structure for the finance assistant memory system
package models

import (
	"errors"
	"strings"
	"time"
)

// Role identifies who produced a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the known values
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ConversationTurn is one immutable message in a conversation.
// ID is assigned by the store on insert and never changes; it is the
// join key into the embedding index.
type ConversationTurn struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Role         Role      `json:"role"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	TopicSummary string    `json:"topic_summary"`
}

// NewConversationTurn creates a turn with validation.
// CreatedAt is left zero; the store fills it at write time.
func NewConversationTurn(userID int64, role Role, content, topicSummary string) (*ConversationTurn, error) {
	if userID <= 0 {
		return nil, errors.New("user id must be positive")
	}
	if !role.Valid() {
		return nil, errors.New("role must be user or assistant")
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("content cannot be empty")
	}
	return &ConversationTurn{
		UserID:       userID,
		Role:         role,
		Content:      content,
		TopicSummary: topicSummary,
	}, nil
}
