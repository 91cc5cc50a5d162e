// ABOUTME: Conversation turn storage operations for SQLite
// ABOUTME: Implements append and the recency/id-set lookup queries
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jvsazevedo/open-finance-buddy/internal/models"
)

// ConversationStore handles conversation turn persistence
type ConversationStore struct {
	db *DB
}

// NewConversationStore creates a new ConversationStore
func NewConversationStore(db *DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// Insert appends one turn and returns its assigned id. The row is
// durable when Insert returns. A zero CreatedAt means write time.
func (s *ConversationStore) Insert(turn *models.ConversationTurn) (int64, error) {
	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := s.db.Exec(`
		INSERT INTO conversations (user_id, role, content, created_at, topic_summary)
		VALUES (?, ?, ?, ?, ?)
	`, turn.UserID, string(turn.Role), turn.Content, createdAt, turn.TopicSummary)
	if err != nil {
		return 0, fmt.Errorf("inserting turn: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted turn id: %w", err)
	}
	return id, nil
}

// GetRecent returns up to limit turns for a user, newest first by id.
// Recency is insertion order, not wall clock. A non-positive limit
// yields an empty result.
func (s *ConversationStore) GetRecent(userID int64, limit int) ([]models.ConversationTurn, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.Query(`
		SELECT id, user_id, role, content, created_at, topic_summary
		FROM conversations
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return s.scanTurns(rows)
}

// GetByIDs looks up turns by id. Missing ids are simply absent from the
// result; order is store-native (ascending id), not the order of ids.
func (s *ConversationStore) GetByIDs(ids []int64) ([]models.ConversationTurn, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, role, content, created_at, topic_summary
		FROM conversations
		WHERE id IN (%s)
	`, placeholders(len(ids)))

	rows, err := s.db.Query(query, idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return s.scanTurns(rows)
}

// GetRecentSince intersects the given id set with rows for userID whose
// created_at is after since, newest first by id, capped at limit.
func (s *ConversationStore) GetRecentSince(ids []int64, userID int64, since time.Time, limit int) ([]models.ConversationTurn, error) {
	if len(ids) == 0 || limit <= 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, role, content, created_at, topic_summary
		FROM conversations
		WHERE id IN (%s)
		AND user_id = ?
		AND created_at > ?
		ORDER BY id DESC
		LIMIT ?
	`, placeholders(len(ids)))

	args := append(idArgs(ids), userID, since, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return s.scanTurns(rows)
}

// All returns every stored turn in ascending id order. Used by the
// cloud backup mirror.
func (s *ConversationStore) All() ([]models.ConversationTurn, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, role, content, created_at, topic_summary
		FROM conversations
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return s.scanTurns(rows)
}

// scanTurns scans rows into turns
func (s *ConversationStore) scanTurns(rows *sql.Rows) ([]models.ConversationTurn, error) {
	var turns []models.ConversationTurn

	for rows.Next() {
		var (
			turn  models.ConversationTurn
			role  string
			topic sql.NullString
		)

		if err := rows.Scan(&turn.ID, &turn.UserID, &role, &turn.Content, &turn.CreatedAt, &topic); err != nil {
			return nil, err
		}

		turn.Role = models.Role(role)
		if topic.Valid {
			turn.TopicSummary = topic.String
		}

		turns = append(turns, turn)
	}

	return turns, rows.Err()
}

// placeholders builds a "?, ?, ?" list of the given length
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// idArgs widens ids for variadic query arguments
func idArgs(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
