// ABOUTME: Memory service orchestrating the conversation store and embedding index
// ABOUTME: Implements record_turn and the four retrieval policies
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jvsazevedo/open-finance-buddy/internal/models"
	"github.com/jvsazevedo/open-finance-buddy/internal/storage/sqlite"
)

// Default limits for the retrieval operations
const (
	DefaultRecentLimit   = 10
	DefaultSimilarLimit  = 5
	DefaultTimeLimitDays = 7
)

// Overfetch factors compensate for matches the post-search filters drop.
// Similarity search has no awareness of recency or topic, so the index is
// asked for more candidates than the caller wants.
const (
	recencyOverfetch = 2
	topicOverfetch   = 3
)

// Embedder maps text to a fixed-length vector. Calls may block on
// network I/O and must honor ctx.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Service owns the consistency contract between the conversation store
// and the embedding index. The two-step write in RecordTurn is not
// atomic across the two tables; a single writer lock serializes it, and
// the embedding is computed before the lock is taken so the provider
// call never blocks other writers.
type Service struct {
	turns    *sqlite.ConversationStore
	index    *sqlite.EmbeddingIndex
	embedder Embedder
	mu       sync.Mutex
}

// NewService creates a memory service over explicitly constructed stores
func NewService(turns *sqlite.ConversationStore, index *sqlite.EmbeddingIndex, embedder Embedder) *Service {
	return &Service{
		turns:    turns,
		index:    index,
		embedder: embedder,
	}
}

// RecordTurn persists one conversation turn and its embedding, returning
// the assigned message id.
//
// If the relational insert succeeds but the index upsert fails, the id
// is returned together with a *PartialWriteError; the caller decides
// whether to surface it or schedule a repair. Embedding failures before
// the insert abort with no row written.
func (s *Service) RecordTurn(ctx context.Context, userID int64, role models.Role, content, topicSummary string) (int64, error) {
	turn, err := models.NewConversationTurn(userID, role, content, topicSummary)
	if err != nil {
		return 0, invalidArgf("%v", err)
	}

	vector, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return 0, fmt.Errorf("embedding turn content: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	messageID, err := s.turns.Insert(turn)
	if err != nil {
		return 0, fmt.Errorf("storing turn: %w", err)
	}

	meta := models.EmbeddingMetadata{
		MessageID:    messageID,
		UserID:       userID,
		TopicSummary: topicSummary,
	}
	if err := s.index.Upsert(messageID, vector, meta); err != nil {
		return messageID, &PartialWriteError{MessageID: messageID, Err: err}
	}

	return messageID, nil
}

// RecentForUser returns the user's most recent turns, newest first by
// insertion order. Wall-clock timestamps are deliberately not consulted,
// which keeps the ordering immune to clock skew.
func (s *Service) RecentForUser(ctx context.Context, userID int64, limit int) ([]models.ConversationTurn, error) {
	if userID <= 0 {
		return nil, invalidArgf("user id must be positive, got %d", userID)
	}
	return s.turns.GetRecent(userID, limit)
}

// SimilarForUser returns up to limit turns semantically similar to
// query, scoped to the user. Resolution order is store-native; the
// index's rank order is not re-imposed on the resolved rows.
func (s *Service) SimilarForUser(ctx context.Context, query string, userID int64, limit int) ([]models.ConversationTurn, error) {
	if err := validateQuery(query, userID, limit); err != nil {
		return nil, err
	}

	results, err := s.searchIndex(ctx, query, limit, models.MetadataFilter{UserID: userID})
	if err != nil {
		return nil, err
	}

	return s.turns.GetByIDs(messageIDs(results))
}

// SimilarRecentForUser returns up to limit turns similar to query that
// were created within the last timeLimitDays days. The index is asked
// for limit*2 candidates since it is blind to recency; the date filter
// then narrows them, so fewer than limit results can come back even when
// enough similar turns exist inside the window.
func (s *Service) SimilarRecentForUser(ctx context.Context, query string, userID int64, limit, timeLimitDays int) ([]models.ConversationTurn, error) {
	if err := validateQuery(query, userID, limit); err != nil {
		return nil, err
	}
	if timeLimitDays <= 0 {
		return nil, invalidArgf("time limit days must be positive, got %d", timeLimitDays)
	}

	results, err := s.searchIndex(ctx, query, limit*recencyOverfetch, models.MetadataFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	since := time.Now().UTC().AddDate(0, 0, -timeLimitDays)
	return s.turns.GetRecentSince(messageIDs(results), userID, since, limit)
}

// SimilarByTopic returns up to limit turns similar to query whose topic
// summary contains at least one of the keywords, case-insensitively, as
// a substring. A zero userID leaves the search unscoped. Candidates are
// kept in index order and the scan short-circuits once limit survive.
func (s *Service) SimilarByTopic(ctx context.Context, query string, topicKeywords []string, userID int64, limit int) ([]models.ConversationTurn, error) {
	if strings.TrimSpace(query) == "" {
		return nil, invalidArgf("query cannot be empty")
	}
	if limit <= 0 {
		return nil, invalidArgf("limit must be positive, got %d", limit)
	}

	var filter models.MetadataFilter
	if userID != 0 {
		filter.UserID = userID
	}

	results, err := s.searchIndex(ctx, query, limit*topicOverfetch, filter)
	if err != nil {
		return nil, err
	}

	var kept []models.VectorSearchResult
	for _, res := range results {
		if matchesAnyKeyword(res.Metadata.TopicSummary, topicKeywords) {
			kept = append(kept, res)
		}
		if len(kept) >= limit {
			break
		}
	}
	if len(kept) == 0 {
		return nil, nil
	}

	return s.turns.GetByIDs(messageIDs(kept))
}

// Repair finds conversation rows with no embedding (the leftovers of
// partial writes) and re-embeds them. Returns how many were repaired.
func (s *Service) Repair(ctx context.Context) (int, error) {
	missing, err := s.index.MissingMessageIDs()
	if err != nil {
		return 0, fmt.Errorf("finding unindexed turns: %w", err)
	}
	if len(missing) == 0 {
		return 0, nil
	}

	rows, err := s.turns.GetByIDs(missing)
	if err != nil {
		return 0, fmt.Errorf("loading unindexed turns: %w", err)
	}

	repaired := 0
	for _, turn := range rows {
		vector, err := s.embedder.Embed(ctx, turn.Content)
		if err != nil {
			return repaired, fmt.Errorf("re-embedding turn %d: %w", turn.ID, err)
		}

		meta := models.EmbeddingMetadata{
			MessageID:    turn.ID,
			UserID:       turn.UserID,
			TopicSummary: turn.TopicSummary,
		}
		if err := s.index.Upsert(turn.ID, vector, meta); err != nil {
			return repaired, fmt.Errorf("indexing turn %d: %w", turn.ID, err)
		}
		repaired++
	}

	return repaired, nil
}

// searchIndex embeds the query and runs the filtered similarity search.
// Provider failures propagate; they are never folded into an empty
// result, which would be indistinguishable from no matches.
func (s *Service) searchIndex(ctx context.Context, query string, k int, filter models.MetadataFilter) ([]models.VectorSearchResult, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return s.index.Search(vector, k, filter)
}

func validateQuery(query string, userID int64, limit int) error {
	if strings.TrimSpace(query) == "" {
		return invalidArgf("query cannot be empty")
	}
	if userID <= 0 {
		return invalidArgf("user id must be positive, got %d", userID)
	}
	if limit <= 0 {
		return invalidArgf("limit must be positive, got %d", limit)
	}
	return nil
}

func messageIDs(results []models.VectorSearchResult) []int64 {
	ids := make([]int64, len(results))
	for i, res := range results {
		ids[i] = res.Metadata.MessageID
	}
	return ids
}

func matchesAnyKeyword(topicSummary string, keywords []string) bool {
	summary := strings.ToLower(topicSummary)
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(summary, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
