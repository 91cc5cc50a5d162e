// ABOUTME: Tests for embedding index operations
// ABOUTME: Verifies vector round-trip, filtered search, ordering, and reconciliation

package sqlite

import (
	"math"
	"testing"

	"github.com/jvsazevedo/open-finance-buddy/internal/models"
)

// testDimension keeps test vectors small
const testDimension = 4

func newTestIndex(t *testing.T) (*DB, *EmbeddingIndex, *ConversationStore) {
	t.Helper()
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, NewEmbeddingIndexWithDimension(db, testDimension), NewConversationStore(db)
}

func TestEmbeddingIndex_UpsertAndGet(t *testing.T) {
	_, index, turns := newTestIndex(t)

	msgID := insertTestTurn(t, turns, 1, "I spent 50 on groceries")

	vector := []float64{0.1, 0.2, 0.3, 0.4}
	meta := models.EmbeddingMetadata{MessageID: msgID, UserID: 1, TopicSummary: "groceries"}

	if err := index.Upsert(msgID, vector, meta); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	rec, err := index.GetByMessageID(msgID)
	if err != nil {
		t.Fatalf("GetByMessageID() error = %v", err)
	}
	if rec == nil {
		t.Fatal("GetByMessageID() returned nil")
	}

	if rec.Metadata.UserID != 1 {
		t.Errorf("UserID = %d, want 1", rec.Metadata.UserID)
	}
	if rec.Metadata.TopicSummary != "groceries" {
		t.Errorf("TopicSummary = %q, want groceries", rec.Metadata.TopicSummary)
	}
	for i, v := range rec.Vector {
		if math.Abs(v-vector[i]) > 1e-12 {
			t.Errorf("Vector[%d] = %v, want %v", i, v, vector[i])
		}
	}
}

func TestEmbeddingIndex_UpsertRejectsWrongDimension(t *testing.T) {
	_, index, turns := newTestIndex(t)
	msgID := insertTestTurn(t, turns, 1, "hello")

	err := index.Upsert(msgID, []float64{1, 2}, models.EmbeddingMetadata{MessageID: msgID, UserID: 1})
	if err == nil {
		t.Fatal("Upsert() expected dimension error, got nil")
	}
}

func TestEmbeddingIndex_SearchOrdersBySimilarity(t *testing.T) {
	_, index, turns := newTestIndex(t)

	vectors := map[string][]float64{
		"exact":      {1, 0, 0, 0},
		"close":      {0.9, 0.1, 0, 0},
		"orthogonal": {0, 0, 1, 0},
	}

	ids := map[string]int64{}
	for name, vec := range vectors {
		id := insertTestTurn(t, turns, 1, name)
		ids[name] = id
		if err := index.Upsert(id, vec, models.EmbeddingMetadata{MessageID: id, UserID: 1}); err != nil {
			t.Fatalf("Upsert(%s) error = %v", name, err)
		}
	}

	results, err := index.Search([]float64{1, 0, 0, 0}, 2, models.MetadataFilter{UserID: 1})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(results))
	}
	if results[0].Metadata.MessageID != ids["exact"] {
		t.Errorf("top result = %d, want exact match %d", results[0].Metadata.MessageID, ids["exact"])
	}
	if results[1].Metadata.MessageID != ids["close"] {
		t.Errorf("second result = %d, want close match %d", results[1].Metadata.MessageID, ids["close"])
	}
	if results[0].SimilarityScore < results[1].SimilarityScore {
		t.Error("results not sorted by score descending")
	}
}

func TestEmbeddingIndex_SearchFiltersByUser(t *testing.T) {
	_, index, turns := newTestIndex(t)

	mine := insertTestTurn(t, turns, 1, "my turn")
	theirs := insertTestTurn(t, turns, 2, "their turn")

	vec := []float64{1, 0, 0, 0}
	if err := index.Upsert(mine, vec, models.EmbeddingMetadata{MessageID: mine, UserID: 1}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := index.Upsert(theirs, vec, models.EmbeddingMetadata{MessageID: theirs, UserID: 2}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	results, err := index.Search(vec, 10, models.MetadataFilter{UserID: 1})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("Search() returned %d results, want 1", len(results))
	}
	if results[0].Metadata.MessageID != mine {
		t.Errorf("result = %d, want %d", results[0].Metadata.MessageID, mine)
	}

	// Empty filter returns both
	results, err = index.Search(vec, 10, models.MetadataFilter{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Errorf("unfiltered Search() returned %d results, want 2", len(results))
	}
}

func TestEmbeddingIndex_SearchTieBreaksOnMessageID(t *testing.T) {
	_, index, turns := newTestIndex(t)

	vec := []float64{0, 1, 0, 0}
	var ids []int64
	for i := 0; i < 3; i++ {
		id := insertTestTurn(t, turns, 1, "same vector")
		ids = append(ids, id)
		if err := index.Upsert(id, vec, models.EmbeddingMetadata{MessageID: id, UserID: 1}); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	results, err := index.Search(vec, 3, models.MetadataFilter{UserID: 1})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Search() returned %d results, want 3", len(results))
	}
	for i, res := range results {
		if res.Metadata.MessageID != ids[i] {
			t.Errorf("result[%d] = %d, want %d (ascending id tie-break)", i, res.Metadata.MessageID, ids[i])
		}
	}
}

func TestEmbeddingIndex_SearchRejectsNonPositiveK(t *testing.T) {
	_, index, _ := newTestIndex(t)

	if _, err := index.Search([]float64{1, 0, 0, 0}, 0, models.MetadataFilter{}); err == nil {
		t.Error("Search(k=0) expected error, got nil")
	}
}

func TestEmbeddingIndex_MissingMessageIDs(t *testing.T) {
	_, index, turns := newTestIndex(t)

	indexed := insertTestTurn(t, turns, 1, "indexed")
	orphan := insertTestTurn(t, turns, 1, "orphan")

	if err := index.Upsert(indexed, []float64{1, 0, 0, 0}, models.EmbeddingMetadata{MessageID: indexed, UserID: 1}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	missing, err := index.MissingMessageIDs()
	if err != nil {
		t.Fatalf("MissingMessageIDs() error = %v", err)
	}

	if len(missing) != 1 || missing[0] != orphan {
		t.Errorf("MissingMessageIDs() = %v, want [%d]", missing, orphan)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1.0},
		{"mismatched length", []float64{1, 0}, []float64{1, 0, 0}, 0.0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}
