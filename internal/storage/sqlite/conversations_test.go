// ABOUTME: Tests for conversation turn storage operations
// ABOUTME: Verifies append, recency ordering, id lookup, and the since filter

package sqlite

import (
	"testing"
	"time"

	"github.com/jvsazevedo/open-finance-buddy/internal/models"
)

func insertTestTurn(t *testing.T, store *ConversationStore, userID int64, content string) int64 {
	t.Helper()
	id, err := store.Insert(&models.ConversationTurn{
		UserID:       userID,
		Role:         models.RoleUser,
		Content:      content,
		TopicSummary: "test",
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	return id
}

func TestConversationStore_InsertAssignsMonotonicIDs(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewConversationStore(db)

	first := insertTestTurn(t, store, 1, "first")
	second := insertTestTurn(t, store, 1, "second")

	if first <= 0 {
		t.Errorf("first id = %d, want positive", first)
	}
	if second <= first {
		t.Errorf("ids not monotonic: first=%d second=%d", first, second)
	}
}

func TestConversationStore_GetRecent(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewConversationStore(db)

	insertTestTurn(t, store, 1, "oldest")
	insertTestTurn(t, store, 1, "middle")
	insertTestTurn(t, store, 2, "other user")
	newest := insertTestTurn(t, store, 1, "newest")

	turns, err := store.GetRecent(1, 2)
	if err != nil {
		t.Fatalf("GetRecent() error = %v", err)
	}

	if len(turns) != 2 {
		t.Fatalf("GetRecent() returned %d turns, want 2", len(turns))
	}
	if turns[0].ID != newest {
		t.Errorf("first result id = %d, want newest %d", turns[0].ID, newest)
	}
	if turns[0].ID <= turns[1].ID {
		t.Errorf("results not newest-first: %d then %d", turns[0].ID, turns[1].ID)
	}
	for _, turn := range turns {
		if turn.UserID != 1 {
			t.Errorf("turn %d has user %d, want 1", turn.ID, turn.UserID)
		}
	}
}

func TestConversationStore_GetRecent_NonPositiveLimit(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewConversationStore(db)
	insertTestTurn(t, store, 1, "hello")

	for _, limit := range []int{0, -1} {
		turns, err := store.GetRecent(1, limit)
		if err != nil {
			t.Fatalf("GetRecent(limit=%d) error = %v", limit, err)
		}
		if len(turns) != 0 {
			t.Errorf("GetRecent(limit=%d) returned %d turns, want 0", limit, len(turns))
		}
	}
}

func TestConversationStore_GetByIDs(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewConversationStore(db)

	a := insertTestTurn(t, store, 1, "alpha")
	insertTestTurn(t, store, 1, "beta")
	c := insertTestTurn(t, store, 1, "gamma")

	// Missing ids are absent, not an error
	turns, err := store.GetByIDs([]int64{a, c, 9999})
	if err != nil {
		t.Fatalf("GetByIDs() error = %v", err)
	}

	if len(turns) != 2 {
		t.Fatalf("GetByIDs() returned %d turns, want 2", len(turns))
	}

	got := map[int64]string{}
	for _, turn := range turns {
		got[turn.ID] = turn.Content
	}
	if got[a] != "alpha" || got[c] != "gamma" {
		t.Errorf("GetByIDs() contents = %v", got)
	}

	// Empty id set yields empty result
	turns, err = store.GetByIDs(nil)
	if err != nil {
		t.Fatalf("GetByIDs(nil) error = %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("GetByIDs(nil) returned %d turns, want 0", len(turns))
	}
}

func TestConversationStore_GetRecentSince(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewConversationStore(db)

	// Backdated turn outside the window
	oldID, err := store.Insert(&models.ConversationTurn{
		UserID:    1,
		Role:      models.RoleUser,
		Content:   "ten days ago",
		CreatedAt: time.Now().UTC().AddDate(0, 0, -10),
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	freshID := insertTestTurn(t, store, 1, "today")
	otherID := insertTestTurn(t, store, 2, "someone else today")

	since := time.Now().UTC().AddDate(0, 0, -7)

	turns, err := store.GetRecentSince([]int64{oldID, freshID, otherID}, 1, since, 5)
	if err != nil {
		t.Fatalf("GetRecentSince() error = %v", err)
	}

	if len(turns) != 1 {
		t.Fatalf("GetRecentSince() returned %d turns, want 1", len(turns))
	}
	if turns[0].ID != freshID {
		t.Errorf("result id = %d, want %d", turns[0].ID, freshID)
	}
}

func TestConversationStore_GetRecentSince_CapsAtLimit(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewConversationStore(db)

	var ids []int64
	for i := 0; i < 4; i++ {
		ids = append(ids, insertTestTurn(t, store, 1, "turn"))
	}

	since := time.Now().UTC().AddDate(0, 0, -1)
	turns, err := store.GetRecentSince(ids, 1, since, 2)
	if err != nil {
		t.Fatalf("GetRecentSince() error = %v", err)
	}

	if len(turns) != 2 {
		t.Fatalf("GetRecentSince() returned %d turns, want 2", len(turns))
	}
	if turns[0].ID != ids[3] {
		t.Errorf("first result id = %d, want newest %d", turns[0].ID, ids[3])
	}
}
