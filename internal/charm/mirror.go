// ABOUTME: Push-style mirror copying local SQLite rows into charm KV
// ABOUTME: Gives each device a cloud backup of turns and expenses
package charm

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jvsazevedo/open-finance-buddy/internal/models"
)

// BackupMarkerKey holds metadata about the most recent push
const BackupMarkerKey = "backup:last"

// KVSetter is the subset of Client the mirror writes through
type KVSetter interface {
	SetJSON(key string, value interface{}) error
	Sync() error
}

// TurnSource lists the conversation turns to mirror
type TurnSource interface {
	All() ([]models.ConversationTurn, error)
}

// ExpenseSource lists the expenses to mirror
type ExpenseSource interface {
	All() ([]models.Expense, error)
}

// MirrorStats reports how many rows one Push copied. BackupID is a
// fresh identifier written to BackupMarkerKey so devices can tell
// which push a backup came from.
type MirrorStats struct {
	BackupID string    `json:"backup_id"`
	PushedAt time.Time `json:"pushed_at"`
	Turns    int       `json:"turns"`
	Expenses int       `json:"expenses"`
}

// Mirror copies local rows into the KV under typed key prefixes
type Mirror struct {
	kv       KVSetter
	turns    TurnSource
	expenses ExpenseSource
}

// NewMirror creates a mirror over the given stores
func NewMirror(kv KVSetter, turns TurnSource, expenses ExpenseSource) *Mirror {
	return &Mirror{kv: kv, turns: turns, expenses: expenses}
}

// Push copies every turn and expense into the KV, then syncs once.
// Rows are keyed by id, so repeated pushes overwrite in place.
func (m *Mirror) Push() (MirrorStats, error) {
	stats := MirrorStats{
		BackupID: uuid.New().String(),
		PushedAt: time.Now().UTC(),
	}

	turns, err := m.turns.All()
	if err != nil {
		return stats, fmt.Errorf("listing turns: %w", err)
	}
	for _, turn := range turns {
		if err := m.kv.SetJSON(TurnKey(turn.ID), turn); err != nil {
			return stats, fmt.Errorf("mirroring turn %d: %w", turn.ID, err)
		}
		stats.Turns++
	}

	expenses, err := m.expenses.All()
	if err != nil {
		return stats, fmt.Errorf("listing expenses: %w", err)
	}
	for _, expense := range expenses {
		if err := m.kv.SetJSON(ExpenseKey(expense.ID), expense); err != nil {
			return stats, fmt.Errorf("mirroring expense %d: %w", expense.ID, err)
		}
		stats.Expenses++
	}

	if err := m.kv.SetJSON(BackupMarkerKey, stats); err != nil {
		return stats, fmt.Errorf("writing backup marker: %w", err)
	}

	if err := m.kv.Sync(); err != nil {
		return stats, fmt.Errorf("syncing kv: %w", err)
	}
	return stats, nil
}
