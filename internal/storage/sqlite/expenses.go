// ABOUTME: Expense ledger storage operations for SQLite
// ABOUTME: Implements add and the recent/by-month lookup queries
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jvsazevedo/open-finance-buddy/internal/models"
)

// RecentExpenseLimit caps how many rows the recent-expense queries return
const RecentExpenseLimit = 50

// ExpenseStore handles expense persistence
type ExpenseStore struct {
	db *DB
}

// NewExpenseStore creates a new ExpenseStore
func NewExpenseStore(db *DB) *ExpenseStore {
	return &ExpenseStore{db: db}
}

// Add inserts one expense and returns its assigned id.
// Zero ExpiringDate and CreatedAt mean write time.
func (s *ExpenseStore) Add(expense *models.Expense) (int64, error) {
	if err := expense.Validate(); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	expiring := expense.ExpiringDate
	if expiring.IsZero() {
		expiring = now
	}
	created := expense.CreatedAt
	if created.IsZero() {
		created = now
	}

	res, err := s.db.Exec(`
		INSERT INTO expenses (user_id, label, value, currency, recurrent, installments, expiring_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, expense.UserID, expense.Label, expense.Value, expense.Currency,
		boolToInt(expense.Recurrent), expense.Installments, expiring, created)
	if err != nil {
		return 0, fmt.Errorf("inserting expense: %w", err)
	}

	return res.LastInsertId()
}

// GetRecent returns up to RecentExpenseLimit expenses for a user,
// newest expiring first
func (s *ExpenseStore) GetRecent(userID int64) ([]models.Expense, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, label, value, currency, recurrent, installments, expiring_date, created_at
		FROM expenses
		WHERE user_id = ?
		ORDER BY expiring_date DESC
		LIMIT ?
	`, userID, RecentExpenseLimit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return s.scanExpenses(rows)
}

// GetByMonth returns a user's expenses whose expiring date falls in the
// given month (1-12), newest first
func (s *ExpenseStore) GetByMonth(userID int64, month int) ([]models.Expense, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month must be 1-12, got %d", month)
	}

	rows, err := s.db.Query(`
		SELECT id, user_id, label, value, currency, recurrent, installments, expiring_date, created_at
		FROM expenses
		WHERE user_id = ? AND strftime('%m', expiring_date) = ?
		ORDER BY expiring_date DESC
		LIMIT ?
	`, userID, fmt.Sprintf("%02d", month), RecentExpenseLimit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return s.scanExpenses(rows)
}

// All returns every stored expense in ascending id order. Used by the
// cloud backup mirror.
func (s *ExpenseStore) All() ([]models.Expense, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, label, value, currency, recurrent, installments, expiring_date, created_at
		FROM expenses
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return s.scanExpenses(rows)
}

// scanExpenses scans rows into expenses
func (s *ExpenseStore) scanExpenses(rows *sql.Rows) ([]models.Expense, error) {
	var expenses []models.Expense

	for rows.Next() {
		var (
			exp       models.Expense
			currency  sql.NullString
			recurrent int
		)

		err := rows.Scan(&exp.ID, &exp.UserID, &exp.Label, &exp.Value, &currency,
			&recurrent, &exp.Installments, &exp.ExpiringDate, &exp.CreatedAt)
		if err != nil {
			return nil, err
		}

		if currency.Valid {
			exp.Currency = currency.String
		}
		exp.Recurrent = recurrent != 0

		expenses = append(expenses, exp)
	}

	return expenses, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
