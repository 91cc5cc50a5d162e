// ABOUTME: User and user-parameter storage operations for SQLite
// ABOUTME: Implements account rows and labeled settings like monthly income
package sqlite

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/jvsazevedo/open-finance-buddy/internal/models"
)

// UserStore handles user and user-parameter persistence
type UserStore struct {
	db *DB
}

// NewUserStore creates a new UserStore
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// Add inserts a user and returns its assigned id
func (s *UserStore) Add(user *models.User) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(`
		INSERT INTO users (name, email, password, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, user.Name, user.Email, user.Password, now, now)
	if err != nil {
		return 0, fmt.Errorf("inserting user: %w", err)
	}
	return res.LastInsertId()
}

// AddParam inserts a labeled setting for a user and returns its id
func (s *UserStore) AddParam(userID int64, label, value string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO user_params (user_id, label, value)
		VALUES (?, ?, ?)
	`, userID, label, value)
	if err != nil {
		return 0, fmt.Errorf("inserting user param: %w", err)
	}
	return res.LastInsertId()
}

// GetMonthlyIncome returns the user's most recently set monthly income.
// The second return is false when no income has been recorded; that is
// an expected state, not an error.
func (s *UserStore) GetMonthlyIncome(userID int64) (float64, bool, error) {
	var value string
	err := s.db.QueryRow(`
		SELECT value FROM user_params
		WHERE user_id = ? AND label = ?
		ORDER BY id DESC
		LIMIT 1
	`, userID, models.ParamMonthlyIncome).Scan(&value)

	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	income, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parsing monthly income %q: %w", value, err)
	}
	return income, true, nil
}
