// ABOUTME: Expense ledger models for the finance assistant
// ABOUTME: Defines Expense, User, and UserParam structures
package models

import (
	"errors"
	"strings"
	"time"
)

// Expense is one ledger entry for a user
type Expense struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Label        string    `json:"label"`
	Value        float64   `json:"value"`
	Currency     string    `json:"currency"`
	Recurrent    bool      `json:"recurrent"`
	Installments int       `json:"installments"`
	ExpiringDate time.Time `json:"expiring_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate checks an expense before persisting it
func (e *Expense) Validate() error {
	if e.UserID <= 0 {
		return errors.New("user id must be positive")
	}
	if strings.TrimSpace(e.Label) == "" {
		return errors.New("label cannot be empty")
	}
	if e.Value < 0 {
		return errors.New("value cannot be negative")
	}
	return nil
}

// User is an account row
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserParam is a labeled setting for a user, e.g. monthly_income
type UserParam struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Label  string `json:"label"`
	Value  string `json:"value"`
}

// ParamMonthlyIncome is the user_params label holding monthly income
const ParamMonthlyIncome = "monthly_income"
