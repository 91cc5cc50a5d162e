// ABOUTME: Tests for expense ledger storage operations
// ABOUTME: Verifies add, recent ordering, and the month filter

package sqlite

import (
	"testing"
	"time"

	"github.com/jvsazevedo/open-finance-buddy/internal/models"
)

func TestExpenseStore_AddAndGetRecent(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewExpenseStore(db)

	older := &models.Expense{
		UserID:       1,
		Label:        "Groceries",
		Value:        500,
		Currency:     "BRL",
		ExpiringDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	newer := &models.Expense{
		UserID:       1,
		Label:        "Rent",
		Value:        1000,
		Currency:     "BRL",
		Recurrent:    true,
		ExpiringDate: time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC),
	}
	other := &models.Expense{
		UserID:       2,
		Label:        "Transport",
		Value:        200,
		ExpiringDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	for _, exp := range []*models.Expense{older, newer, other} {
		if _, err := store.Add(exp); err != nil {
			t.Fatalf("Add(%s) error = %v", exp.Label, err)
		}
	}

	expenses, err := store.GetRecent(1)
	if err != nil {
		t.Fatalf("GetRecent() error = %v", err)
	}

	if len(expenses) != 2 {
		t.Fatalf("GetRecent() returned %d expenses, want 2", len(expenses))
	}
	if expenses[0].Label != "Rent" {
		t.Errorf("first expense = %q, want Rent (newest expiring first)", expenses[0].Label)
	}
	if !expenses[0].Recurrent {
		t.Error("Rent should be recurrent")
	}
	if expenses[1].Label != "Groceries" {
		t.Errorf("second expense = %q, want Groceries", expenses[1].Label)
	}
}

func TestExpenseStore_Add_Invalid(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewExpenseStore(db)

	if _, err := store.Add(&models.Expense{UserID: 1, Label: "", Value: 10}); err == nil {
		t.Error("Add() with empty label expected error, got nil")
	}
}

func TestExpenseStore_GetByMonth(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewExpenseStore(db)

	jan := &models.Expense{
		UserID:       1,
		Label:        "January rent",
		Value:        1000,
		ExpiringDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
	}
	feb := &models.Expense{
		UserID:       1,
		Label:        "February rent",
		Value:        1000,
		ExpiringDate: time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC),
	}

	for _, exp := range []*models.Expense{jan, feb} {
		if _, err := store.Add(exp); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	expenses, err := store.GetByMonth(1, 2)
	if err != nil {
		t.Fatalf("GetByMonth() error = %v", err)
	}

	if len(expenses) != 1 {
		t.Fatalf("GetByMonth() returned %d expenses, want 1", len(expenses))
	}
	if expenses[0].Label != "February rent" {
		t.Errorf("expense = %q, want February rent", expenses[0].Label)
	}

	if _, err := store.GetByMonth(1, 13); err == nil {
		t.Error("GetByMonth(13) expected error, got nil")
	}
}

func TestUserStore_MonthlyIncome(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewUserStore(db)

	userID, err := store.Add(&models.User{Name: "Joana", Email: "joana@example.com"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// No income recorded yet
	_, ok, err := store.GetMonthlyIncome(userID)
	if err != nil {
		t.Fatalf("GetMonthlyIncome() error = %v", err)
	}
	if ok {
		t.Error("GetMonthlyIncome() ok = true before any param, want false")
	}

	if _, err := store.AddParam(userID, models.ParamMonthlyIncome, "7000"); err != nil {
		t.Fatalf("AddParam() error = %v", err)
	}
	if _, err := store.AddParam(userID, models.ParamMonthlyIncome, "7500.50"); err != nil {
		t.Fatalf("AddParam() error = %v", err)
	}

	// Latest param wins
	income, ok, err := store.GetMonthlyIncome(userID)
	if err != nil {
		t.Fatalf("GetMonthlyIncome() error = %v", err)
	}
	if !ok {
		t.Fatal("GetMonthlyIncome() ok = false, want true")
	}
	if income != 7500.50 {
		t.Errorf("income = %v, want 7500.50", income)
	}
}
