// ABOUTME: Tests for expense model validation
// ABOUTME: Verifies required fields and value constraints

package models

import "testing"

func TestExpense_Validate(t *testing.T) {
	valid := Expense{UserID: 1, Label: "Rent", Value: 1000, Currency: "BRL"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}

	tests := []struct {
		name    string
		expense Expense
	}{
		{"missing user", Expense{Label: "Rent", Value: 100}},
		{"empty label", Expense{UserID: 1, Label: " ", Value: 100}},
		{"negative value", Expense{UserID: 1, Label: "Rent", Value: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.expense.Validate(); err == nil {
				t.Error("Validate() expected error, got nil")
			}
		})
	}
}
