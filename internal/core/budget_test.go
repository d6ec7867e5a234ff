package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRemainingAndSpent(t *testing.T) {
	when := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	allowance := Allowance{
		Amount:     Money{MinorUnits: 18000},
		Exclusions: []string{"investments", "rent", "bills", "expenses", "income", "saving", "groceries"},
	}

	tests := []struct {
		name          string
		transactions  []Transaction
		wantRemaining decimal.Decimal
		wantSpent     decimal.Decimal
	}{
		{
			name: "two countable outflows",
			transactions: []Transaction{
				{ID: "1", Timestamp: when, Direction: Out, Amount: Money{MinorUnits: 5000}, Category: "eating_out"},
				{ID: "2", Timestamp: when, Direction: Out, Amount: Money{MinorUnits: 3000}, Category: "shopping"},
			},
			wantRemaining: decimal.New(10000, -2),
			wantSpent:     decimal.New(8000, -2),
		},
		{
			name: "excluded categories ignored case-insensitively",
			transactions: []Transaction{
				{ID: "1", Timestamp: when, Direction: Out, Amount: Money{MinorUnits: 60000}, Category: "Rent"},
				{ID: "2", Timestamp: when, Direction: Out, Amount: Money{MinorUnits: 2000}, Category: "GROCERIES"},
				{ID: "3", Timestamp: when, Direction: Out, Amount: Money{MinorUnits: 1500}, Category: "transport"},
			},
			wantRemaining: decimal.New(16500, -2),
			wantSpent:     decimal.New(1500, -2),
		},
		{
			name: "inflows never count as spend",
			transactions: []Transaction{
				{ID: "1", Timestamp: when, Direction: In, Amount: Money{MinorUnits: 9000}, Category: "shopping"},
			},
			wantRemaining: decimal.New(18000, -2),
			wantSpent:     decimal.Zero,
		},
		{
			name:          "empty window is a valid zero-spend state",
			transactions:  nil,
			wantRemaining: decimal.New(18000, -2),
			wantSpent:     decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemainingAndSpent(allowance, tt.transactions)
			if !got.Remaining.Equal(tt.wantRemaining) {
				t.Errorf("Remaining = %s, want %s", got.Remaining, tt.wantRemaining)
			}
			if !got.Spent.Equal(tt.wantSpent) {
				t.Errorf("Spent = %s, want %s", got.Spent, tt.wantSpent)
			}
		})
	}
}

func TestRemainingFromBalance(t *testing.T) {
	tests := []struct {
		name          string
		allowance     int64
		balance       int64
		wantRemaining decimal.Decimal
		wantSpent     decimal.Decimal
	}{
		{
			name:          "partially spent",
			allowance:     12000,
			balance:       7500,
			wantRemaining: decimal.New(7500, -2),
			wantSpent:     decimal.New(4500, -2),
		},
		{
			name:          "balance above allowance clamps",
			allowance:     18000,
			balance:       20000,
			wantRemaining: decimal.New(18000, -2),
			wantSpent:     decimal.Zero,
		},
		{
			name:          "fully spent",
			allowance:     12000,
			balance:       0,
			wantRemaining: decimal.Zero,
			wantSpent:     decimal.New(12000, -2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemainingFromBalance(Money{MinorUnits: tt.allowance}, Money{MinorUnits: tt.balance})
			if !got.Remaining.Equal(tt.wantRemaining) {
				t.Errorf("Remaining = %s, want %s", got.Remaining, tt.wantRemaining)
			}
			if !got.Spent.Equal(tt.wantSpent) {
				t.Errorf("Spent = %s, want %s", got.Spent, tt.wantSpent)
			}
		})
	}
}
