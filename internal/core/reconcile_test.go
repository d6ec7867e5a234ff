package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func tx(id string, ts time.Time, dir Direction, minor int64) Transaction {
	return Transaction{
		ID:        id,
		Timestamp: ts,
		Direction: dir,
		Amount:    Money{MinorUnits: minor},
		Currency:  "GBP",
	}
}

func TestReconcile_RoundTrip(t *testing.T) {
	base := time.Date(2025, 7, 27, 10, 0, 0, 0, time.UTC)

	// Newest first, as the provider feed returns them.
	feed := []Transaction{
		tx("c", base.Add(48*time.Hour), Out, 2500),
		tx("b", base.Add(24*time.Hour), In, 10000),
		tx("a", base, In, 50000),
	}
	current := Money{MinorUnits: 120000}

	points := Reconcile(current, feed)
	if len(points) != 3 {
		t.Fatalf("Reconcile() returned %d points, want 3", len(points))
	}

	// Chronological order regardless of feed order.
	for i := 1; i < len(points); i++ {
		if points[i].Date.Before(points[i-1].Date) {
			t.Errorf("points not chronological at %d: %v before %v", i, points[i].Date, points[i-1].Date)
		}
	}

	// Balance at the most recent record must round-trip to the supplied
	// current balance.
	last := points[len(points)-1]
	if !last.Balance.Equal(current.Decimal()) {
		t.Errorf("final balance = %s, want %s", last.Balance, current.Decimal())
	}

	// Sum of signed deltas equals final minus starting balance.
	sum := decimal.Zero
	for _, p := range points {
		sum = sum.Add(p.Delta)
	}
	starting := points[0].Balance.Sub(points[0].Delta)
	if diff := last.Balance.Sub(starting); !sum.Equal(diff) {
		t.Errorf("delta sum = %s, want %s", sum, diff)
	}
}

func TestReconcile_SignedDeltas(t *testing.T) {
	base := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	points := Reconcile(Money{MinorUnits: 10000}, []Transaction{
		tx("out", base.Add(time.Hour), Out, 3000),
		tx("in", base, In, 5000),
	})

	if len(points) != 2 {
		t.Fatalf("Reconcile() returned %d points, want 2", len(points))
	}
	if want := decimal.New(5000, -2); !points[0].Delta.Equal(want) {
		t.Errorf("IN delta = %s, want %s", points[0].Delta, want)
	}
	if want := decimal.New(-3000, -2); !points[1].Delta.Equal(want) {
		t.Errorf("OUT delta = %s, want %s", points[1].Delta, want)
	}
	// Back-solved: starting = 100.00 - (50.00 - 30.00) = 80.00.
	if want := decimal.New(13000, -2); !points[0].Balance.Equal(want) {
		t.Errorf("balance after first tx = %s, want %s", points[0].Balance, want)
	}
}

func TestReconcile_EmptyWindow(t *testing.T) {
	points := Reconcile(Money{MinorUnits: 4200}, nil)
	if points != nil {
		t.Errorf("Reconcile() with no transactions = %v, want nil", points)
	}
}
