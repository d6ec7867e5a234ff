package services

import (
	"context"
	"testing"
	"time"

	"finboard/internal/core"
)

func feedTx(id string) core.Transaction {
	return core.Transaction{
		ID:        id,
		Timestamp: time.Date(2025, 8, 10, 9, 0, 0, 0, time.UTC),
		Direction: core.Out,
		Amount:    core.Money{MinorUnits: 500},
		Currency:  "GBP",
	}
}

func TestIngestTransactions_InsertsOnlyUnknown(t *testing.T) {
	feed := &fakeFeed{transactions: []core.Transaction{feedTx("t-1"), feedTx("t-2"), feedTx("t-3")}}
	store := &fakeStore{knownTx: map[string]struct{}{"t-1": {}, "t-3": {}}}
	ingestor := NewIngestor(feed, &fakeBroker{}, store)

	inserted, err := ingestor.IngestTransactions(context.Background(), "acc-1", "cat-1", time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("IngestTransactions() error = %v", err)
	}
	if inserted != 1 {
		t.Errorf("inserted = %d, want 1", inserted)
	}
	if len(store.insertedTx) != 1 || store.insertedTx[0].ID != "t-2" {
		t.Errorf("inserted transactions = %+v, want only t-2", store.insertedTx)
	}
}

func TestIngestTransactions_AllKnownIsNoop(t *testing.T) {
	feed := &fakeFeed{transactions: []core.Transaction{feedTx("t-1")}}
	store := &fakeStore{knownTx: map[string]struct{}{"t-1": {}}}
	ingestor := NewIngestor(feed, &fakeBroker{}, store)

	inserted, err := ingestor.IngestTransactions(context.Background(), "acc-1", "cat-1", time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("IngestTransactions() error = %v", err)
	}
	if inserted != 0 || len(store.insertedTx) != 0 {
		t.Errorf("inserted = %d (%d rows), want none", inserted, len(store.insertedTx))
	}
}

func TestIngestTransactions_EmptyWindow(t *testing.T) {
	store := &fakeStore{}
	ingestor := NewIngestor(&fakeFeed{}, &fakeBroker{}, store)

	inserted, err := ingestor.IngestTransactions(context.Background(), "acc-1", "cat-1", time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("IngestTransactions() on empty window error = %v", err)
	}
	if inserted != 0 {
		t.Errorf("inserted = %d, want 0", inserted)
	}
}

func TestIngestTransactions_FetchFailurePropagates(t *testing.T) {
	feed := &fakeFeed{feedErr: context.DeadlineExceeded}
	ingestor := NewIngestor(feed, &fakeBroker{}, &fakeStore{})

	if _, err := ingestor.IngestTransactions(context.Background(), "acc-1", "cat-1", time.Time{}, time.Now()); err == nil {
		t.Error("IngestTransactions() swallowed a fetch failure")
	}
}

func TestIngestOrders_InsertsOnlyUnknown(t *testing.T) {
	filled := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	broker := &fakeBroker{orders: []core.Order{
		{ID: "o-1", Ticker: "VUAG_EQ", Side: core.Buy, CashImpact: core.Money{MinorUnits: 10000}, FilledAt: filled},
		{ID: "o-2", Ticker: "VUAG_EQ", Side: core.Sell, CashImpact: core.Money{MinorUnits: 2000}, FilledAt: filled},
	}}
	store := &fakeStore{knownOrders: map[string]struct{}{"o-1": {}}}
	ingestor := NewIngestor(&fakeFeed{}, broker, store)

	inserted, err := ingestor.IngestOrders(context.Background(), filled.AddDate(0, -3, 0))
	if err != nil {
		t.Fatalf("IngestOrders() error = %v", err)
	}
	if inserted != 1 {
		t.Errorf("inserted = %d, want 1", inserted)
	}
	if len(store.insertedOrders) != 1 || store.insertedOrders[0].ID != "o-2" {
		t.Errorf("inserted orders = %+v, want only o-2", store.insertedOrders)
	}
}
