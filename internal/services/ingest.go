package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Ingestor pulls provider history into the store. Fetched items are
// deduplicated against the ids already persisted; only the complement is
// inserted, so observed history is immutable.
type Ingestor struct {
	feed   FeedProvider
	broker Brokerage
	store  Store
}

func NewIngestor(feed FeedProvider, broker Brokerage, store Store) *Ingestor {
	return &Ingestor{feed: feed, broker: broker, store: store}
}

// IngestTransactions fetches the feed window for one account category and
// persists the items not yet stored. Returns how many were inserted.
func (s *Ingestor) IngestTransactions(ctx context.Context, accountUID, categoryUID string, from, to time.Time) (int, error) {
	transactions, err := s.feed.TransactionsBetween(ctx, accountUID, categoryUID, from, to)
	if err != nil {
		return 0, fmt.Errorf("fetch feed window: %w", err)
	}
	if len(transactions) == 0 {
		return 0, nil
	}

	ids := make([]string, len(transactions))
	for i, t := range transactions {
		ids[i] = t.ID
	}
	known, err := s.store.KnownTransactionIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("look up known transactions: %w", err)
	}

	fresh := transactions[:0]
	for _, t := range transactions {
		if _, seen := known[t.ID]; !seen {
			fresh = append(fresh, t)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	if err := s.store.InsertTransactions(ctx, accountUID, fresh); err != nil {
		return 0, fmt.Errorf("persist transactions: %w", err)
	}

	slog.InfoContext(ctx, "Feed window ingested",
		"account_uid", accountUID,
		"fetched", len(transactions),
		"inserted", len(fresh))
	return len(fresh), nil
}

// IngestOrders fetches brokerage fills back to the cutoff and persists the
// ones not yet stored. Returns how many were inserted.
func (s *Ingestor) IngestOrders(ctx context.Context, cutoff time.Time) (int, error) {
	orders, err := s.broker.Orders(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("fetch order history: %w", err)
	}
	if len(orders) == 0 {
		return 0, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	known, err := s.store.KnownOrderIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("look up known orders: %w", err)
	}

	fresh := orders[:0]
	for _, o := range orders {
		if _, seen := known[o.ID]; !seen {
			fresh = append(fresh, o)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	if err := s.store.InsertOrders(ctx, fresh); err != nil {
		return 0, fmt.Errorf("persist orders: %w", err)
	}

	slog.InfoContext(ctx, "Order history ingested",
		"fetched", len(orders),
		"inserted", len(fresh))
	return len(fresh), nil
}
