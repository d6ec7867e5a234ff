package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finboard/internal/core"
	"finboard/internal/storage"

	"github.com/shopspring/decimal"
)

// Snapshotter computes and persists the daily net-worth snapshot. Every
// figure is recomputed from live provider data at write time; the store
// keeps at most one record per calendar day.
type Snapshotter struct {
	feed    FeedProvider
	broker  Brokerage
	store   Store
	events  EventPublisher // nil disables event publishing
	usdRate decimal.Decimal
}

func NewSnapshotter(feed FeedProvider, broker Brokerage, store Store, events EventPublisher, usdRate decimal.Decimal) *Snapshotter {
	return &Snapshotter{
		feed:    feed,
		broker:  broker,
		store:   store,
		events:  events,
		usdRate: usdRate,
	}
}

// WriteDailySnapshot values the portfolio, totals the savings spaces and
// replaces the snapshot for now's calendar day. A second run on the same
// day overwrites the earlier record rather than adding one.
//
// A publish failure does not fail the snapshot; the record is already
// durable and consumers catch up from the store.
func (s *Snapshotter) WriteDailySnapshot(ctx context.Context, accountUID string, now time.Time) (core.PortfolioSnapshot, error) {
	holdings, err := s.broker.Portfolio(ctx)
	if err != nil {
		return core.PortfolioSnapshot{}, fmt.Errorf("fetch portfolio: %w", err)
	}

	portfolioValue := decimal.Zero
	values := make([]core.HoldingValue, 0, len(holdings))
	for _, h := range holdings {
		price := core.NormalizePrice(h.Ticker, h.Price, s.usdRate)
		value := h.Quantity.Mul(price)
		portfolioValue = portfolioValue.Add(value)
		values = append(values, core.HoldingValue{
			Ticker:   h.Ticker,
			Quantity: h.Quantity,
			Price:    price,
			Value:    value,
		})
	}

	spaces, err := s.feed.SavingsSpaces(ctx, accountUID)
	if err != nil {
		return core.PortfolioSnapshot{}, fmt.Errorf("fetch savings spaces: %w", err)
	}
	savings := core.Money{}
	for _, space := range spaces {
		savings = savings.Add(space.Saved)
	}

	netDeposit, err := s.store.NetDeposit(ctx)
	if err != nil {
		return core.PortfolioSnapshot{}, fmt.Errorf("aggregate net deposit: %w", err)
	}

	snapshot := core.PortfolioSnapshot{
		Date:           now,
		NetDeposit:     netDeposit.Decimal(),
		PortfolioValue: portfolioValue,
		SavingsTotal:   savings.Decimal(),
		NetWorth:       savings.Decimal().Add(portfolioValue),
		Holdings:       values,
	}

	if err := s.store.ReplaceSnapshot(ctx, snapshot); err != nil {
		return core.PortfolioSnapshot{}, fmt.Errorf("persist snapshot: %w", err)
	}

	if s.events != nil {
		day := now.UTC().Format(storage.SnapshotDateLayout)
		if err := s.events.PublishSnapshotWritten(ctx, day, snapshot.NetWorth); err != nil {
			slog.WarnContext(ctx, "Snapshot event not published",
				"date", day,
				"error", err)
		}
	}

	return snapshot, nil
}
