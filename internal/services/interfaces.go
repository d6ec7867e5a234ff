// Package services wires the provider clients, the pure core transforms
// and the snapshot store into the operations the commands and the HTTP
// layer call. Collaborators are consumed through interfaces so tests can
// substitute fakes.
package services

import (
	"context"
	"time"

	"finboard/internal/bank"
	"finboard/internal/core"

	"github.com/shopspring/decimal"
)

// FeedProvider is the transaction feed side of the bank client.
type FeedProvider interface {
	Accounts(ctx context.Context) ([]bank.Account, error)
	Balance(ctx context.Context, accountUID string) (core.Money, error)
	TransactionsBetween(ctx context.Context, accountUID, categoryUID string, from, to time.Time) ([]core.Transaction, error)
	MonthlyBreakdown(ctx context.Context, accountUID string, year int, month time.Month) ([]core.BreakdownEntry, error)
	SavingsSpaces(ctx context.Context, accountUID string) ([]bank.Space, error)
}

// Brokerage is the holdings and order history side of the broker client.
type Brokerage interface {
	Portfolio(ctx context.Context) ([]core.Holding, error)
	Orders(ctx context.Context, cutoff time.Time) ([]core.Order, error)
}

// Store is the persistence surface the services need.
type Store interface {
	KnownTransactionIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
	KnownOrderIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
	InsertTransactions(ctx context.Context, accountUID string, transactions []core.Transaction) error
	InsertOrders(ctx context.Context, orders []core.Order) error
	NetDeposit(ctx context.Context) (core.Money, error)
	ReplaceSnapshot(ctx context.Context, snapshot core.PortfolioSnapshot) error
	LatestSnapshots(ctx context.Context, limit int) ([]core.PortfolioSnapshot, error)
	LatestSnapshot(ctx context.Context) (core.PortfolioSnapshot, error)
}

// EventPublisher announces written snapshots to downstream consumers.
type EventPublisher interface {
	PublishSnapshotWritten(ctx context.Context, snapshotDate string, netWorth decimal.Decimal) error
}
