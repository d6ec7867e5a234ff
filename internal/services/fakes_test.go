package services

import (
	"context"
	"errors"
	"time"

	"finboard/internal/bank"
	"finboard/internal/core"

	"github.com/shopspring/decimal"
)

var errNoFakeSnapshots = errors.New("no snapshots stored")

type fakeFeed struct {
	accounts     []bank.Account
	accountsErr  error
	balance      core.Money
	balanceErr   error
	transactions []core.Transaction
	feedErr      error
	breakdown    []core.BreakdownEntry
	breakdownErr error
	spaces       []bank.Space
	spacesErr    error

	feedCalls []feedCall
}

type feedCall struct {
	accountUID  string
	categoryUID string
	from, to    time.Time
}

func (f *fakeFeed) Accounts(ctx context.Context) ([]bank.Account, error) {
	return f.accounts, f.accountsErr
}

func (f *fakeFeed) Balance(ctx context.Context, accountUID string) (core.Money, error) {
	return f.balance, f.balanceErr
}

func (f *fakeFeed) TransactionsBetween(ctx context.Context, accountUID, categoryUID string, from, to time.Time) ([]core.Transaction, error) {
	f.feedCalls = append(f.feedCalls, feedCall{accountUID, categoryUID, from, to})
	return f.transactions, f.feedErr
}

func (f *fakeFeed) MonthlyBreakdown(ctx context.Context, accountUID string, year int, month time.Month) ([]core.BreakdownEntry, error) {
	return f.breakdown, f.breakdownErr
}

func (f *fakeFeed) SavingsSpaces(ctx context.Context, accountUID string) ([]bank.Space, error) {
	return f.spaces, f.spacesErr
}

type fakeBroker struct {
	holdings  []core.Holding
	portErr   error
	orders    []core.Order
	ordersErr error
}

func (f *fakeBroker) Portfolio(ctx context.Context) ([]core.Holding, error) {
	return f.holdings, f.portErr
}

func (f *fakeBroker) Orders(ctx context.Context, cutoff time.Time) ([]core.Order, error) {
	return f.orders, f.ordersErr
}

type fakeStore struct {
	knownTx     map[string]struct{}
	knownOrders map[string]struct{}
	netDeposit  core.Money
	snapshots   []core.PortfolioSnapshot

	insertedTx     []core.Transaction
	insertedOrders []core.Order
	replaced       []core.PortfolioSnapshot
}

func (f *fakeStore) KnownTransactionIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	return intersect(f.knownTx, ids), nil
}

func (f *fakeStore) KnownOrderIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	return intersect(f.knownOrders, ids), nil
}

func intersect(known map[string]struct{}, ids []string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, id := range ids {
		if _, ok := known[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

func (f *fakeStore) InsertTransactions(ctx context.Context, accountUID string, transactions []core.Transaction) error {
	f.insertedTx = append(f.insertedTx, transactions...)
	return nil
}

func (f *fakeStore) InsertOrders(ctx context.Context, orders []core.Order) error {
	f.insertedOrders = append(f.insertedOrders, orders...)
	return nil
}

func (f *fakeStore) NetDeposit(ctx context.Context) (core.Money, error) {
	return f.netDeposit, nil
}

func (f *fakeStore) ReplaceSnapshot(ctx context.Context, snapshot core.PortfolioSnapshot) error {
	f.replaced = append(f.replaced, snapshot)
	return nil
}

func (f *fakeStore) LatestSnapshots(ctx context.Context, limit int) ([]core.PortfolioSnapshot, error) {
	if limit > len(f.snapshots) {
		limit = len(f.snapshots)
	}
	return f.snapshots[:limit], nil
}

func (f *fakeStore) LatestSnapshot(ctx context.Context) (core.PortfolioSnapshot, error) {
	if len(f.snapshots) == 0 {
		return core.PortfolioSnapshot{}, errNoFakeSnapshots
	}
	return f.snapshots[0], nil
}

type fakePublisher struct {
	published []publishedEvent
	err       error
}

type publishedEvent struct {
	date     string
	netWorth decimal.Decimal
}

func (f *fakePublisher) PublishSnapshotWritten(ctx context.Context, snapshotDate string, netWorth decimal.Decimal) error {
	f.published = append(f.published, publishedEvent{snapshotDate, netWorth})
	return f.err
}
