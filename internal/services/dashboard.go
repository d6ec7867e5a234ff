package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"finboard/internal/bank"
	"finboard/internal/core"

	"github.com/shopspring/decimal"
)

// groceriesSpaceName is the savings space funding the groceries budget.
const groceriesSpaceName = "Groceries"

var (
	ErrNoAccounts       = errors.New("no accounts visible to credential")
	ErrNoSavingsAccount = errors.New("no savings account visible to credential")
)

// Dashboard computes the read-side figures: budget status, savings
// history, category rollups, transaction rows and stored snapshots.
type Dashboard struct {
	feed         FeedProvider
	store        Store
	pocketMoney  core.Allowance
	groceries    core.Money
	anchorDay    int
	savingsStart time.Time
}

func NewDashboard(feed FeedProvider, store Store, pocketMoney core.Allowance, groceries core.Money, anchorDay int, savingsStart time.Time) *Dashboard {
	return &Dashboard{
		feed:         feed,
		store:        store,
		pocketMoney:  pocketMoney,
		groceries:    groceries,
		anchorDay:    anchorDay,
		savingsStart: savingsStart,
	}
}

// Budgets is the remaining-vs-spent state of both allowances.
type Budgets struct {
	PocketMoney core.BudgetStatus
	Groceries   core.BudgetStatus
}

// TransactionRow is one display-ready feed line.
type TransactionRow struct {
	Date         string
	Counterparty string
	Category     string
	Amount       decimal.Decimal
	Currency     string
	Direction    core.Direction
}

// Budgets computes both allowance states for the budgeting period that
// contains now. Pocket money counts the period's non-excluded OUT
// transactions; groceries derives from the saved balance of the groceries
// space. A missing groceries space reads as a fully spent allowance.
func (d *Dashboard) Budgets(ctx context.Context, now time.Time) (Budgets, error) {
	account, err := d.currentAccount(ctx)
	if err != nil {
		return Budgets{}, err
	}

	period := core.CurrentPeriod(now, d.anchorDay)
	transactions, err := d.feed.TransactionsBetween(ctx, account.UID, account.DefaultCategory, period.Start, period.End)
	if err != nil {
		return Budgets{}, fmt.Errorf("fetch period feed: %w", err)
	}

	spaces, err := d.feed.SavingsSpaces(ctx, account.UID)
	if err != nil {
		return Budgets{}, fmt.Errorf("fetch savings spaces: %w", err)
	}
	var groceriesSaved core.Money
	if space, ok := findSpace(spaces, groceriesSpaceName); ok {
		groceriesSaved = space.Saved
	}

	return Budgets{
		PocketMoney: core.RemainingAndSpent(d.pocketMoney, transactions),
		Groceries:   core.RemainingFromBalance(d.groceries, groceriesSaved),
	}, nil
}

// SavingsHistory reconciles the savings account feed since the configured
// window start into a running balance series, oldest first.
func (d *Dashboard) SavingsHistory(ctx context.Context, now time.Time) ([]core.BalancePoint, error) {
	account, err := d.savingsAccount(ctx)
	if err != nil {
		return nil, err
	}

	balance, err := d.feed.Balance(ctx, account.UID)
	if err != nil {
		return nil, fmt.Errorf("fetch savings balance: %w", err)
	}

	transactions, err := d.feed.TransactionsBetween(ctx, account.UID, account.DefaultCategory, d.savingsStart, now)
	if err != nil {
		return nil, fmt.Errorf("fetch savings feed: %w", err)
	}

	return core.Reconcile(balance, transactions), nil
}

// MonthlyCategories rolls the provider's spending insight for one month up
// into display rows, folding the groceries space spend into its category.
// An empty result means no activity, not a failure.
func (d *Dashboard) MonthlyCategories(ctx context.Context, year int, month time.Month) ([]core.CategoryTotal, error) {
	account, err := d.currentAccount(ctx)
	if err != nil {
		return nil, err
	}

	breakdown, err := d.feed.MonthlyBreakdown(ctx, account.UID, year, month)
	if err != nil {
		return nil, fmt.Errorf("fetch monthly breakdown: %w", err)
	}

	spaces, err := d.feed.SavingsSpaces(ctx, account.UID)
	if err != nil {
		return nil, fmt.Errorf("fetch savings spaces: %w", err)
	}

	var extras []core.CategoryTotal
	if space, ok := findSpace(spaces, groceriesSpaceName); ok {
		spent := core.RemainingFromBalance(d.groceries, space.Saved).Spent
		if spent.IsPositive() {
			extras = append(extras, core.CategoryTotal{
				Category:  groceriesSpaceName,
				Total:     spent,
				Direction: core.Out,
			})
		}
	}

	return core.AggregateCategories(breakdown, extras), nil
}

// Transactions returns the current budgeting period's feed as display
// rows in chronological order.
func (d *Dashboard) Transactions(ctx context.Context, now time.Time) ([]TransactionRow, error) {
	account, err := d.currentAccount(ctx)
	if err != nil {
		return nil, err
	}

	period := core.CurrentPeriod(now, d.anchorDay)
	transactions, err := d.feed.TransactionsBetween(ctx, account.UID, account.DefaultCategory, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("fetch period feed: %w", err)
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Timestamp.Before(transactions[j].Timestamp)
	})

	rows := make([]TransactionRow, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, TransactionRow{
			Date:         t.DisplayDate(),
			Counterparty: t.DisplayCounterparty(),
			Category:     t.DisplayCategory(),
			Amount:       t.Amount.Decimal(),
			Currency:     t.Currency,
			Direction:    t.Direction,
		})
	}
	return rows, nil
}

// NetWorth returns the most recent stored snapshot.
func (d *Dashboard) NetWorth(ctx context.Context) (core.PortfolioSnapshot, error) {
	return d.store.LatestSnapshot(ctx)
}

// SnapshotHistory returns up to limit stored snapshots, newest first.
func (d *Dashboard) SnapshotHistory(ctx context.Context, limit int) ([]core.PortfolioSnapshot, error) {
	return d.store.LatestSnapshots(ctx, limit)
}

// currentAccount resolves the spending account: the provider lists it
// first.
func (d *Dashboard) currentAccount(ctx context.Context) (bank.Account, error) {
	accounts, err := d.feed.Accounts(ctx)
	if err != nil {
		return bank.Account{}, fmt.Errorf("fetch accounts: %w", err)
	}
	if len(accounts) == 0 {
		return bank.Account{}, ErrNoAccounts
	}
	return accounts[0], nil
}

// savingsAccount resolves the savings account: the provider lists it
// second.
func (d *Dashboard) savingsAccount(ctx context.Context) (bank.Account, error) {
	accounts, err := d.feed.Accounts(ctx)
	if err != nil {
		return bank.Account{}, fmt.Errorf("fetch accounts: %w", err)
	}
	if len(accounts) < 2 {
		return bank.Account{}, ErrNoSavingsAccount
	}
	return accounts[1], nil
}

func findSpace(spaces []bank.Space, name string) (bank.Space, bool) {
	for _, space := range spaces {
		if strings.EqualFold(space.Name, name) {
			return space, true
		}
	}
	return bank.Space{}, false
}
