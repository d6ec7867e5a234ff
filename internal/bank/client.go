// Package bank integrates the transaction feed provider: accounts,
// balances, transaction feeds, monthly spending insights and savings
// spaces. All calls go through the retry-wrapped api client.
package bank

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finboard/internal/api"
	"finboard/internal/core"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the provider's ISO-8601 UTC format with microsecond
// precision, used for feed window query parameters.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

type Client struct {
	api *api.Client
}

// New builds a feed provider client authenticated with a bearer token.
func New(baseURL, token string, policy api.Policy) *Client {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	return &Client{api: api.New(baseURL, header, policy)}
}

// Accounts lists the accounts visible to the credential, in provider
// order. The first account is the current account, the second the
// savings account.
func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	var resp accountsResponse
	if err := c.api.GetJSON(ctx, "/accounts", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch accounts: %w", err)
	}
	return resp.Accounts, nil
}

// Balance returns the effective balance of an account in minor units.
func (c *Client) Balance(ctx context.Context, accountUID string) (core.Money, error) {
	var resp balanceResponse
	path := fmt.Sprintf("/accounts/%s/balance", accountUID)
	if err := c.api.GetJSON(ctx, path, nil, &resp); err != nil {
		return core.Money{}, fmt.Errorf("fetch balance: %w", err)
	}
	return core.Money{MinorUnits: resp.EffectiveBalance.MinorUnits}, nil
}

// TransactionsBetween fetches the feed for one account category inside a
// time window. The provider returns items newest first; no ordering is
// applied here, that is the reconciler's job.
func (c *Client) TransactionsBetween(ctx context.Context, accountUID, categoryUID string, from, to time.Time) ([]core.Transaction, error) {
	query := url.Values{
		"minTransactionTimestamp": {from.UTC().Format(TimestampLayout)},
		"maxTransactionTimestamp": {to.UTC().Format(TimestampLayout)},
	}
	path := fmt.Sprintf("/feed/account/%s/category/%s/transactions-between", accountUID, categoryUID)

	var resp feedResponse
	if err := c.api.GetJSON(ctx, path, query, &resp); err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}

	transactions := make([]core.Transaction, 0, len(resp.FeedItems))
	for _, item := range resp.FeedItems {
		transactions = append(transactions, item.toTransaction())
	}
	return transactions, nil
}

// MonthlyBreakdown returns the provider's per-category spending insight
// for a month. An empty breakdown is a valid no-activity result.
func (c *Client) MonthlyBreakdown(ctx context.Context, accountUID string, year int, month time.Month) ([]core.BreakdownEntry, error) {
	query := url.Values{
		"year":  {strconv.Itoa(year)},
		"month": {strings.ToUpper(month.String())},
	}
	path := fmt.Sprintf("/accounts/%s/spending-insights/spending-category", accountUID)

	var resp insightsResponse
	if err := c.api.GetJSON(ctx, path, query, &resp); err != nil {
		return nil, fmt.Errorf("fetch monthly breakdown: %w", err)
	}

	entries := make([]core.BreakdownEntry, 0, len(resp.Breakdown))
	for _, e := range resp.Breakdown {
		entries = append(entries, core.BreakdownEntry{
			Category:  e.SpendingCategory,
			NetSpend:  decimal.NewFromFloat(e.NetSpend),
			Direction: core.Direction(e.NetDirection),
		})
	}
	return entries, nil
}

// SavingsSpaces lists the savings spaces of an account.
func (c *Client) SavingsSpaces(ctx context.Context, accountUID string) ([]Space, error) {
	var resp spacesResponse
	path := fmt.Sprintf("/account/%s/spaces", accountUID)
	if err := c.api.GetJSON(ctx, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch savings spaces: %w", err)
	}

	spaces := make([]Space, 0, len(resp.SavingsGoals))
	for _, g := range resp.SavingsGoals {
		spaces = append(spaces, Space{
			UID:    g.UID,
			Name:   g.Name,
			Target: core.Money{MinorUnits: g.Target.MinorUnits},
			Saved:  core.Money{MinorUnits: g.TotalSaved.MinorUnits},
		})
	}
	return spaces, nil
}

func (i feedItem) toTransaction() core.Transaction {
	// Settlement time is optional on pending items; fall back to the
	// transaction time, and leave the timestamp zero when both are absent
	// so display layers render the N/A sentinel.
	ts := parseTimestamp(i.SettlementTime)
	if ts.IsZero() {
		ts = parseTimestamp(i.TransactionTime)
	}
	return core.Transaction{
		ID:           i.UID,
		Timestamp:    ts,
		Direction:    core.Direction(i.Direction),
		Amount:       core.Money{MinorUnits: i.SourceAmount.MinorUnits},
		Currency:     i.SourceAmount.Currency,
		Category:     i.SpendingCategory,
		Counterparty: i.CounterPartyName,
	}
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}
