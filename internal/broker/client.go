// Package broker integrates the brokerage provider: the current portfolio
// and the cursor-paginated order history.
package broker

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"finboard/internal/api"
	"finboard/internal/core"

	"github.com/shopspring/decimal"
)

const (
	ordersPath = "/equity/history/orders"

	// DefaultOrderWindow bounds how far back order-history pagination
	// walks when the caller has no stored orders yet.
	DefaultOrderWindow = 90 * 24 * time.Hour

	pageLimit = 50
)

type Client struct {
	api *api.Client
}

// New builds a brokerage client. The provider authenticates requests with
// a username/password credential pair.
func New(baseURL, username, password string, policy api.Policy) *Client {
	header := http.Header{}
	credential := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	header.Set("Authorization", "Basic "+credential)
	return &Client{api: api.New(baseURL, header, policy)}
}

// Portfolio returns the current holdings with raw provider quotes.
func (c *Client) Portfolio(ctx context.Context) ([]core.Holding, error) {
	var positions []position
	if err := c.api.GetJSON(ctx, "/equity/portfolio", nil, &positions); err != nil {
		return nil, fmt.Errorf("fetch portfolio: %w", err)
	}

	holdings := make([]core.Holding, 0, len(positions))
	for _, p := range positions {
		holdings = append(holdings, core.Holding{
			Ticker:   p.Ticker,
			Quantity: decimal.NewFromFloat(p.Quantity),
			Price:    decimal.NewFromFloat(p.CurrentPrice),
		})
	}
	return holdings, nil
}

// Orders walks the order history backwards through the provider's
// next-page pointer and returns filled orders no older than cutoff.
//
// Iteration halts when the pointer is absent or when the current page
// contains an item past the cutoff; in the latter case the newer items of
// that page are kept, the older ones dropped, and no further page is
// fetched.
func (c *Client) Orders(ctx context.Context, cutoff time.Time) ([]core.Order, error) {
	var orders []core.Order

	path := ordersPath
	query := url.Values{"limit": {strconv.Itoa(pageLimit)}}

	for {
		var page orderPage
		if err := c.api.GetJSON(ctx, path, query, &page); err != nil {
			return nil, fmt.Errorf("fetch order history: %w", err)
		}

		reachedCutoff := false
		for _, item := range page.Items {
			filledAt := parseTimestamp(item.DateModified)
			if filledAt.Before(cutoff) {
				reachedCutoff = true
				continue
			}
			order, err := item.toOrder(filledAt)
			if err != nil {
				return nil, fmt.Errorf("order %d: %w", item.ID, err)
			}
			orders = append(orders, order)
		}

		if reachedCutoff || page.NextPagePath == nil || *page.NextPagePath == "" {
			return orders, nil
		}
		// The pointer is a complete path with its own cursor query.
		path = *page.NextPagePath
		query = nil
	}
}

func (i orderItem) toOrder(filledAt time.Time) (core.Order, error) {
	side, err := sideFor(i.Type)
	if err != nil {
		return core.Order{}, err
	}
	return core.Order{
		ID:         strconv.FormatInt(i.ID, 10),
		Ticker:     i.Ticker,
		Side:       side,
		CashImpact: moneyFromMajor(i.FilledValue),
		FilledAt:   filledAt,
	}, nil
}

func sideFor(orderType string) (core.OrderSide, error) {
	switch orderType {
	case "BUY", "MARKET_BUY", "LIMIT_BUY":
		return core.Buy, nil
	case "SELL", "MARKET_SELL", "LIMIT_SELL":
		return core.Sell, nil
	}
	return "", fmt.Errorf("unknown order type %q", orderType)
}

// moneyFromMajor converts a provider cash value in display units to minor
// units with half-up rounding.
func moneyFromMajor(v float64) core.Money {
	minor := decimal.NewFromFloat(v).Shift(2).Round(0)
	return core.Money{MinorUnits: minor.IntPart()}
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
