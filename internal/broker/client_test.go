package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"finboard/internal/api"
	"finboard/internal/core"

	"github.com/shopspring/decimal"
)

func testPolicy() api.Policy {
	return api.Policy{MaxAttempts: 2, Backoff: time.Millisecond}
}

func TestPortfolio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/equity/portfolio" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Basic dXNlcjpwYXNz" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`[
			{"ticker":"AAPL_US_EQ","quantity":2,"currentPrice":200.5},
			{"ticker":"VUAG_EQ","quantity":10.25,"currentPrice":8250}
		]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "user", "pass", testPolicy())
	holdings, err := c.Portfolio(context.Background())
	if err != nil {
		t.Fatalf("Portfolio() error = %v", err)
	}
	if len(holdings) != 2 {
		t.Fatalf("got %d holdings, want 2", len(holdings))
	}
	if holdings[0].Ticker != "AAPL_US_EQ" || !holdings[0].Quantity.Equal(decimal.NewFromInt(2)) {
		t.Errorf("holding = %+v", holdings[0])
	}
}

func orderJSON(id int, orderType string, value float64, filledAt time.Time) string {
	return fmt.Sprintf(`{"id":%d,"ticker":"VUAG_EQ","type":%q,"filledValue":%v,"dateModified":%q}`,
		id, orderType, value, filledAt.Format(time.RFC3339))
}

func TestOrders_StopsAtCutoffPage(t *testing.T) {
	cutoff := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	newer := cutoff.AddDate(0, 1, 0)
	older := cutoff.AddDate(0, -1, 0)

	var page3Fetched atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/equity/history/orders", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("cursor") {
		case "":
			next := "/equity/history/orders?cursor=p2&limit=50"
			fmt.Fprintf(w, `{"items":[%s,%s],"nextPagePath":%q}`,
				orderJSON(1, "MARKET_BUY", 100, newer.AddDate(0, 0, 2)),
				orderJSON(2, "MARKET_BUY", 50, newer),
				next)
		case "p2":
			// Mixed page: one item inside the window, one past the cutoff.
			next := "/equity/history/orders?cursor=p3&limit=50"
			fmt.Fprintf(w, `{"items":[%s,%s],"nextPagePath":%q}`,
				orderJSON(3, "MARKET_SELL", 25, cutoff.AddDate(0, 0, 1)),
				orderJSON(4, "MARKET_BUY", 75, older),
				next)
		case "p3":
			page3Fetched.Store(true)
			fmt.Fprintf(w, `{"items":[%s]}`, orderJSON(5, "MARKET_BUY", 10, older.AddDate(0, -1, 0)))
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, "user", "pass", testPolicy())
	orders, err := c.Orders(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("Orders() error = %v", err)
	}

	if len(orders) != 3 {
		t.Fatalf("got %d orders, want 3 (older item on mixed page excluded)", len(orders))
	}
	for _, o := range orders {
		if o.FilledAt.Before(cutoff) {
			t.Errorf("order %s filled %v is past the cutoff", o.ID, o.FilledAt)
		}
	}
	if page3Fetched.Load() {
		t.Error("page after the cutoff boundary was fetched")
	}
}

func TestOrders_StopsWhenPointerAbsent(t *testing.T) {
	filled := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"items":[%s]}`, orderJSON(1, "MARKET_SELL", 42.5, filled))
	}))
	defer srv.Close()

	c := New(srv.URL, "user", "pass", testPolicy())
	orders, err := c.Orders(context.Background(), filled.AddDate(0, -3, 0))
	if err != nil {
		t.Fatalf("Orders() error = %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	if orders[0].Side != core.Sell {
		t.Errorf("side = %s, want SELL", orders[0].Side)
	}
	if orders[0].CashImpact.MinorUnits != 4250 {
		t.Errorf("cash impact = %d minor units, want 4250", orders[0].CashImpact.MinorUnits)
	}
}

func TestOrders_UnknownTypeFails(t *testing.T) {
	filled := time.Now().UTC()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := map[string]any{"items": []map[string]any{{
			"id": 9, "ticker": "X_EQ", "type": "DIVIDEND", "filledValue": 1.0,
			"dateModified": filled.Format(time.RFC3339),
		}}}
		json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	c := New(srv.URL, "user", "pass", testPolicy())
	if _, err := c.Orders(context.Background(), filled.AddDate(0, -1, 0)); err == nil {
		t.Fatal("Orders() succeeded, want error for unknown order type")
	}
}
