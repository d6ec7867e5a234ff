package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finboard/internal/core"
	"finboard/internal/storage"

	"github.com/shopspring/decimal"
)

const defaultHistoryLimit = 90

type budgetDTO struct {
	Remaining decimal.Decimal `json:"remaining"`
	Spent     decimal.Decimal `json:"spent"`
}

type budgetsResponse struct {
	PocketMoney budgetDTO `json:"pocket_money"`
	Groceries   budgetDTO `json:"groceries"`
}

type balancePointDTO struct {
	Date    string          `json:"date"`
	Delta   decimal.Decimal `json:"delta"`
	Balance decimal.Decimal `json:"balance"`
}

type categoryDTO struct {
	Category  string          `json:"category"`
	Total     decimal.Decimal `json:"total"`
	Direction core.Direction  `json:"direction"`
}

type transactionDTO struct {
	Date         string          `json:"date"`
	Counterparty string          `json:"counterparty"`
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Direction    core.Direction  `json:"direction"`
}

type holdingDTO struct {
	Ticker   string          `json:"ticker"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Value    decimal.Decimal `json:"value"`
}

type snapshotDTO struct {
	Date           string          `json:"date"`
	NetDeposit     decimal.Decimal `json:"net_deposit"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	SavingsTotal   decimal.Decimal `json:"savings_total"`
	NetWorth       decimal.Decimal `json:"net_worth"`
	Holdings       []holdingDTO    `json:"holdings"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ready")
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	budgets, err := s.dashboard.Budgets(r.Context(), time.Now())
	if err != nil {
		s.writeServiceError(w, r, "budgets", err)
		return
	}

	writeJSON(w, http.StatusOK, budgetsResponse{
		PocketMoney: budgetDTO{Remaining: budgets.PocketMoney.Remaining, Spent: budgets.PocketMoney.Spent},
		Groceries:   budgetDTO{Remaining: budgets.Groceries.Remaining, Spent: budgets.Groceries.Spent},
	})
}

func (s *Server) handleSavingsHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const cacheKey = "savings_history"
	points, hit := s.savingsCache.Get(cacheKey)
	if !hit {
		var err error
		points, err = s.dashboard.SavingsHistory(r.Context(), time.Now())
		if err != nil {
			s.writeServiceError(w, r, "savings history", err)
			return
		}
		s.savingsCache.Set(cacheKey, points)
	}

	rows := make([]balancePointDTO, 0, len(points))
	for _, p := range points {
		rows = append(rows, balancePointDTO{
			Date:    p.Date.UTC().Format(storage.SnapshotDateLayout),
			Delta:   p.Delta,
			Balance: p.Balance,
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	year, month, err := parseYearMonth(r, time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cacheKey := fmt.Sprintf("%d-%s", year, month)
	rows, hit := s.categoriesCache.Get(cacheKey)
	if !hit {
		rows, err = s.dashboard.MonthlyCategories(r.Context(), year, month)
		if err != nil {
			s.writeServiceError(w, r, "monthly categories", err)
			return
		}
		s.categoriesCache.Set(cacheKey, rows)
	}

	out := make([]categoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, categoryDTO{Category: row.Category, Total: row.Total, Direction: row.Direction})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rows, err := s.dashboard.Transactions(r.Context(), time.Now())
	if err != nil {
		s.writeServiceError(w, r, "transactions", err)
		return
	}

	out := make([]transactionDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, transactionDTO{
			Date:         row.Date,
			Counterparty: row.Counterparty,
			Category:     row.Category,
			Amount:       row.Amount,
			Currency:     row.Currency,
			Direction:    row.Direction,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNetWorth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snapshot, err := s.dashboard.NetWorth(r.Context())
	if errors.Is(err, storage.ErrNoSnapshots) {
		writeError(w, http.StatusNotFound, "no snapshot stored yet")
		return
	}
	if err != nil {
		s.writeServiceError(w, r, "net worth", err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(snapshot))
}

func (s *Server) handleNetWorthHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		limit = parsed
	}

	snapshots, err := s.dashboard.SnapshotHistory(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, r, "net worth history", err)
		return
	}

	out := make([]snapshotDTO, 0, len(snapshots))
	for _, snapshot := range snapshots {
		out = append(out, toSnapshotDTO(snapshot))
	}
	writeJSON(w, http.StatusOK, out)
}

func toSnapshotDTO(snapshot core.PortfolioSnapshot) snapshotDTO {
	holdings := make([]holdingDTO, 0, len(snapshot.Holdings))
	for _, h := range snapshot.Holdings {
		holdings = append(holdings, holdingDTO{Ticker: h.Ticker, Quantity: h.Quantity, Price: h.Price, Value: h.Value})
	}
	return snapshotDTO{
		Date:           snapshot.Date.UTC().Format(storage.SnapshotDateLayout),
		NetDeposit:     snapshot.NetDeposit,
		PortfolioValue: snapshot.PortfolioValue,
		SavingsTotal:   snapshot.SavingsTotal,
		NetWorth:       snapshot.NetWorth,
		Holdings:       holdings,
	}
}

// parseYearMonth reads the year and month-name query parameters, matching
// the provider's insight query shape. Both default to the current month.
func parseYearMonth(r *http.Request, now time.Time) (int, time.Month, error) {
	year := now.Year()
	month := now.Month()

	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2000 || parsed > 2200 {
			return 0, 0, fmt.Errorf("invalid year %q", raw)
		}
		year = parsed
	}

	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := parseMonthName(raw)
		if err != nil {
			return 0, 0, err
		}
		month = parsed
	}

	return year, month, nil
}

func parseMonthName(s string) (time.Month, error) {
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("invalid month %q", s)
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.ErrorContext(r.Context(), "Request failed", "operation", op, "error", err)
	writeError(w, http.StatusBadGateway, "upstream data unavailable")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
