// Package http serializes the dashboard figures as a JSON API. It renders
// nothing; every endpoint returns the computed structures as-is.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finboard/internal/cache"
	"finboard/internal/core"
	"finboard/internal/services"
)

// DashboardService is the read side the handlers serve.
type DashboardService interface {
	Budgets(ctx context.Context, now time.Time) (services.Budgets, error)
	SavingsHistory(ctx context.Context, now time.Time) ([]core.BalancePoint, error)
	MonthlyCategories(ctx context.Context, year int, month time.Month) ([]core.CategoryTotal, error)
	Transactions(ctx context.Context, now time.Time) ([]services.TransactionRow, error)
	NetWorth(ctx context.Context) (core.PortfolioSnapshot, error)
	SnapshotHistory(ctx context.Context, limit int) ([]core.PortfolioSnapshot, error)
}

type Server struct {
	http.Server
	dashboard DashboardService

	// Provider-backed responses are cached briefly to keep page loads from
	// hammering the upstream APIs.
	categoriesCache *cache.LRUCache[[]core.CategoryTotal]
	savingsCache    *cache.LRUCache[[]core.BalancePoint]
	cacheManager    *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and response caches, returning a
// ready-to-run http.Server.
func NewServer(addr string, dashboard DashboardService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		dashboard:       dashboard,
		categoriesCache: cache.NewLRUCache[[]core.CategoryTotal](100, 5*time.Minute),
		savingsCache:    cache.NewLRUCache[[]core.BalancePoint](10, 5*time.Minute),
		cacheManager:    cache.NewManager(),
	}

	s.cacheManager.Register(s.categoriesCache)
	s.cacheManager.Register(s.savingsCache)
	s.cacheManager.StartCleanup(time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/api/budgets", s.withRequestLog(s.handleBudgets))
	mux.HandleFunc("/api/savings/history", s.withRequestLog(s.handleSavingsHistory))
	mux.HandleFunc("/api/categories", s.withRequestLog(s.handleCategories))
	mux.HandleFunc("/api/transactions", s.withRequestLog(s.handleTransactions))
	mux.HandleFunc("/api/networth", s.withRequestLog(s.handleNetWorth))
	mux.HandleFunc("/api/networth/history", s.withRequestLog(s.handleNetWorthHistory))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withRequestLog adds request logging, a request id and defensive headers
func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path)

		w.Header().Set("X-Content-Type-Options", "nosniff")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
