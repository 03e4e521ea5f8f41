// Package http exposes the REST API over the record store and the
// aggregation engine.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "tally/internal/log"
	"tally/internal/report"
	"tally/internal/services"
)

type Server struct {
	http.Server
	transactions *services.TransactionService
	budgets      *services.BudgetService
	engine       *report.Engine
	rateLimiter  *rateLimiter
	metrics      *metrics
	shutdownOnce sync.Once
}

// Options tunes server behavior beyond its collaborators.
type Options struct {
	// RateLimitPerMinute caps mutating requests per client IP. Zero means
	// the default of 60.
	RateLimitPerMinute int

	// Logger is attached to every request context. Defaults to a text
	// logger when nil.
	Logger *applog.Logger
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, transactions *services.TransactionService, budgets *services.BudgetService, opts Options) *Server {
	perMinute := opts.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:         addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		transactions: transactions,
		budgets:      budgets,
		engine:       report.New(),
		rateLimiter:  newRateLimiter(perMinute),
		metrics:      newMetrics(),
	}

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /api/transactions/recent", s.handleRecentTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleReplaceTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleSetBudget)

	mux.HandleFunc("GET /api/reports/summary", s.handleReportSummary)
	mux.HandleFunc("GET /api/reports/categories", s.handleReportCategories)
	mux.HandleFunc("GET /api/reports/monthly", s.handleReportMonthly)
	mux.HandleFunc("GET /api/reports/budgets", s.handleReportBudgets)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.metrics.handler())

	s.Server.Handler = applog.Middleware(logger)(s.withMiddleware(mux))
	return s
}

// Shutdown stops the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.budgets.List(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store not reachable")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
