package http

import (
	"net/http"
	"time"

	"tally/internal/core"
	applog "tally/internal/log"
	"tally/internal/report"
)

type summaryResponse struct {
	Total       core.Money           `json:"total"`
	MonthTotal  core.Money           `json:"monthTotal"`
	TopCategory report.CategoryTotal `json:"topCategory"`
	Count       int                  `json:"count"`
}

// snapshot fetches the transactions a report aggregates over. Each request
// reads the store exactly once; derived views are never cached.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) ([]core.Transaction, bool) {
	txs, err := s.transactions.List(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Report snapshot failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return nil, false
	}
	return txs, true
}

func (s *Server) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	txs, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	total, err := s.engine.TotalSpend(txs)
	if err != nil {
		writeReportError(w, r, err)
		return
	}
	ref := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthTotal, err := s.engine.MonthTotal(txs, ref)
	if err != nil {
		writeReportError(w, r, err)
		return
	}
	totals, err := s.engine.CategoryTotals(txs)
	if err != nil {
		writeReportError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Total:       total,
		MonthTotal:  monthTotal,
		TopCategory: report.TopCategory(totals),
		Count:       len(txs),
	})
}

func (s *Server) handleReportCategories(w http.ResponseWriter, r *http.Request) {
	txs, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	totals, err := s.engine.CategoryTotals(txs)
	if err != nil {
		writeReportError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Rank(totals))
}

func (s *Server) handleReportMonthly(w http.ResponseWriter, r *http.Request) {
	txs, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	series, err := s.engine.MonthlySeries(txs)
	if err != nil {
		writeReportError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleReportBudgets(w http.ResponseWriter, r *http.Request) {
	txs, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	budgets, err := s.budgets.List(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "List budgets failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch budgets")
		return
	}
	totals, err := s.engine.CategoryTotals(txs)
	if err != nil {
		writeReportError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Reconcile(totals, budgets))
}

// writeReportError surfaces an aggregation failure. A validation error here
// means a corrupt stored record, which is a server-side problem.
func writeReportError(w http.ResponseWriter, r *http.Request, err error) {
	applog.FromContext(r.Context()).ErrorContext(r.Context(), "Aggregation failed", "error", err)
	writeError(w, http.StatusInternalServerError, "Failed to compute report")
}
