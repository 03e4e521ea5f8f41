package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tally/internal/core"
	applog "tally/internal/log"
	"tally/internal/memory"
	"tally/internal/report"
	"tally/internal/services"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	mem := memory.New()
	srv := NewServer(":0",
		services.NewTransactionService(mem, nil),
		services.NewBudgetService(mem, nil),
		opts)
	ts := httptest.NewServer(srv.Server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func txBody(date, desc string, amount float64, category string) map[string]any {
	return map[string]any{
		"date":        date,
		"description": desc,
		"amount":      amount,
		"category":    category,
	}
}

func TestTransactionLifecycle(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions",
		txBody("2024-04-10", "groceries", 42.50, "food"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	created := decodeBody[core.Transaction](t, resp)
	if created.ID == "" {
		t.Fatal("created transaction has no id")
	}
	if created.Amount.Cents != 4250 {
		t.Errorf("amount = %d cents, want 4250", created.Amount.Cents)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/transactions", nil)
	list := decodeBody[[]core.Transaction](t, resp)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("unexpected list: %+v", list)
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/transactions/"+created.ID,
		txBody("2024-04-11", "groceries and wine", 55.00, "food"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("replace status = %d, want 200", resp.StatusCode)
	}
	replaced := decodeBody[core.Transaction](t, resp)
	if replaced.ID != created.ID {
		t.Errorf("replace changed id: %s -> %s", created.ID, replaced.ID)
	}
	if replaced.Description != "groceries and wine" {
		t.Errorf("description = %q", replaced.Description)
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/transactions/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", resp.StatusCode)
	}
	msg := decodeBody[map[string]string](t, resp)
	if msg["message"] != "Transaction deleted successfully" {
		t.Errorf("delete message = %q", msg["message"])
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/transactions", nil)
	if remaining := decodeBody[[]core.Transaction](t, resp); len(remaining) != 0 {
		t.Errorf("expected empty list after delete, got %+v", remaining)
	}
}

func TestUnknownIDReturns404(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := doJSON(t, http.MethodDelete, ts.URL+"/api/transactions/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("delete status = %d, want 404", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["message"] == "" {
		t.Error("404 body missing message")
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/transactions/nope",
		txBody("2024-04-10", "x", 1, "food"))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("replace status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCreateValidation(t *testing.T) {
	ts := newTestServer(t, Options{})

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"unknown category", txBody("2024-04-10", "rent", 800, "housing"), "category"},
		{"negative amount", txBody("2024-04-10", "refund", -5, "other"), "amount"},
		{"missing amount", map[string]any{"date": "2024-04-10", "description": "no amount", "category": "food"}, "amount"},
		{"empty description", txBody("2024-04-10", "", 5, "other"), "description"},
		{"missing date", map[string]any{"description": "x", "amount": 5, "category": "other"}, "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			body := decodeBody[map[string]string](t, resp)
			if body["field"] != tt.field {
				t.Errorf("field = %q, want %q", body["field"], tt.field)
			}
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/transactions", "application/json",
			bytes.NewBufferString("{not json"))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/transactions", nil)
	if list := decodeBody[[]core.Transaction](t, resp); len(list) != 0 {
		t.Fatalf("rejected requests must not create records: %+v", list)
	}
}

func TestRecentTransactionsCapped(t *testing.T) {
	ts := newTestServer(t, Options{})

	for day := 1; day <= 5; day++ {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions",
			txBody(fmt.Sprintf("2024-04-%02d", day), "entry", 10, "other"))
		resp.Body.Close()
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/transactions/recent", nil)
	recent := decodeBody[[]core.Transaction](t, resp)
	if len(recent) != 3 {
		t.Fatalf("got %d recent, want 3", len(recent))
	}
	if recent[0].Date.Day() != 5 || recent[2].Date.Day() != 3 {
		t.Errorf("recent not newest-first: %+v", recent)
	}
}

func TestBudgetUpsertDoesNotDuplicate(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/budgets",
		map[string]any{"category": "food", "amount": 500})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set status = %d, want 200", resp.StatusCode)
	}
	first := decodeBody[core.Budget](t, resp)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/budgets",
		map[string]any{"category": "food", "amount": 650})
	second := decodeBody[core.Budget](t, resp)
	if second.ID != first.ID {
		t.Errorf("upsert changed id: %s -> %s", first.ID, second.ID)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/budgets", nil)
	budgets := decodeBody[[]core.Budget](t, resp)
	if len(budgets) != 1 {
		t.Fatalf("got %d budgets, want 1", len(budgets))
	}
	if budgets[0].Amount.Cents != 65000 {
		t.Errorf("amount = %d cents, want 65000", budgets[0].Amount.Cents)
	}
}

func TestSetBudgetValidation(t *testing.T) {
	ts := newTestServer(t, Options{})

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing amount", map[string]any{"category": "food"}, "amount"},
		{"negative amount", map[string]any{"category": "food", "amount": -10}, "amount"},
		{"unknown category", map[string]any{"category": "rent", "amount": 100}, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, ts.URL+"/api/budgets", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			body := decodeBody[map[string]string](t, resp)
			if body["field"] != tt.field {
				t.Errorf("field = %q, want %q", body["field"], tt.field)
			}
		})
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/budgets", nil)
	if budgets := decodeBody[[]core.Budget](t, resp); len(budgets) != 0 {
		t.Fatalf("rejected requests must not create budgets: %+v", budgets)
	}
}

func TestReportEndpoints(t *testing.T) {
	ts := newTestServer(t, Options{})

	seed := []map[string]any{
		txBody("2023-12-15", "december dinner", 30, "food"),
		txBody("2024-01-10", "january bus pass", 30, "transportation"),
		txBody("2024-01-20", "groceries", 20, "food"),
	}
	for _, body := range seed {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", body)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed failed: %d", resp.StatusCode)
		}
		resp.Body.Close()
	}

	t.Run("summary", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, ts.URL+"/api/reports/summary?year=2024&month=1", nil)
		summary := decodeBody[summaryResponse](t, resp)
		if summary.Total.Cents != 8000 {
			t.Errorf("total = %d, want 8000", summary.Total.Cents)
		}
		if summary.MonthTotal.Cents != 5000 {
			t.Errorf("month total = %d, want 5000", summary.MonthTotal.Cents)
		}
		if summary.TopCategory.Category != core.Food {
			t.Errorf("top category = %s, want food", summary.TopCategory.Category)
		}
		if summary.Count != 3 {
			t.Errorf("count = %d, want 3", summary.Count)
		}
	})

	t.Run("categories ranked", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, ts.URL+"/api/reports/categories", nil)
		ranked := decodeBody[[]report.CategoryTotal](t, resp)
		if len(ranked) != 2 {
			t.Fatalf("got %d categories, want 2", len(ranked))
		}
		if ranked[0].Category != core.Food || ranked[0].Total.Cents != 5000 {
			t.Errorf("unexpected first entry: %+v", ranked[0])
		}
	})

	t.Run("monthly chronological", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, ts.URL+"/api/reports/monthly", nil)
		series := decodeBody[[]report.MonthBucket](t, resp)
		if len(series) != 2 {
			t.Fatalf("got %d buckets, want 2", len(series))
		}
		if series[0].Label != "Dec 23" || series[1].Label != "Jan 24" {
			t.Errorf("series out of order: %+v", series)
		}
	})

	t.Run("budget reconciliation", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/budgets",
			map[string]any{"category": "utilities", "amount": 100})
		resp.Body.Close()

		resp = doJSON(t, http.MethodGet, ts.URL+"/api/reports/budgets", nil)
		rows := decodeBody[[]report.BudgetRow](t, resp)
		if len(rows) != 3 {
			t.Fatalf("got %d rows, want 3", len(rows))
		}
		if rows[0].Category != core.Utilities || rows[0].Actual.Cents != 0 {
			t.Errorf("budgeted category should lead with zero actual: %+v", rows[0])
		}
	})

	t.Run("invalid month rejected", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, ts.URL+"/api/reports/summary?month=13", nil)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestRateLimitOnMutations(t *testing.T) {
	ts := newTestServer(t, Options{RateLimitPerMinute: 1})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions",
		txBody("2024-04-10", "first", 1, "other"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first create status = %d, want 201", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/transactions",
		txBody("2024-04-10", "second", 1, "other"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("second create status = %d, want 429", resp.StatusCode)
	}

	// Reads stay unthrottled.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/transactions", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("list status = %d, want 200", resp.StatusCode)
	}
}

func TestHandlerLogsCarryRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{
		Component: applog.ComponentHTTP,
		Handler:   slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}),
	})
	mem := memory.New()
	srv := NewServer(":0",
		services.NewTransactionService(mem, nil),
		services.NewBudgetService(mem, nil),
		Options{Logger: logger})
	ts := httptest.NewServer(srv.Server.Handler)
	defer ts.Close()

	resp := doJSON(t, http.MethodDelete, ts.URL+"/api/transactions/ghost", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "Record not found") {
			if !strings.Contains(line, "request_id=req_") {
				t.Fatalf("handler log line missing request id: %s", line)
			}
			return
		}
	}
	t.Fatal("expected a not-found log line")
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, Options{})

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}
