package http

import (
	"net/http"

	"tally/internal/core"
	applog "tally/internal/log"
)

// budgetRequest is the wire shape of a set-budget body. Amount is a pointer
// so an absent field is rejected rather than defaulted to zero.
type budgetRequest struct {
	Category core.Category `json:"category"`
	Amount   *core.Money   `json:"amount"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.budgets.List(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "List budgets failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch budgets")
		return
	}
	if budgets == nil {
		budgets = []core.Budget{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount == nil {
		writeValidationError(w, &core.ValidationError{Field: "amount", Err: core.ErrMissingAmount})
		return
	}
	b := core.Budget{Category: req.Category, Amount: *req.Amount}
	if !writeValidationError(w, b.Validate()) {
		return
	}

	saved, err := s.budgets.Set(r.Context(), b.Category, b.Amount)
	if err != nil {
		if writeKnownError(w, r, err) {
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Set budget failed", "error", err, "category", b.Category)
		writeError(w, http.StatusInternalServerError, "Failed to save budget")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
