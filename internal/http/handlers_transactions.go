package http

import (
	"errors"
	"net/http"

	"tally/internal/core"
	applog "tally/internal/log"
	"tally/internal/store"
)

const recentDefaultLimit = 3

// transactionRequest is the wire shape of create and replace bodies. Amount
// is a pointer so an absent field is distinguishable from an explicit zero:
// a record without an amount is rejected, never defaulted.
type transactionRequest struct {
	ID          string        `json:"id"`
	Date        core.Date     `json:"date"`
	Description string        `json:"description"`
	Amount      *core.Money   `json:"amount"`
	Category    core.Category `json:"category"`
}

func (req transactionRequest) transaction() (core.Transaction, error) {
	if req.Amount == nil {
		return core.Transaction{}, &core.ValidationError{Field: "amount", Err: core.ErrMissingAmount}
	}
	t := core.Transaction{
		Date:        req.Date,
		Description: sanitizeInput(req.Description),
		Amount:      *req.Amount,
		Category:    req.Category,
	}
	return t, t.Validate()
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions.List(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "List transactions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleRecentTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, recentDefaultLimit)
	if err != nil {
		writeFieldError(w, http.StatusBadRequest, err.Error(), "limit")
		return
	}
	txs, err := s.transactions.Recent(r.Context(), limit)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Recent transactions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch transactions")
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	tx, err := req.transaction()
	if !writeValidationError(w, err) {
		return
	}

	created, err := s.transactions.Create(r.Context(), tx)
	if err != nil {
		if writeKnownError(w, r, err) {
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Create transaction failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create transaction")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleReplaceTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	tx, err := req.transaction()
	if !writeValidationError(w, err) {
		return
	}

	replaced, err := s.transactions.Replace(r.Context(), id, tx)
	if err != nil {
		if writeKnownError(w, r, err) {
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Replace transaction failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to update transaction")
		return
	}
	writeJSON(w, http.StatusOK, replaced)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.transactions.Delete(r.Context(), id); err != nil {
		if writeKnownError(w, r, err) {
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Delete transaction failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted successfully"})
}

// writeValidationError writes a 400 when err is a validation failure.
// Returns true when the request may proceed.
func writeValidationError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return true
	}
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		writeFieldError(w, http.StatusBadRequest, ve.Error(), ve.Field)
		return false
	}
	writeError(w, http.StatusBadRequest, err.Error())
	return false
}

// writeKnownError maps validation and not-found errors from the store onto
// their status codes. Returns true when a response was written.
func writeKnownError(w http.ResponseWriter, r *http.Request, err error) bool {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		writeFieldError(w, http.StatusBadRequest, ve.Error(), ve.Field)
		return true
	}
	var nf *store.NotFoundError
	if errors.As(err, &nf) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Record not found", "entity", nf.Entity, "id", nf.ID)
		writeError(w, http.StatusNotFound, nf.Error())
		return true
	}
	return false
}
