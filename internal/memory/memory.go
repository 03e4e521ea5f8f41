// Package memory is an in-memory record store. It backs tests and the
// default DATA_BACKEND=memory mode; nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"tally/internal/core"
	"tally/internal/store"
)

type Store struct {
	mu           sync.Mutex
	transactions []core.Transaction
	seq          []string // ids in insertion order, newest last
	budgets      map[core.Category]core.Budget
	changes      []ChangeRecord
}

// ChangeRecord mirrors one change_log row for the audit trail.
type ChangeRecord struct {
	Entity   string
	Op       string
	EntityID string
}

func New() *Store {
	return &Store{budgets: make(map[core.Category]core.Budget)}
}

// sortedCopy returns the transactions newest-first; insertion order breaks
// same-date ties, matching the sqlite backend's created_at ordering.
func (s *Store) sortedCopy() []core.Transaction {
	pos := make(map[string]int, len(s.seq))
	for i, id := range s.seq {
		pos[id] = i
	}
	out := make([]core.Transaction, len(s.transactions))
	copy(out, s.transactions)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return pos[out[i].ID] > pos[out[j].ID]
	})
	return out
}

// ListTransactions implements store.TransactionStore.
func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedCopy(), nil
}

// RecentTransactions implements store.TransactionStore.
func (s *Store) RecentTransactions(_ context.Context, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.sortedCopy()
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CreateTransaction implements store.TransactionStore.
func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.NewString()
	s.transactions = append(s.transactions, t)
	s.seq = append(s.seq, t.ID)
	return t, nil
}

// ReplaceTransaction implements store.TransactionStore.
func (s *Store) ReplaceTransaction(_ context.Context, id string, t core.Transaction) (core.Transaction, error) {
	t.ID = id
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions[i] = t
			return t, nil
		}
	}
	return core.Transaction{}, store.NotFound("transaction", id)
}

// DeleteTransaction implements store.TransactionStore.
func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			for j, sid := range s.seq {
				if sid == id {
					s.seq = append(s.seq[:j], s.seq[j+1:]...)
					break
				}
			}
			return nil
		}
	}
	return store.NotFound("transaction", id)
}

// ListBudgets implements store.BudgetStore. Output is ordered by category
// for determinism, like the sqlite backend.
func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Budget, 0, len(s.budgets))
	for _, b := range s.budgets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

// SetBudget implements store.BudgetStore: create-or-replace keyed by
// category, keeping the original id on replace.
func (s *Store) SetBudget(_ context.Context, category core.Category, amount core.Money) (core.Budget, error) {
	b := core.Budget{ID: uuid.NewString(), Category: category, Amount: amount}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.budgets[category]; ok {
		b.ID = existing.ID
	}
	s.budgets[category] = b
	return b, nil
}

// AppendChange implements store.ChangeLog.
func (s *Store) AppendChange(_ context.Context, entity, op, entityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes = append(s.changes, ChangeRecord{Entity: entity, Op: op, EntityID: entityID})
	return nil
}

// Changes returns a copy of the recorded change log.
func (s *Store) Changes() []ChangeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChangeRecord, len(s.changes))
	copy(out, s.changes)
	return out
}
