// Package store defines the record store ports the HTTP layer and the
// services depend on, keeping the concrete backends (sqlite, memory)
// swappable.
package store

import (
	"context"
	"fmt"

	"tally/internal/core"
)

// Ports for the record store backends.
type (
	// TransactionStore owns Transaction records. Lists are returned
	// sorted by date descending.
	TransactionStore interface {
		// ListTransactions returns every transaction, newest first.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)

		// RecentTransactions returns at most limit transactions, newest first.
		RecentTransactions(ctx context.Context, limit int) ([]core.Transaction, error)

		// CreateTransaction persists t, assigning its ID, and returns the
		// stored record.
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)

		// ReplaceTransaction overwrites every mutable field of the record
		// with the given id. There is no partial merge.
		ReplaceTransaction(ctx context.Context, id string, t core.Transaction) (core.Transaction, error)

		// DeleteTransaction removes exactly the record with the given id.
		DeleteTransaction(ctx context.Context, id string) error
	}

	// BudgetStore owns Budget records, at most one per category.
	BudgetStore interface {
		ListBudgets(ctx context.Context) ([]core.Budget, error)

		// SetBudget creates or replaces the budget for the category
		// (upsert). Budgets are never deleted.
		SetBudget(ctx context.Context, category core.Category, amount core.Money) (core.Budget, error)
	}

	// ChangeLog records applied mutations for the audit trail.
	ChangeLog interface {
		AppendChange(ctx context.Context, entity, op, entityID string) error
	}
)

// NotFoundError reports an operation referencing a nonexistent record id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NotFound builds a NotFoundError for the given entity and id.
func NotFound(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}
