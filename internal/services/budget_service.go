package services

import (
	"context"
	"fmt"
	"log/slog"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/store"
)

// BudgetService fronts the budget store. Budgets are only ever listed or
// set; there is no delete operation.
type BudgetService struct {
	store  store.BudgetStore
	events EventPublisher
}

func NewBudgetService(budgetStore store.BudgetStore, events EventPublisher) *BudgetService {
	return &BudgetService{store: budgetStore, events: events}
}

// List returns every budget.
func (s *BudgetService) List(ctx context.Context) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx)
}

// Set creates or replaces the budget for a category and publishes a set
// event.
func (s *BudgetService) Set(ctx context.Context, category core.Category, amount core.Money) (core.Budget, error) {
	b, err := s.store.SetBudget(ctx, category, amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("set budget: %w", err)
	}
	if s.events != nil {
		if err := s.events.PublishChange(ctx, amqp.NewChangeEvent(amqp.EntityBudget, amqp.OpSet, b.ID)); err != nil {
			slog.ErrorContext(ctx, "Failed to publish change event",
				"entity", amqp.EntityBudget, "op", amqp.OpSet, "id", b.ID, "error", err)
		}
	}
	return b, nil
}
