// Package services orchestrates record store writes with the change feed.
// Publishing is always best-effort: the store is the source of truth and a
// broker failure never fails the request.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/store"
)

// EventPublisher is the slice of the AMQP client the services need.
// A nil publisher disables the change feed.
type EventPublisher interface {
	PublishChange(ctx context.Context, event *amqp.ChangeEvent) error
}

// TransactionService fronts the transaction store and emits change events
// for every applied mutation.
type TransactionService struct {
	store  store.TransactionStore
	events EventPublisher
}

func NewTransactionService(txStore store.TransactionStore, events EventPublisher) *TransactionService {
	return &TransactionService{store: txStore, events: events}
}

// List returns every transaction, newest first.
func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

// Recent returns at most limit transactions, newest first.
func (s *TransactionService) Recent(ctx context.Context, limit int) ([]core.Transaction, error) {
	return s.store.RecentTransactions(ctx, limit)
}

// Create stores a new transaction and publishes a create event.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.publish(ctx, amqp.OpCreate, created.ID)
	return created, nil
}

// Replace overwrites all mutable fields of an existing transaction.
func (s *TransactionService) Replace(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	replaced, err := s.store.ReplaceTransaction(ctx, id, t)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publish(ctx, amqp.OpReplace, id)
	return replaced, nil
}

// Delete removes a transaction by id, irreversibly.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.OpDelete, id)
	return nil
}

func (s *TransactionService) publish(ctx context.Context, op, id string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishChange(ctx, amqp.NewChangeEvent(amqp.EntityTransaction, op, id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"entity", amqp.EntityTransaction, "op", op, "id", id, "error", err)
	}
}
