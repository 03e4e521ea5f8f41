// Package worker consumes the change feed into the store's audit trail.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"tally/internal/amqp"
	"tally/internal/store"
)

// Consumer is the slice of the AMQP client the worker needs.
type Consumer interface {
	ConsumeChanges(ctx context.Context, handler func(*amqp.ChangeEvent) error) error
}

// AuditWorker appends every consumed change event to the change log.
type AuditWorker struct {
	consumer Consumer
	log      store.ChangeLog
}

func NewAuditWorker(consumer Consumer, changeLog store.ChangeLog) *AuditWorker {
	return &AuditWorker{consumer: consumer, log: changeLog}
}

// Run consumes events until ctx is done. A failed append nacks the message
// so the broker redelivers it.
func (w *AuditWorker) Run(ctx context.Context) error {
	return w.consumer.ConsumeChanges(ctx, func(event *amqp.ChangeEvent) error {
		return w.Handle(ctx, event)
	})
}

// Handle records one change event.
func (w *AuditWorker) Handle(ctx context.Context, event *amqp.ChangeEvent) error {
	if event.Entity == "" || event.Op == "" || event.ID == "" {
		return fmt.Errorf("incomplete change event: %+v", event)
	}
	if err := w.log.AppendChange(ctx, event.Entity, event.Op, event.ID); err != nil {
		return fmt.Errorf("append change: %w", err)
	}
	slog.InfoContext(ctx, "Audited change",
		"entity", event.Entity,
		"op", event.Op,
		"id", event.ID)
	return nil
}
