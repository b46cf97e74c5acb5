package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iyhunko/pricehawk/internal/metrics"
	"github.com/iyhunko/pricehawk/internal/model"
	"github.com/iyhunko/pricehawk/internal/repository"
	"github.com/iyhunko/pricehawk/internal/sqs"
)

const outboxBatchSize = 100

// EventPublisher delivers price messages to the queue.
type EventPublisher interface {
	PublishPriceMessage(ctx context.Context, msg sqs.PriceMessage) error
}

// OutboxWorker polls the events table and publishes pending events
type OutboxWorker struct {
	events    repository.EventRepository
	publisher EventPublisher
	interval  time.Duration
	stopChan  chan struct{}
}

// NewOutboxWorker creates a new OutboxWorker
func NewOutboxWorker(events repository.EventRepository, publisher EventPublisher, interval time.Duration) *OutboxWorker {
	return &OutboxWorker{
		events:    events,
		publisher: publisher,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start begins processing events from the outbox
func (w *OutboxWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker stopped by context")
			return
		case <-w.stopChan:
			slog.Info("Outbox worker stopped")
			return
		case <-ticker.C:
			w.processEvents(ctx)
		}
	}
}

// Stop stops the outbox worker
func (w *OutboxWorker) Stop() {
	close(w.stopChan)
}

func (w *OutboxWorker) processEvents(ctx context.Context) {
	events, err := w.events.ListPending(ctx, outboxBatchSize)
	if err != nil {
		slog.Error("Failed to retrieve pending events", slog.Any("err", err))
		return
	}

	if len(events) == 0 {
		return
	}

	slog.Info("Processing pending events", slog.Int("count", len(events)))

	for _, event := range events {
		status := model.EventStatusProcessed
		if err := w.processEvent(ctx, event); err != nil {
			slog.Error("Failed to process event",
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.EventType),
				slog.Any("err", err))
			status = model.EventStatusFailed
		}

		if err := w.events.UpdateStatus(ctx, event.ID, status); err != nil {
			slog.Error("Failed to update event status",
				slog.String("event_id", event.ID.String()),
				slog.String("status", string(status)),
				slog.Any("err", err))
			continue
		}
		metrics.EventsPublished.WithLabelValues(string(status)).Inc()
	}
}

// processEvent publishes a single event to SQS
func (w *OutboxWorker) processEvent(ctx context.Context, event *model.Event) error {
	msg, err := sqs.NewPriceMessage(event)
	if err != nil {
		return fmt.Errorf("failed to decode event data: %w", err)
	}

	if err := w.publisher.PublishPriceMessage(ctx, msg); err != nil {
		return err
	}
	return nil
}
