package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/messaging"
)

// Relay polls the outbox and hands pending messages to the broker. A message
// is marked published only after the broker accepted it, so delivery is at
// least once.
type Relay struct {
	store     *Store
	publisher messaging.Publisher
	interval  time.Duration
	batchSize int
}

func NewRelay(store *Store, publisher messaging.Publisher, interval time.Duration) *Relay {
	return &Relay{store: store, publisher: publisher, interval: interval, batchSize: 100}
}

// Run flushes the outbox on every tick until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "outbox relay started", "interval", r.interval.String())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil {
				slog.ErrorContext(ctx, "outbox flush failed", "error", err)
			}
		}
	}
}

// Flush publishes one batch of pending messages and returns how many were
// delivered. After a failed publish, later messages with the same key stay
// pending so a saga's messages keep their order.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	msgs, err := r.store.Pending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}

	delivered := 0
	blocked := map[string]bool{}
	for _, msg := range msgs {
		if blocked[msg.Key] {
			continue
		}
		if err := r.publisher.Publish(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "outbox publish failed",
				"message_id", msg.ID, "topic", msg.Topic, "order_id", msg.Key, "error", err)
			blocked[msg.Key] = true
			continue
		}
		if err := r.store.MarkPublished(ctx, msg.ID); err != nil {
			return delivered, err
		}
		delivered++
	}
	return delivered, nil
}
