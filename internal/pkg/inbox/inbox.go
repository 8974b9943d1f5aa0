// Package inbox drops redelivered messages by remembering processed message
// ids in a cache.
package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/cache"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/messaging"
)

const (
	stateProcessing = "processing"
	stateDone       = "done"

	// processingTTL bounds how long a crashed consumer blocks redelivery.
	processingTTL = time.Minute
)

type Inbox struct {
	cache cache.Cache
	ttl   time.Duration
}

// New returns an Inbox remembering processed ids for ttl.
func New(c cache.Cache, ttl time.Duration) *Inbox {
	return &Inbox{cache: c, ttl: ttl}
}

// Wrap returns a handler that runs h at most once per (source, message id)
// within the retention window. A failed run is forgotten so the redelivery
// is processed.
func (i *Inbox) Wrap(source string, h messaging.Handler) messaging.Handler {
	return func(ctx context.Context, msg messaging.Message) error {
		key := i.cache.GenerateKey("inbox", source+"|"+msg.ID)

		claimed, err := i.cache.SetNX(ctx, key, stateProcessing, processingTTL)
		if err != nil {
			return fmt.Errorf("inbox: claim %s: %w", msg.ID, err)
		}
		if !claimed {
			slog.WarnContext(ctx, "inbox: duplicate message, skipping",
				"source", source, "message_id", msg.ID, "topic", msg.Topic)
			return nil
		}

		if err := h(ctx, msg); err != nil {
			if delErr := i.cache.Delete(ctx, key); delErr != nil {
				slog.ErrorContext(ctx, "inbox: release failed", "message_id", msg.ID, "error", delErr)
			}
			return err
		}
		if err := i.cache.Set(ctx, key, stateDone, i.ttl); err != nil {
			slog.ErrorContext(ctx, "inbox: mark done failed", "message_id", msg.ID, "error", err)
		}
		return nil
	}
}
