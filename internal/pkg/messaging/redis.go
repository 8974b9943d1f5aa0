package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldID      = "id"
	fieldKey     = "key"
	fieldPayload = "payload"
	fieldHeaders = "headers"
)

type RedisStreamConfig struct {
	// Group is the consumer group; each service uses its own.
	Group string
	// Consumer names this process inside the group.
	Consumer string
	// Count is the maximum number of entries read per call.
	Count int64
	// Block is how long a read waits for new entries.
	Block time.Duration
}

// RedisStreamBus maps every topic onto a redis stream and subscribers onto a
// consumer group. Entries are acknowledged only after the handler succeeds.
type RedisStreamBus struct {
	client *redis.Client
	cfg    RedisStreamConfig
}

var _ Bus = (*RedisStreamBus)(nil)

func NewRedisStreamBus(addr string, cfg RedisStreamConfig) *RedisStreamBus {
	return NewRedisStreamBusFromClient(redis.NewClient(&redis.Options{Addr: addr}), cfg)
}

func NewRedisStreamBusFromClient(client *redis.Client, cfg RedisStreamConfig) *RedisStreamBus {
	if cfg.Count <= 0 {
		cfg.Count = 10
	}
	if cfg.Block <= 0 {
		cfg.Block = 2 * time.Second
	}
	return &RedisStreamBus{client: client, cfg: cfg}
}

func (b *RedisStreamBus) Publish(ctx context.Context, msg Message) error {
	headers, err := json.Marshal(msg.Headers)
	if err != nil {
		return fmt.Errorf("messaging: encode headers of %s: %w", msg.ID, err)
	}
	err = b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: msg.Topic,
		Values: map[string]any{
			fieldID:      msg.ID,
			fieldKey:     msg.Key,
			fieldPayload: string(msg.Payload),
			fieldHeaders: string(headers),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("messaging: xadd %s to %s: %w", msg.ID, msg.Topic, err)
	}
	return nil
}

// Subscribe reads the topic through the configured consumer group until ctx is
// done. Pending entries of this consumer are read first, so messages whose
// handler failed are retried before new ones.
func (b *RedisStreamBus) Subscribe(ctx context.Context, topic string, h Handler) error {
	if err := b.ensureGroup(ctx, topic); err != nil {
		return err
	}
	log := slog.With("topic", topic, "group", b.cfg.Group, "consumer", b.cfg.Consumer)

	start := "0"
	for {
		if ctx.Err() != nil {
			return nil
		}
		streams, err := b.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    b.cfg.Group,
			Consumer: b.cfg.Consumer,
			Streams:  []string{topic, start},
			Count:    b.cfg.Count,
			Block:    b.cfg.Block,
		}).Result()
		if errors.Is(err, redis.Nil) {
			start = ">"
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.ErrorContext(ctx, "xreadgroup failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(b.cfg.Block):
			}
			continue
		}

		entries := flatten(streams)
		if len(entries) == 0 {
			start = ">"
			continue
		}
		log.InfoContext(ctx, "received messages", "count", len(entries), "ids", entryIDs(entries))

		failed := false
		for _, entry := range entries {
			msg := toMessage(ctx, log, topic, entry)
			if err := h(ctx, msg); err != nil {
				log.ErrorContext(ctx, "message handler failed", "message_id", msg.ID, "error", err)
				failed = true
				continue
			}
			if err := b.client.XAck(ctx, topic, b.cfg.Group, entry.ID).Err(); err != nil {
				log.ErrorContext(ctx, "xack failed", "message_id", msg.ID, "error", err)
			}
		}
		if failed {
			start = "0"
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(b.cfg.Block):
			}
		}
	}
}

func (b *RedisStreamBus) Close() error {
	return b.client.Close()
}

func (b *RedisStreamBus) ensureGroup(ctx context.Context, topic string) error {
	err := b.client.XGroupCreateMkStream(ctx, topic, b.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("messaging: create group %s on %s: %w", b.cfg.Group, topic, err)
	}
	return nil
}

func flatten(streams []redis.XStream) []redis.XMessage {
	var out []redis.XMessage
	for _, s := range streams {
		out = append(out, s.Messages...)
	}
	return out
}

func entryIDs(entries []redis.XMessage) string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = stringField(e.Values, fieldID)
	}
	return strings.Join(ids, ",")
}

// toMessage rebuilds the envelope of a stream entry. Unreadable headers are
// logged and dropped; the payload is still delivered.
func toMessage(ctx context.Context, log *slog.Logger, topic string, entry redis.XMessage) Message {
	msg := Message{
		ID:      stringField(entry.Values, fieldID),
		Topic:   topic,
		Key:     stringField(entry.Values, fieldKey),
		Payload: []byte(stringField(entry.Values, fieldPayload)),
		Headers: map[string]string{},
	}
	if raw := stringField(entry.Values, fieldHeaders); raw != "" {
		if err := json.Unmarshal([]byte(raw), &msg.Headers); err != nil {
			log.WarnContext(ctx, "dropping unreadable message headers", "message_id", msg.ID, "stream_id", entry.ID, "error", err)
			msg.Headers = map[string]string{}
		}
	}
	return msg
}

func stringField(values map[string]any, key string) string {
	if v, ok := values[key].(string); ok {
		return v
	}
	return ""
}
