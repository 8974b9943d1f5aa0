// Package outbox stores outgoing messages in the same transaction as the
// state change that produced them and relays them to the broker after commit.
package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/messaging"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/sqlstore"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPublished Status = "PUBLISHED"
)

var Schema = []string{
	`CREATE TABLE IF NOT EXISTS outbox (
		id           TEXT PRIMARY KEY,
		aggregate_id TEXT NOT NULL,
		topic        TEXT NOT NULL,
		payload      TEXT NOT NULL,
		headers      TEXT NOT NULL DEFAULT '{}',
		status       TEXT NOT NULL,
		created_at   TEXT NOT NULL,
		published_at TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox(status, created_at)`,
}

// Store is a messaging.Publisher that writes to the outbox table using the
// transaction carried by the context.
type Store struct {
	db    *sqlstore.DB
	clock domain.Clock
}

var _ messaging.Publisher = (*Store)(nil)

func NewStore(db *sqlstore.DB, clock domain.Clock) *Store {
	return &Store{db: db, clock: clock}
}

// Publish records msg as pending. The current span context is stored in the
// headers so the consumer continues the trace.
func (s *Store) Publish(ctx context.Context, msg messaging.Message) error {
	messaging.InjectTrace(ctx, &msg)
	headers, err := json.Marshal(msg.Headers)
	if err != nil {
		return fmt.Errorf("outbox: encode headers of %s: %w", msg.ID, err)
	}
	const q = `
		INSERT INTO outbox (id, aggregate_id, topic, payload, headers, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.Exec(ctx, q,
		msg.ID, msg.Key, msg.Topic, string(msg.Payload), string(headers),
		string(StatusPending), sqlstore.FormatTime(s.clock.Now()),
	)
	if err != nil {
		return fmt.Errorf("outbox: insert %s: %w", msg.ID, err)
	}
	return nil
}

// Pending returns up to limit pending messages, oldest first.
func (s *Store) Pending(ctx context.Context, limit int) ([]messaging.Message, error) {
	const q = `
		SELECT id, aggregate_id, topic, payload, headers
		FROM   outbox
		WHERE  status = ?
		ORDER  BY created_at, id
		LIMIT  ?`
	rows, err := s.db.Query(ctx, q, string(StatusPending), limit)
	if err != nil {
		return nil, fmt.Errorf("outbox: query pending: %w", err)
	}
	defer rows.Close()

	var msgs []messaging.Message
	for rows.Next() {
		var (
			msg              messaging.Message
			payload, headers string
		)
		if err := rows.Scan(&msg.ID, &msg.Key, &msg.Topic, &payload, &headers); err != nil {
			return nil, fmt.Errorf("outbox: scan: %w", err)
		}
		msg.Payload = []byte(payload)
		if err := json.Unmarshal([]byte(headers), &msg.Headers); err != nil {
			return nil, fmt.Errorf("outbox: decode headers of %s: %w", msg.ID, err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("outbox: iterate pending: %w", err)
	}
	return msgs, nil
}

func (s *Store) MarkPublished(ctx context.Context, id string) error {
	const q = `UPDATE outbox SET status = ?, published_at = ? WHERE id = ?`
	res, err := s.db.Exec(ctx, q, string(StatusPublished), sqlstore.FormatTime(s.clock.Now()), id)
	if err != nil {
		return fmt.Errorf("outbox: mark %s published: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("outbox: mark %s published: %w", id, sql.ErrNoRows)
	}
	return nil
}

// CountPending reports how many messages await delivery.
func (s *Store) CountPending(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM outbox WHERE status = ?`, string(StatusPending)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("outbox: count pending: %w", err)
	}
	return n, nil
}
