package sagalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/sqlstore"
)

// Schema creates the saga_logs table. Querying the newest row per saga_id
// gives the current state.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS saga_logs (
		id             TEXT NOT NULL PRIMARY KEY,
		saga_id        TEXT NOT NULL,
		seq            INTEGER NOT NULL,
		status         TEXT NOT NULL,
		current_step   TEXT NOT NULL DEFAULT '',
		order_status   TEXT NOT NULL DEFAULT '',
		error_messages TEXT NOT NULL DEFAULT '[]',
		trace_id       TEXT NOT NULL DEFAULT '',
		span_id        TEXT NOT NULL DEFAULT '',
		updated_at     TEXT NOT NULL,
		UNIQUE (saga_id, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_saga_logs_trace_id ON saga_logs(trace_id)`,
}

// SQLRepository stores saga log rows through sqlstore, joining the
// transaction in the context when there is one.
type SQLRepository struct {
	db *sqlstore.DB
}

var _ Repository = (*SQLRepository)(nil)

func NewSQLRepository(db *sqlstore.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Save appends entry as the next row of its saga.
func (r *SQLRepository) Save(ctx context.Context, entry *SagaLog) error {
	var seq int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM saga_logs WHERE saga_id = ?`, entry.SagaID,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("sagalog: next seq for %q: %w", entry.SagaID, err)
	}

	const q = `
		INSERT INTO saga_logs
			(id, saga_id, seq, status, current_step, order_status, error_messages, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.Exec(ctx, q,
		fmt.Sprintf("%s-%d", entry.SagaID, seq),
		entry.SagaID,
		seq,
		string(entry.Status),
		entry.CurrentStep,
		entry.OrderStatus,
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		sqlstore.FormatTime(entry.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sagalog: save %q: %w", entry.SagaID, err)
	}
	return nil
}

const selectColumns = `
	SELECT saga_id, status, current_step, order_status, error_messages, trace_id, span_id, updated_at
	FROM   saga_logs`

// GetLatest returns the newest row of sagaID.
func (r *SQLRepository) GetLatest(ctx context.Context, sagaID string) (*SagaLog, error) {
	row := r.db.QueryRow(ctx, selectColumns+` WHERE saga_id = ? ORDER BY seq DESC LIMIT 1`, sagaID)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("saga %s not found", sagaID)
	}
	if err != nil {
		return nil, fmt.Errorf("sagalog: get latest for %q: %w", sagaID, err)
	}
	return &entry, nil
}

// History returns every row of sagaID, oldest first.
func (r *SQLRepository) History(ctx context.Context, sagaID string) ([]SagaLog, error) {
	rows, err := r.db.Query(ctx, selectColumns+` WHERE saga_id = ? ORDER BY seq`, sagaID)
	if err != nil {
		return nil, fmt.Errorf("sagalog: history for %q: %w", sagaID, err)
	}
	defer rows.Close()

	var entries []SagaLog
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("sagalog: history for %q: %w", sagaID, err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (SagaLog, error) {
	var (
		entry     SagaLog
		updatedAt string
	)
	err := s.Scan(
		&entry.SagaID,
		&entry.Status,
		&entry.CurrentStep,
		&entry.OrderStatus,
		&entry.ErrorMessages,
		&entry.TraceID,
		&entry.SpanID,
		&updatedAt,
	)
	if err != nil {
		return SagaLog{}, err
	}
	entry.UpdatedAt, err = sqlstore.ParseTime(updatedAt)
	return entry, err
}
