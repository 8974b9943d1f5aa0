package sagalog

import "context"

// Repository persists saga log rows. Save appends; rows are never updated.
type Repository interface {
	Save(ctx context.Context, entry *SagaLog) error
	GetLatest(ctx context.Context, sagaID string) (*SagaLog, error)
	History(ctx context.Context, sagaID string) ([]SagaLog, error)
}
