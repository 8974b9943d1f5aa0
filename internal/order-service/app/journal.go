package app

import (
	"context"
	"fmt"

	"github.com/jcmexdev/food-ordering-sagas/internal/coordinator/sagalog"
	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/domain"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
)

// journal appends saga log rows. A nil repository disables it.
type journal struct {
	repo  sagalog.Repository
	clock shared.Clock
}

func newJournal(repo sagalog.Repository, clock shared.Clock) *journal {
	return &journal{repo: repo, clock: clock}
}

func (j *journal) record(ctx context.Context, order *domain.Order, status sagalog.Status, step string) error {
	if j.repo == nil {
		return nil
	}
	entry := sagalog.NewEntry(ctx, order.ID.String(), status, step, string(order.Status), order.FailureMessages, j.clock.Now())
	if err := j.repo.Save(ctx, entry); err != nil {
		return fmt.Errorf("order: saga log %s: %w", step, err)
	}
	return nil
}
