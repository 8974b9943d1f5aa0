package app

import (
	"context"

	"github.com/jcmexdev/food-ordering-sagas/internal/payment-service/domain"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
)

// Repositories report a miss with ok=false and a nil error. Saves of
// versioned aggregates insert at Version 0 and otherwise update under a
// version check, returning shared.ErrConcurrentModification on conflict.

type PaymentRepository interface {
	Save(ctx context.Context, payment *domain.Payment) error
	FindByOrderID(ctx context.Context, orderID shared.OrderID) (domain.Payment, bool, error)
}

type CreditEntryRepository interface {
	Save(ctx context.Context, entry *domain.CreditEntry) error
	FindByCustomerID(ctx context.Context, customerID shared.CustomerID) (domain.CreditEntry, bool, error)
}

// CreditHistoryRepository is append-only.
type CreditHistoryRepository interface {
	Save(ctx context.Context, history domain.CreditHistory) error
	FindByCustomerID(ctx context.Context, customerID shared.CustomerID) ([]domain.CreditHistory, bool, error)
}

// One publisher per payment outcome. Implementations write to the outbox
// through the transaction in ctx.

type PaymentCompletedMessagePublisher interface {
	PublishPaymentCompleted(ctx context.Context, event domain.PaymentEvent) error
}

type PaymentCancelledMessagePublisher interface {
	PublishPaymentCancelled(ctx context.Context, event domain.PaymentEvent) error
}

type PaymentFailedMessagePublisher interface {
	PublishPaymentFailed(ctx context.Context, event domain.PaymentEvent) error
}

// PaymentResponsePublisher is the set of outcome publishers.
type PaymentResponsePublisher interface {
	PaymentCompletedMessagePublisher
	PaymentCancelledMessagePublisher
	PaymentFailedMessagePublisher
}

type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
