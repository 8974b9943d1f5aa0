package app

import (
	"context"

	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/domain"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
)

// Repositories report a miss with ok=false and a nil error.

// OrderRepository persists orders. Save inserts an order with Version 0 and
// otherwise updates it only if the stored version still equals
// order.Version, returning shared.ErrConcurrentModification when it does
// not. On success order.Version is advanced.
type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id shared.OrderID) (domain.Order, bool, error)
	FindByTrackingID(ctx context.Context, id shared.TrackingID) (domain.Order, bool, error)
}

type CustomerRepository interface {
	FindCustomer(ctx context.Context, id shared.CustomerID) (domain.Customer, bool, error)
}

// RestaurantRepository returns the restaurant with only the requested
// products attached.
type RestaurantRepository interface {
	FindRestaurantInformation(ctx context.Context, id shared.RestaurantID, productIDs []shared.ProductID) (domain.Restaurant, bool, error)
}

// Publishers turn domain events into outbound messages. They write to the
// outbox through the transaction in ctx, so nothing leaves the service
// unless the transaction commits.

type OrderCreatedPaymentRequestPublisher interface {
	PublishOrderCreated(ctx context.Context, event domain.OrderCreatedEvent) error
}

type OrderCancelledPaymentRequestPublisher interface {
	PublishOrderCancelled(ctx context.Context, event domain.OrderCancelledEvent) error
}

type OrderPaidRestaurantRequestPublisher interface {
	PublishOrderPaid(ctx context.Context, event domain.OrderPaidEvent) error
}

// TxManager runs fn in a transaction carried by the context passed to fn.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
