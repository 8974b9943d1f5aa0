// Package messaging connects the order service to the saga topics: it turns
// order events into outbox messages and feeds response messages to the
// application handlers.
package messaging

import (
	"context"
	"log/slog"

	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/app"
	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/interceptors"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/messaging"
)

// Publisher implements the order service's outbound ports on top of a
// messaging.Publisher, normally the outbox store.
type Publisher struct {
	out    messaging.Publisher
	topics messaging.Topics
}

var (
	_ app.OrderCreatedPaymentRequestPublisher   = (*Publisher)(nil)
	_ app.OrderCancelledPaymentRequestPublisher = (*Publisher)(nil)
	_ app.OrderPaidRestaurantRequestPublisher   = (*Publisher)(nil)
)

func NewPublisher(out messaging.Publisher, topics messaging.Topics) *Publisher {
	return &Publisher{out: out, topics: topics}
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, e domain.OrderCreatedEvent) error {
	req := orderCreatedToPaymentRequest(e)
	return p.publish(ctx, p.topics.PaymentRequest, req.ID, req.OrderID, req)
}

func (p *Publisher) PublishOrderCancelled(ctx context.Context, e domain.OrderCancelledEvent) error {
	req := orderCancelledToPaymentRequest(e)
	return p.publish(ctx, p.topics.PaymentRequest, req.ID, req.OrderID, req)
}

func (p *Publisher) PublishOrderPaid(ctx context.Context, e domain.OrderPaidEvent) error {
	req := orderPaidToRestaurantApprovalRequest(e)
	return p.publish(ctx, p.topics.RestaurantApprovalRequest, req.ID, req.OrderID, req)
}

func (p *Publisher) publish(ctx context.Context, topic, id, orderID string, payload any) error {
	msg, err := messaging.NewMessage(id, topic, orderID, payload)
	if err != nil {
		return err
	}
	interceptors.InjectHeaders(ctx, msg.Headers)
	if err := p.out.Publish(ctx, msg); err != nil {
		return err
	}
	slog.InfoContext(ctx, "message queued", "topic", topic, "message_id", id, "order_id", orderID)
	return nil
}
