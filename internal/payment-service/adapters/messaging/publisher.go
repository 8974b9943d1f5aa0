// Package messaging connects the payment service to the saga topics.
package messaging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jcmexdev/food-ordering-sagas/internal/payment-service/app"
	"github.com/jcmexdev/food-ordering-sagas/internal/payment-service/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/interceptors"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/messaging"
)

// Publisher writes payment responses to the outbox.
type Publisher struct {
	out    messaging.Publisher
	topics messaging.Topics
}

var _ app.PaymentResponsePublisher = (*Publisher)(nil)

func NewPublisher(out messaging.Publisher, topics messaging.Topics) *Publisher {
	return &Publisher{out: out, topics: topics}
}

func (p *Publisher) PublishPaymentCompleted(ctx context.Context, e domain.PaymentEvent) error {
	return p.publish(ctx, e)
}

func (p *Publisher) PublishPaymentCancelled(ctx context.Context, e domain.PaymentEvent) error {
	return p.publish(ctx, e)
}

func (p *Publisher) PublishPaymentFailed(ctx context.Context, e domain.PaymentEvent) error {
	return p.publish(ctx, e)
}

func (p *Publisher) publish(ctx context.Context, e domain.PaymentEvent) error {
	resp := paymentEventToPaymentResponse(e)
	msg, err := messaging.NewMessage(resp.ID, p.topics.PaymentResponse, resp.OrderID, resp)
	if err != nil {
		return err
	}
	interceptors.InjectHeaders(ctx, msg.Headers)
	if err := p.out.Publish(ctx, msg); err != nil {
		return err
	}
	slog.InfoContext(ctx, "payment response queued",
		"status", string(resp.PaymentStatus), "payment_id", resp.PaymentID, "order_id", resp.OrderID)
	return nil
}

func paymentEventToPaymentResponse(e domain.PaymentEvent) messaging.PaymentResponse {
	msgs := e.FailureMessages
	if msgs == nil {
		msgs = []string{}
	}
	return messaging.PaymentResponse{
		ID:              uuid.NewString(),
		SagaID:          e.Payment.OrderID.String(),
		OrderID:         e.Payment.OrderID.String(),
		PaymentID:       e.Payment.ID.String(),
		CustomerID:      e.Payment.CustomerID.String(),
		Price:           e.Payment.Price,
		CreatedAt:       e.CreatedAt.UTC(),
		PaymentStatus:   e.Payment.Status,
		FailureMessages: msgs,
	}
}
