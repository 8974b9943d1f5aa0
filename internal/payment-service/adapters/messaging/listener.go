package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/food-ordering-sagas/internal/payment-service/app"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/messaging"
)

// PaymentRequestListener routes payment requests by order payment status.
type PaymentRequestListener struct {
	listener *app.PaymentRequestListener
}

func NewPaymentRequestListener(l *app.PaymentRequestListener) *PaymentRequestListener {
	return &PaymentRequestListener{listener: l}
}

// Handle is a messaging.Handler. ErrPaymentApplication is returned so the
// message stays unacknowledged.
func (l *PaymentRequestListener) Handle(ctx context.Context, msg messaging.Message) error {
	wire, err := messaging.Decode[messaging.PaymentRequest](msg)
	if err != nil {
		return dropMalformed(ctx, msg, err)
	}
	req, err := paymentRequestToApp(wire)
	if err != nil {
		return dropMalformed(ctx, msg, err)
	}

	switch req.PaymentOrderStatus {
	case shared.PaymentOrderStatusPending:
		err = l.listener.CompletePayment(ctx, req)
	case shared.PaymentOrderStatusCancelled:
		err = l.listener.CancelPayment(ctx, req)
	default:
		return dropMalformed(ctx, msg, fmt.Errorf("unknown payment order status %q", req.PaymentOrderStatus))
	}

	if errors.Is(err, shared.ErrConcurrentModification) {
		slog.WarnContext(ctx, "payment request already processed, dropping",
			"message_id", msg.ID, "order_id", req.OrderID.String(), "error", err)
		return nil
	}
	return err
}

func dropMalformed(ctx context.Context, msg messaging.Message, err error) error {
	slog.ErrorContext(ctx, "malformed message, dropping", "topic", msg.Topic, "message_id", msg.ID, "error", err)
	return nil
}

func paymentRequestToApp(m messaging.PaymentRequest) (app.PaymentRequest, error) {
	req := app.PaymentRequest{
		ID:                 m.ID,
		Price:              m.Price,
		CreatedAt:          m.CreatedAt,
		PaymentOrderStatus: m.PaymentOrderStatus,
	}
	var err error
	if req.OrderID, err = shared.ParseID[shared.OrderID](m.OrderID); err != nil {
		return app.PaymentRequest{}, fmt.Errorf("payment request %s: %w", m.ID, err)
	}
	if req.CustomerID, err = shared.ParseID[shared.CustomerID](m.CustomerID); err != nil {
		return app.PaymentRequest{}, fmt.Errorf("payment request %s: %w", m.ID, err)
	}
	return req, nil
}
