package app

import (
	"context"
	"log/slog"
)

// PaymentRequestListener is the entry point for payment requests.
type PaymentRequestListener struct {
	helper *PaymentRequestHelper
}

func NewPaymentRequestListener(helper *PaymentRequestHelper) *PaymentRequestListener {
	return &PaymentRequestListener{helper: helper}
}

func (l *PaymentRequestListener) CompletePayment(ctx context.Context, req PaymentRequest) error {
	event, err := l.helper.PersistPayment(ctx, req)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "payment event queued",
		"kind", event.Kind.String(), "payment_id", event.Payment.ID.String(), "order_id", event.Payment.OrderID.String())
	return nil
}

func (l *PaymentRequestListener) CancelPayment(ctx context.Context, req PaymentRequest) error {
	event, err := l.helper.PersistCancelPayment(ctx, req)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "payment event queued",
		"kind", event.Kind.String(), "payment_id", event.Payment.ID.String(), "order_id", event.Payment.OrderID.String())
	return nil
}
