package messaging

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/app"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/messaging"
)

// PaymentResponseListener routes payment responses by payment status.
type PaymentResponseListener struct {
	handler *app.PaymentResponseHandler
}

func NewPaymentResponseListener(h *app.PaymentResponseHandler) *PaymentResponseListener {
	return &PaymentResponseListener{handler: h}
}

// Handle is a messaging.Handler.
func (l *PaymentResponseListener) Handle(ctx context.Context, msg messaging.Message) error {
	wire, err := messaging.Decode[messaging.PaymentResponse](msg)
	if err != nil {
		return dropMalformed(ctx, msg, err)
	}
	resp, err := paymentResponseToApp(wire)
	if err != nil {
		return dropMalformed(ctx, msg, err)
	}

	switch resp.PaymentStatus {
	case shared.PaymentStatusCompleted:
		slog.InfoContext(ctx, "processing successful payment", "order_id", resp.OrderID.String())
		err = l.handler.PaymentCompleted(ctx, resp)
	case shared.PaymentStatusCancelled, shared.PaymentStatusFailed:
		slog.InfoContext(ctx, "processing unsuccessful payment", "order_id", resp.OrderID.String())
		err = l.handler.PaymentCancelled(ctx, resp)
	default:
		return dropMalformed(ctx, msg, errUnknownStatus(string(resp.PaymentStatus)))
	}
	return settle(ctx, msg, resp.OrderID, err)
}

// ApprovalResponseListener routes restaurant decisions by approval status.
type ApprovalResponseListener struct {
	handler *app.ApprovalResponseHandler
}

func NewApprovalResponseListener(h *app.ApprovalResponseHandler) *ApprovalResponseListener {
	return &ApprovalResponseListener{handler: h}
}

func (l *ApprovalResponseListener) Handle(ctx context.Context, msg messaging.Message) error {
	wire, err := messaging.Decode[messaging.RestaurantApprovalResponse](msg)
	if err != nil {
		return dropMalformed(ctx, msg, err)
	}
	resp, err := approvalResponseToApp(wire)
	if err != nil {
		return dropMalformed(ctx, msg, err)
	}

	switch resp.OrderApprovalStatus {
	case shared.OrderApprovalStatusApproved:
		slog.InfoContext(ctx, "processing approved order", "order_id", resp.OrderID.String())
		err = l.handler.OrderApproved(ctx, resp)
	case shared.OrderApprovalStatusRejected:
		slog.InfoContext(ctx, "processing rejected order",
			"order_id", resp.OrderID.String(),
			"failure_messages", strings.Join(resp.FailureMessages, shared.FailureMessageDelimiter),
		)
		err = l.handler.OrderRejected(ctx, resp)
	default:
		return dropMalformed(ctx, msg, errUnknownStatus(string(resp.OrderApprovalStatus)))
	}
	return settle(ctx, msg, resp.OrderID, err)
}

// settle drops the two outcomes of redelivery: the step was already applied,
// or the order is gone. Anything else goes back to the consumer so the
// message stays unacknowledged.
func settle(ctx context.Context, msg messaging.Message, orderID shared.OrderID, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, shared.ErrConcurrentModification):
		slog.WarnContext(ctx, "message already processed, dropping",
			"topic", msg.Topic, "message_id", msg.ID, "order_id", orderID.String(), "error", err)
		return nil
	case errors.Is(err, shared.ErrNotFound):
		slog.ErrorContext(ctx, "order not found, dropping",
			"topic", msg.Topic, "message_id", msg.ID, "order_id", orderID.String(), "error", err)
		return nil
	}
	return err
}

// dropMalformed acknowledges a message that can never be processed.
func dropMalformed(ctx context.Context, msg messaging.Message, err error) error {
	slog.ErrorContext(ctx, "malformed message, dropping", "topic", msg.Topic, "message_id", msg.ID, "error", err)
	return nil
}

type errUnknownStatus string

func (e errUnknownStatus) Error() string { return "unknown status " + string(e) }
