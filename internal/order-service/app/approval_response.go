package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jcmexdev/food-ordering-sagas/internal/coordinator/sagalog"
	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/domain"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/telemetry"
)

// ApprovalResponseHandler applies restaurant decisions to paid orders.
type ApprovalResponseHandler struct {
	tx                 TxManager
	orders             OrderRepository
	domainService      *domain.OrderDomainService
	cancelledPublisher OrderCancelledPaymentRequestPublisher
	journal            *journal
}

func NewApprovalResponseHandler(
	tx TxManager,
	orders OrderRepository,
	domainService *domain.OrderDomainService,
	cancelledPublisher OrderCancelledPaymentRequestPublisher,
	sagaLog sagalog.Repository,
	clock shared.Clock,
) *ApprovalResponseHandler {
	return &ApprovalResponseHandler{
		tx:                 tx,
		orders:             orders,
		domainService:      domainService,
		cancelledPublisher: cancelledPublisher,
		journal:            newJournal(sagaLog, clock),
	}
}

// OrderApproved completes the saga.
func (h *ApprovalResponseHandler) OrderApproved(ctx context.Context, resp RestaurantApprovalResponse) error {
	ctx, span := telemetry.Tracer().Start(ctx, "order.OrderApproved")
	defer span.End()

	return h.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := loadOrder(ctx, h.orders, resp.OrderID, shared.OrderStatusPaid)
		if err != nil {
			return err
		}
		if err := h.domainService.ApproveOrder(&order); err != nil {
			return err
		}
		if err := h.orders.Save(ctx, &order); err != nil {
			return fmt.Errorf("order: save approved %s: %w", order.ID, err)
		}
		slog.InfoContext(ctx, "order is approved", "order_id", order.ID.String())
		return h.journal.record(ctx, &order, sagalog.StatusCompleted, sagalog.StepOrderApproved)
	})
}

// OrderRejected starts compensation: the order moves to CANCELLING and a
// payment cancellation request is queued.
func (h *ApprovalResponseHandler) OrderRejected(ctx context.Context, resp RestaurantApprovalResponse) error {
	ctx, span := telemetry.Tracer().Start(ctx, "order.OrderRejected")
	defer span.End()

	return h.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := loadOrder(ctx, h.orders, resp.OrderID, shared.OrderStatusPaid)
		if err != nil {
			return err
		}
		event, err := h.domainService.CancelOrderPayment(&order, resp.FailureMessages)
		if err != nil {
			return err
		}
		if err := h.orders.Save(ctx, &order); err != nil {
			return fmt.Errorf("order: save cancelling %s: %w", order.ID, err)
		}
		if err := h.cancelledPublisher.PublishOrderCancelled(ctx, event); err != nil {
			return fmt.Errorf("order: publish cancelled %s: %w", order.ID, err)
		}
		slog.InfoContext(ctx, "order is rejected, cancelling payment",
			"order_id", order.ID.String(),
			"failure_messages", strings.Join(resp.FailureMessages, shared.FailureMessageDelimiter),
		)
		return h.journal.record(ctx, &order, sagalog.StatusCompensating, sagalog.StepOrderRejected)
	})
}
