package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/jcmexdev/food-ordering-sagas/internal/coordinator/sagalog"
	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/domain"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/telemetry"
)

// PaymentResponseHandler applies payment outcomes to orders.
type PaymentResponseHandler struct {
	tx            TxManager
	orders        OrderRepository
	domainService *domain.OrderDomainService
	paidPublisher OrderPaidRestaurantRequestPublisher
	journal       *journal
}

func NewPaymentResponseHandler(
	tx TxManager,
	orders OrderRepository,
	domainService *domain.OrderDomainService,
	paidPublisher OrderPaidRestaurantRequestPublisher,
	sagaLog sagalog.Repository,
	clock shared.Clock,
) *PaymentResponseHandler {
	return &PaymentResponseHandler{
		tx:            tx,
		orders:        orders,
		domainService: domainService,
		paidPublisher: paidPublisher,
		journal:       newJournal(sagaLog, clock),
	}
}

// PaymentCompleted marks a pending order paid and asks the restaurant for
// approval.
func (h *PaymentResponseHandler) PaymentCompleted(ctx context.Context, resp PaymentResponse) error {
	ctx, span := telemetry.Tracer().Start(ctx, "order.PaymentCompleted")
	defer span.End()

	return h.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := loadOrder(ctx, h.orders, resp.OrderID, shared.OrderStatusPending)
		if err != nil {
			return err
		}
		event, err := h.domainService.PayOrder(&order)
		if err != nil {
			return err
		}
		if err := h.orders.Save(ctx, &order); err != nil {
			return fmt.Errorf("order: save paid %s: %w", order.ID, err)
		}
		if err := h.paidPublisher.PublishOrderPaid(ctx, event); err != nil {
			return fmt.Errorf("order: publish paid %s: %w", order.ID, err)
		}
		slog.InfoContext(ctx, "order is paid", "order_id", order.ID.String())
		return h.journal.record(ctx, &order, sagalog.StatusStepDone, sagalog.StepPaymentCompleted)
	})
}

// PaymentCancelled cancels an order whose payment failed or was refunded.
// The order is either still pending or already cancelling after a
// restaurant rejection.
func (h *PaymentResponseHandler) PaymentCancelled(ctx context.Context, resp PaymentResponse) error {
	ctx, span := telemetry.Tracer().Start(ctx, "order.PaymentCancelled")
	defer span.End()

	return h.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := loadOrder(ctx, h.orders, resp.OrderID, shared.OrderStatusPending, shared.OrderStatusCancelling)
		if err != nil {
			return err
		}
		if err := h.domainService.CancelOrder(&order, resp.FailureMessages); err != nil {
			return err
		}
		if err := h.orders.Save(ctx, &order); err != nil {
			return fmt.Errorf("order: save cancelled %s: %w", order.ID, err)
		}
		slog.InfoContext(ctx, "order is cancelled",
			"order_id", order.ID.String(),
			"failure_messages", strings.Join(resp.FailureMessages, shared.FailureMessageDelimiter),
		)
		return h.journal.record(ctx, &order, sagalog.StatusFailed, sagalog.StepPaymentCancelled)
	})
}

// loadOrder returns the order when it is in one of the expected states. A
// missing order is ErrNotFound; any other state means the step was already
// applied and yields ErrConcurrentModification.
func loadOrder(ctx context.Context, orders OrderRepository, id shared.OrderID, expected ...shared.OrderStatus) (domain.Order, error) {
	order, ok, err := orders.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order: find %s: %w", id, err)
	}
	if !ok {
		return domain.Order{}, shared.NotFoundf("Could not find order with id %s", id)
	}
	if !slices.Contains(expected, order.Status) {
		return domain.Order{}, fmt.Errorf("order: %s is %s: %w", id, order.Status, shared.ErrConcurrentModification)
	}
	return order, nil
}
