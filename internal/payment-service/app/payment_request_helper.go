// Package app is the payment service's saga participant: it charges and
// refunds customers in response to payment requests.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jcmexdev/food-ordering-sagas/internal/payment-service/domain"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/telemetry"
)

// PaymentRequestHelper runs a payment operation and persists its outcome in
// one transaction together with the response message.
type PaymentRequestHelper struct {
	tx            TxManager
	payments      PaymentRepository
	creditEntries CreditEntryRepository
	histories     CreditHistoryRepository
	domainService *domain.PaymentDomainService
	publisher     PaymentResponsePublisher
}

func NewPaymentRequestHelper(
	tx TxManager,
	payments PaymentRepository,
	creditEntries CreditEntryRepository,
	histories CreditHistoryRepository,
	domainService *domain.PaymentDomainService,
	publisher PaymentResponsePublisher,
) *PaymentRequestHelper {
	return &PaymentRequestHelper{
		tx:            tx,
		payments:      payments,
		creditEntries: creditEntries,
		histories:     histories,
		domainService: domainService,
		publisher:     publisher,
	}
}

// PersistPayment charges the customer for a new order.
func (h *PaymentRequestHelper) PersistPayment(ctx context.Context, req PaymentRequest) (domain.PaymentEvent, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "payment.PersistPayment")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", req.OrderID.String()))

	slog.InfoContext(ctx, "received payment complete event", "order_id", req.OrderID.String())

	var event domain.PaymentEvent
	err := h.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, exists, err := h.payments.FindByOrderID(ctx, req.OrderID); err != nil {
			return fmt.Errorf("payment: find by order %s: %w", req.OrderID, err)
		} else if exists {
			return fmt.Errorf("payment: order %s already charged: %w", req.OrderID, shared.ErrConcurrentModification)
		}

		payment := paymentRequestToPayment(req)
		creditEntry, histories, err := h.ledger(ctx, payment.CustomerID)
		if err != nil {
			return err
		}
		var history domain.CreditHistory
		event, history = h.domainService.ValidateAndInitiatePayment(&payment, &creditEntry, histories)
		return h.persist(ctx, &payment, &creditEntry, history, event)
	})
	if err != nil {
		span.RecordError(err)
		return domain.PaymentEvent{}, err
	}
	return event, nil
}

// PersistCancelPayment refunds a completed payment.
func (h *PaymentRequestHelper) PersistCancelPayment(ctx context.Context, req PaymentRequest) (domain.PaymentEvent, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "payment.PersistCancelPayment")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", req.OrderID.String()))

	slog.InfoContext(ctx, "received payment rollback event", "order_id", req.OrderID.String())

	var event domain.PaymentEvent
	err := h.tx.WithinTx(ctx, func(ctx context.Context) error {
		payment, ok, err := h.payments.FindByOrderID(ctx, req.OrderID)
		if err != nil {
			return fmt.Errorf("payment: find by order %s: %w", req.OrderID, err)
		}
		if !ok {
			slog.ErrorContext(ctx, "payment could not be found", "order_id", req.OrderID.String())
			return applicationErrorf("Payment with order id: %s could not be found!", req.OrderID)
		}
		if payment.Status != shared.PaymentStatusCompleted {
			return fmt.Errorf("payment: %s is %s: %w", payment.ID, payment.Status, shared.ErrConcurrentModification)
		}

		creditEntry, histories, err := h.ledger(ctx, payment.CustomerID)
		if err != nil {
			return err
		}
		var history domain.CreditHistory
		event, history = h.domainService.ValidateAndCancelPayment(&payment, &creditEntry, histories)
		return h.persist(ctx, &payment, &creditEntry, history, event)
	})
	if err != nil {
		span.RecordError(err)
		return domain.PaymentEvent{}, err
	}
	return event, nil
}

func (h *PaymentRequestHelper) ledger(ctx context.Context, customerID shared.CustomerID) (domain.CreditEntry, []domain.CreditHistory, error) {
	entry, ok, err := h.creditEntries.FindByCustomerID(ctx, customerID)
	if err != nil {
		return domain.CreditEntry{}, nil, fmt.Errorf("payment: credit entry of %s: %w", customerID, err)
	}
	if !ok {
		slog.ErrorContext(ctx, "could not find credit entry", "customer_id", customerID.String())
		return domain.CreditEntry{}, nil, applicationErrorf("Could not find credit entry for customer: %s", customerID)
	}
	histories, ok, err := h.histories.FindByCustomerID(ctx, customerID)
	if err != nil {
		return domain.CreditEntry{}, nil, fmt.Errorf("payment: credit history of %s: %w", customerID, err)
	}
	if !ok {
		slog.ErrorContext(ctx, "could not find credit history", "customer_id", customerID.String())
		return domain.CreditEntry{}, nil, applicationErrorf("Could not find credit history for customer: %s", customerID)
	}
	return entry, histories, nil
}

// persist always stores the payment. The credit entry and the new ledger
// row are stored only when the operation did not fail.
//
// Charges for two orders of one customer race on the credit entry version.
// The loser gets ErrConcurrentModification, which listeners drop, so its
// order stays PENDING until the request is sent again.
func (h *PaymentRequestHelper) persist(
	ctx context.Context,
	payment *domain.Payment,
	creditEntry *domain.CreditEntry,
	history domain.CreditHistory,
	event domain.PaymentEvent,
) error {
	if err := h.payments.Save(ctx, payment); err != nil {
		return fmt.Errorf("payment: save %s: %w", payment.ID, err)
	}
	if event.Kind != domain.PaymentFailed {
		if err := h.creditEntries.Save(ctx, creditEntry); err != nil {
			return fmt.Errorf("payment: save credit entry of %s: %w", creditEntry.CustomerID, err)
		}
		if err := h.histories.Save(ctx, history); err != nil {
			return fmt.Errorf("payment: save credit history of %s: %w", history.CustomerID, err)
		}
	}
	return h.publish(ctx, event)
}

func (h *PaymentRequestHelper) publish(ctx context.Context, event domain.PaymentEvent) error {
	var err error
	switch event.Kind {
	case domain.PaymentCompleted:
		err = h.publisher.PublishPaymentCompleted(ctx, event)
	case domain.PaymentCancelled:
		err = h.publisher.PublishPaymentCancelled(ctx, event)
	case domain.PaymentFailed:
		err = h.publisher.PublishPaymentFailed(ctx, event)
	default:
		err = fmt.Errorf("unknown payment event kind %d", event.Kind)
	}
	if err != nil {
		return fmt.Errorf("payment: publish %s event for order %s: %w", event.Kind, event.Payment.OrderID, err)
	}
	return nil
}

func paymentRequestToPayment(req PaymentRequest) domain.Payment {
	return domain.Payment{
		OrderID:    req.OrderID,
		CustomerID: req.CustomerID,
		Price:      req.Price,
	}
}
