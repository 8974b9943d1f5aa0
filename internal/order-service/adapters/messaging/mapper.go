package messaging

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/app"
	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/domain"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/messaging"
)

func orderCreatedToPaymentRequest(e domain.OrderCreatedEvent) messaging.PaymentRequest {
	return paymentRequest(e.Order, e.CreatedAt.UTC(), shared.PaymentOrderStatusPending)
}

func orderCancelledToPaymentRequest(e domain.OrderCancelledEvent) messaging.PaymentRequest {
	return paymentRequest(e.Order, e.CreatedAt.UTC(), shared.PaymentOrderStatusCancelled)
}

func paymentRequest(order domain.Order, createdAt time.Time, status shared.PaymentOrderStatus) messaging.PaymentRequest {
	return messaging.PaymentRequest{
		ID:                 uuid.NewString(),
		SagaID:             order.ID.String(),
		OrderID:            order.ID.String(),
		CustomerID:         order.CustomerID.String(),
		Price:              order.Price,
		CreatedAt:          createdAt,
		PaymentOrderStatus: status,
	}
}

func orderPaidToRestaurantApprovalRequest(e domain.OrderPaidEvent) messaging.RestaurantApprovalRequest {
	products := make([]messaging.Product, len(e.Order.Items))
	for i, item := range e.Order.Items {
		products[i] = messaging.Product{ID: item.Product.ID.String(), Quantity: item.Quantity}
	}
	return messaging.RestaurantApprovalRequest{
		ID:                    uuid.NewString(),
		SagaID:                e.Order.ID.String(),
		OrderID:               e.Order.ID.String(),
		RestaurantID:          e.Order.RestaurantID.String(),
		Products:              products,
		Price:                 e.Order.Price,
		CreatedAt:             e.CreatedAt.UTC(),
		RestaurantOrderStatus: shared.RestaurantOrderStatusPaid,
	}
}

func paymentResponseToApp(m messaging.PaymentResponse) (app.PaymentResponse, error) {
	resp := app.PaymentResponse{
		ID:              m.ID,
		Price:           m.Price,
		CreatedAt:       m.CreatedAt,
		PaymentStatus:   m.PaymentStatus,
		FailureMessages: m.FailureMessages,
	}
	var err error
	if resp.OrderID, err = shared.ParseID[shared.OrderID](m.OrderID); err != nil {
		return app.PaymentResponse{}, fmt.Errorf("payment response %s: %w", m.ID, err)
	}
	if resp.CustomerID, err = shared.ParseID[shared.CustomerID](m.CustomerID); err != nil {
		return app.PaymentResponse{}, fmt.Errorf("payment response %s: %w", m.ID, err)
	}
	if m.PaymentID != "" {
		if resp.PaymentID, err = shared.ParseID[shared.PaymentID](m.PaymentID); err != nil {
			return app.PaymentResponse{}, fmt.Errorf("payment response %s: %w", m.ID, err)
		}
	}
	return resp, nil
}

func approvalResponseToApp(m messaging.RestaurantApprovalResponse) (app.RestaurantApprovalResponse, error) {
	resp := app.RestaurantApprovalResponse{
		ID:                  m.ID,
		CreatedAt:           m.CreatedAt,
		OrderApprovalStatus: m.OrderApprovalStatus,
		FailureMessages:     m.FailureMessages,
	}
	var err error
	if resp.OrderID, err = shared.ParseID[shared.OrderID](m.OrderID); err != nil {
		return app.RestaurantApprovalResponse{}, fmt.Errorf("approval response %s: %w", m.ID, err)
	}
	if resp.RestaurantID, err = shared.ParseID[shared.RestaurantID](m.RestaurantID); err != nil {
		return app.RestaurantApprovalResponse{}, fmt.Errorf("approval response %s: %w", m.ID, err)
	}
	return resp, nil
}
