package app

import (
	"time"

	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
)

// PaymentRequest asks for a charge (PENDING) or a refund (CANCELLED).
type PaymentRequest struct {
	ID                 string
	OrderID            shared.OrderID
	CustomerID         shared.CustomerID
	Price              shared.Money
	CreatedAt          time.Time
	PaymentOrderStatus shared.PaymentOrderStatus
}
