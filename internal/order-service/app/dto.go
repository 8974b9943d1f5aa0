package app

import (
	"time"

	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
)

type CreateOrderCommand struct {
	CustomerID   shared.CustomerID
	RestaurantID shared.RestaurantID
	Price        shared.Money
	Items        []OrderItemCommand
	Address      OrderAddress
}

type OrderItemCommand struct {
	ProductID shared.ProductID
	Quantity  int
	Price     shared.Money
	SubTotal  shared.Money
}

type OrderAddress struct {
	Street     string
	PostalCode string
	City       string
}

type CreateOrderResponse struct {
	OrderTrackingID shared.TrackingID
	OrderStatus     shared.OrderStatus
	Message         string
}

type TrackOrderQuery struct {
	OrderTrackingID shared.TrackingID
}

type TrackOrderResponse struct {
	OrderTrackingID shared.TrackingID
	OrderStatus     shared.OrderStatus
	FailureMessages []string
}

// PaymentResponse is the payment outcome as seen by the order service.
type PaymentResponse struct {
	ID              string
	OrderID         shared.OrderID
	PaymentID       shared.PaymentID
	CustomerID      shared.CustomerID
	Price           shared.Money
	CreatedAt       time.Time
	PaymentStatus   shared.PaymentStatus
	FailureMessages []string
}

// RestaurantApprovalResponse is the restaurant decision for an order.
type RestaurantApprovalResponse struct {
	ID                  string
	OrderID             shared.OrderID
	RestaurantID        shared.RestaurantID
	CreatedAt           time.Time
	OrderApprovalStatus shared.OrderApprovalStatus
	FailureMessages     []string
}
