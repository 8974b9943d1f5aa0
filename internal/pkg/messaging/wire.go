package messaging

import (
	"time"

	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
)

// Wire messages. Identifiers travel as UUID strings and prices as JSON numbers
// with two decimals. SagaID always equals OrderID.

type PaymentRequest struct {
	ID                 string                    `json:"id"`
	SagaID             string                    `json:"sagaId"`
	OrderID            string                    `json:"orderId"`
	CustomerID         string                    `json:"customerId"`
	Price              domain.Money              `json:"price"`
	CreatedAt          time.Time                 `json:"createdAt"`
	PaymentOrderStatus domain.PaymentOrderStatus `json:"paymentOrderStatus"`
}

type PaymentResponse struct {
	ID              string               `json:"id"`
	SagaID          string               `json:"sagaId"`
	OrderID         string               `json:"orderId"`
	PaymentID       string               `json:"paymentId"`
	CustomerID      string               `json:"customerId"`
	Price           domain.Money         `json:"price"`
	CreatedAt       time.Time            `json:"createdAt"`
	PaymentStatus   domain.PaymentStatus `json:"paymentStatus"`
	FailureMessages []string             `json:"failureMessages"`
}

type Product struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type RestaurantApprovalRequest struct {
	ID                    string                       `json:"id"`
	SagaID                string                       `json:"sagaId"`
	OrderID               string                       `json:"orderId"`
	RestaurantID          string                       `json:"restaurantId"`
	Products              []Product                    `json:"products"`
	Price                 domain.Money                 `json:"price"`
	CreatedAt             time.Time                    `json:"createdAt"`
	RestaurantOrderStatus domain.RestaurantOrderStatus `json:"restaurantOrderStatus"`
}

type RestaurantApprovalResponse struct {
	ID                  string                     `json:"id"`
	SagaID              string                     `json:"sagaId"`
	OrderID             string                     `json:"orderId"`
	RestaurantID        string                     `json:"restaurantId"`
	CreatedAt           time.Time                  `json:"createdAt"`
	OrderApprovalStatus domain.OrderApprovalStatus `json:"orderApprovalStatus"`
	FailureMessages     []string                   `json:"failureMessages"`
}
