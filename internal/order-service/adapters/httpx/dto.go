package httpx

import shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"

type CreateOrderRequest struct {
	CustomerID   string               `json:"customerId"`
	RestaurantID string               `json:"restaurantId"`
	Price        *shared.Money        `json:"price"`
	Items        []CreateOrderItemDTO `json:"items"`
	Address      *OrderAddressDTO     `json:"address"`
}

type CreateOrderItemDTO struct {
	ProductID string        `json:"productId"`
	Quantity  int           `json:"quantity"`
	Price     *shared.Money `json:"price"`
	SubTotal  *shared.Money `json:"subTotal"`
}

type OrderAddressDTO struct {
	Street     string `json:"street"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
}

type CreateOrderResponse struct {
	OrderTrackingID string `json:"orderTrackingId"`
	OrderStatus     string `json:"orderStatus"`
	Message         string `json:"message"`
}

type TrackOrderResponse struct {
	OrderTrackingID string   `json:"orderTrackingId"`
	OrderStatus     string   `json:"orderStatus"`
	FailureMessages []string `json:"failureMessages"`
}

type SagaStepResponse struct {
	Status          string `json:"status"`
	Step            string `json:"step"`
	OrderStatus     string `json:"orderStatus"`
	FailureMessages string `json:"failureMessages"`
	TraceID         string `json:"traceId,omitempty"`
	UpdatedAt       string `json:"updatedAt"`
}

// ErrorResponse carries the HTTP reason phrase as code.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
