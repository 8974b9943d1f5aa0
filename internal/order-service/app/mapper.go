package app

import (
	"github.com/google/uuid"

	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/domain"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
)

// createOrderCommandToOrder builds a fresh, unsaved order.
func createOrderCommandToOrder(cmd CreateOrderCommand) *domain.Order {
	items := make([]domain.OrderItem, len(cmd.Items))
	for i, it := range cmd.Items {
		items[i] = domain.OrderItem{
			Product:  domain.Product{ID: it.ProductID},
			Quantity: it.Quantity,
			Price:    it.Price,
			SubTotal: it.SubTotal,
		}
	}
	return &domain.Order{
		CustomerID:   cmd.CustomerID,
		RestaurantID: cmd.RestaurantID,
		DeliveryAddress: domain.StreetAddress{
			ID:         uuid.New(),
			Street:     cmd.Address.Street,
			PostalCode: cmd.Address.PostalCode,
			City:       cmd.Address.City,
		},
		Price: cmd.Price,
		Items: items,
	}
}

func commandProductIDs(cmd CreateOrderCommand) []shared.ProductID {
	ids := make([]shared.ProductID, len(cmd.Items))
	for i, it := range cmd.Items {
		ids[i] = it.ProductID
	}
	return ids
}

func orderToCreateOrderResponse(order *domain.Order, message string) CreateOrderResponse {
	return CreateOrderResponse{
		OrderTrackingID: order.TrackingID,
		OrderStatus:     order.Status,
		Message:         message,
	}
}

func orderToTrackOrderResponse(order domain.Order) TrackOrderResponse {
	return TrackOrderResponse{
		OrderTrackingID: order.TrackingID,
		OrderStatus:     order.Status,
		FailureMessages: order.FailureMessages,
	}
}
