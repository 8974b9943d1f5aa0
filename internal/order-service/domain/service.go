package domain

import (
	"log/slog"

	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
)

// OrderDomainService holds the order transitions that need more than the
// aggregate itself: restaurant data and event timestamps.
type OrderDomainService struct {
	clock shared.Clock
}

func NewOrderDomainService(clock shared.Clock) *OrderDomainService {
	return &OrderDomainService{clock: clock}
}

// ValidateAndInitiateOrder rejects inactive restaurants, copies confirmed
// product data onto the items, validates and initializes the order.
func (s *OrderDomainService) ValidateAndInitiateOrder(order *Order, restaurant Restaurant) (OrderCreatedEvent, error) {
	if err := validateRestaurant(restaurant); err != nil {
		return OrderCreatedEvent{}, err
	}
	setOrderProductInformation(order, restaurant)
	if err := order.ValidateOrder(); err != nil {
		return OrderCreatedEvent{}, err
	}
	if err := order.InitializeOrder(); err != nil {
		return OrderCreatedEvent{}, err
	}
	slog.Info("order initiated", "order_id", order.ID.String())
	return OrderCreatedEvent{Order: order.snapshot(), CreatedAt: s.clock.Now()}, nil
}

func (s *OrderDomainService) PayOrder(order *Order) (OrderPaidEvent, error) {
	if err := order.Pay(); err != nil {
		return OrderPaidEvent{}, err
	}
	slog.Info("order paid", "order_id", order.ID.String())
	return OrderPaidEvent{Order: order.snapshot(), CreatedAt: s.clock.Now()}, nil
}

// ApproveOrder is terminal and emits no event.
func (s *OrderDomainService) ApproveOrder(order *Order) error {
	if err := order.Approve(); err != nil {
		return err
	}
	slog.Info("order approved", "order_id", order.ID.String())
	return nil
}

// CancelOrderPayment starts compensation; the returned event becomes the
// payment cancellation request.
func (s *OrderDomainService) CancelOrderPayment(order *Order, failureMessages []string) (OrderCancelledEvent, error) {
	if err := order.InitCancel(failureMessages); err != nil {
		return OrderCancelledEvent{}, err
	}
	slog.Info("order payment cancelling", "order_id", order.ID.String())
	return OrderCancelledEvent{Order: order.snapshot(), CreatedAt: s.clock.Now()}, nil
}

// CancelOrder finalizes cancellation with the failure messages that came with
// the payment response. It emits no event.
func (s *OrderDomainService) CancelOrder(order *Order, failureMessages []string) error {
	if err := order.Cancel(failureMessages); err != nil {
		return err
	}
	slog.Info("order cancelled", "order_id", order.ID.String())
	return nil
}

func validateRestaurant(restaurant Restaurant) error {
	if !restaurant.Active {
		return shared.Errorf("Restaurant with id %s is currently not active!", restaurant.ID)
	}
	return nil
}

func setOrderProductInformation(order *Order, restaurant Restaurant) {
	for i := range order.Items {
		current := &order.Items[i].Product
		if confirmed, ok := restaurant.findProduct(current.ID); ok {
			current.UpdateWithConfirmedNameAndPrice(confirmed.Name, confirmed.Price)
		}
	}
}
