package domain

import (
	"slices"

	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
)

// Order is the aggregate root of the order service. It is loaded, mutated
// through its transition methods and saved by a single handler invocation;
// Version guards the save against concurrent deliveries.
type Order struct {
	ID              shared.OrderID
	CustomerID      shared.CustomerID
	RestaurantID    shared.RestaurantID
	DeliveryAddress StreetAddress
	Price           shared.Money
	Items           []OrderItem
	TrackingID      shared.TrackingID
	Status          shared.OrderStatus
	FailureMessages []string
	Version         int64
}

// InitializeOrder assigns the order and tracking ids, sets PENDING and
// numbers the items from 1.
func (o *Order) InitializeOrder() error {
	if err := o.validateInitialOrder(); err != nil {
		return err
	}
	o.ID = shared.NewID[shared.OrderID]()
	o.TrackingID = shared.NewID[shared.TrackingID]()
	o.Status = shared.OrderStatusPending
	o.initializeOrderItems()
	return nil
}

// ValidateOrder checks the order before initialization. Price invariants are
// checked here once and never again.
func (o *Order) ValidateOrder() error {
	if err := o.validateInitialOrder(); err != nil {
		return err
	}
	if err := o.validateTotalPrice(); err != nil {
		return err
	}
	if err := o.validateItemsPrice(); err != nil {
		return err
	}
	return o.validateItems()
}

func (o *Order) Pay() error {
	if o.Status != shared.OrderStatusPending {
		return shared.NewError("Order is not in correct state for pay operation!")
	}
	o.Status = shared.OrderStatusPaid
	return nil
}

func (o *Order) Approve() error {
	if o.Status != shared.OrderStatusPaid {
		return shared.NewError("Order is not in correct state for approve operation!")
	}
	o.Status = shared.OrderStatusApproved
	return nil
}

func (o *Order) InitCancel(failureMessages []string) error {
	if o.Status != shared.OrderStatusPaid {
		return shared.NewError("Order is not in correct state for init cancel operation!")
	}
	o.Status = shared.OrderStatusCancelling
	o.updateFailureMessages(failureMessages)
	return nil
}

func (o *Order) Cancel(failureMessages []string) error {
	if o.Status != shared.OrderStatusCancelling && o.Status != shared.OrderStatusPending {
		return shared.NewError("Order is not in correct state for cancel operation!")
	}
	o.Status = shared.OrderStatusCancelled
	o.updateFailureMessages(failureMessages)
	return nil
}

// updateFailureMessages appends the non-empty new messages when the order
// already holds a list, and otherwise adopts the new list as given.
func (o *Order) updateFailureMessages(failureMessages []string) {
	if o.FailureMessages != nil && failureMessages != nil {
		for _, msg := range failureMessages {
			if msg != "" {
				o.FailureMessages = append(o.FailureMessages, msg)
			}
		}
	}
	if o.FailureMessages == nil {
		o.FailureMessages = slices.Clone(failureMessages)
	}
}

func (o *Order) validateInitialOrder() error {
	if !o.ID.IsZero() || o.Status != "" {
		return shared.NewError("Order is not in correct state for initialization!")
	}
	return nil
}

func (o *Order) validateTotalPrice() error {
	if !o.Price.IsGreaterThanZero() {
		return shared.NewError("Total price must be greater than zero!")
	}
	return nil
}

func (o *Order) validateItemsPrice() error {
	itemsTotal := shared.ZeroMoney
	for _, item := range o.Items {
		itemsTotal = itemsTotal.Add(item.SubTotal)
	}
	if !o.Price.Equal(itemsTotal) {
		return shared.Errorf("Total price: %s is not equal to Order items total: %s!", o.Price, itemsTotal)
	}
	return nil
}

func (o *Order) validateItems() error {
	for _, item := range o.Items {
		if !item.IsPriceValid() {
			return shared.Errorf("Order item price: %s is not valid for product %s", item.Price, item.Product.ID)
		}
	}
	return nil
}

func (o *Order) initializeOrderItems() {
	for i := range o.Items {
		o.Items[i].initializeOrderItem(o.ID, shared.OrderItemID(i+1))
	}
}

// snapshot copies the order so events never alias the handler's aggregate.
func (o *Order) snapshot() Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	c.FailureMessages = slices.Clone(o.FailureMessages)
	return c
}
