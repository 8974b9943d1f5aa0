package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
)

var (
	productOneID = shared.MustID[shared.ProductID]("d215b5f8-0249-4dc5-89a3-51fd148cfb48")
	productTwoID = shared.MustID[shared.ProductID]("d215b5f8-0249-4dc5-89a3-51fd148cfb47")
)

func newTestOrder(price string, items ...OrderItem) *Order {
	return &Order{
		CustomerID:   shared.MustID[shared.CustomerID]("d215b5f8-0249-4dc5-89a3-51fd148cfb41"),
		RestaurantID: shared.MustID[shared.RestaurantID]("d215b5f8-0249-4dc5-89a3-51fd148cfb45"),
		DeliveryAddress: StreetAddress{
			Street:     "street_1",
			PostalCode: "1000AB",
			City:       "Paris",
		},
		Price: shared.MustMoney(price),
		Items: items,
	}
}

func item(product shared.ProductID, qty int, price, subTotal string) OrderItem {
	return OrderItem{
		Product:  Product{ID: product, Price: shared.MustMoney(price)},
		Quantity: qty,
		Price:    shared.MustMoney(price),
		SubTotal: shared.MustMoney(subTotal),
	}
}

func validItems() []OrderItem {
	return []OrderItem{
		item(productOneID, 1, "50.00", "50.00"),
		item(productTwoID, 3, "50.00", "150.00"),
	}
}

func TestOrder_InitializeOrder(t *testing.T) {
	order := newTestOrder("200.00", validItems()...)

	require.NoError(t, order.InitializeOrder())

	assert.False(t, order.ID.IsZero())
	assert.NotEqual(t, shared.TrackingID{}, order.TrackingID)
	assert.NotEqual(t, order.ID.String(), order.TrackingID.String())
	assert.Equal(t, shared.OrderStatusPending, order.Status)
	for i, it := range order.Items {
		assert.Equal(t, shared.OrderItemID(i+1), it.ID)
		assert.Equal(t, order.ID, it.OrderID)
	}

	err := order.InitializeOrder()
	require.Error(t, err)
	assert.EqualError(t, err, "Order is not in correct state for initialization!")
	assert.True(t, errors.Is(err, shared.ErrInvariant))
}

func TestOrder_ValidateOrder(t *testing.T) {
	tests := []struct {
		name    string
		order   *Order
		wantErr string
	}{
		{
			name:  "valid",
			order: newTestOrder("200.00", validItems()...),
		},
		{
			name:    "zero total",
			order:   newTestOrder("0.00", validItems()...),
			wantErr: "Total price must be greater than zero!",
		},
		{
			name:    "total differs from items",
			order:   newTestOrder("250.00", validItems()...),
			wantErr: "Total price: 250.00 is not equal to Order items total: 200.00!",
		},
		{
			name: "item price differs from product",
			order: newTestOrder("210.00",
				OrderItem{
					Product:  Product{ID: productOneID, Price: shared.MustMoney("50.00")},
					Quantity: 1,
					Price:    shared.MustMoney("60.00"),
					SubTotal: shared.MustMoney("60.00"),
				},
				item(productTwoID, 3, "50.00", "150.00"),
			),
			wantErr: "Order item price: 60.00 is not valid for product " + productOneID.String(),
		},
		{
			name:    "subtotal differs from price times quantity",
			order:   newTestOrder("100.00", item(productOneID, 1, "50.00", "100.00")),
			wantErr: "Order item price: 50.00 is not valid for product " + productOneID.String(),
		},
		{
			name: "already initialized",
			order: func() *Order {
				o := newTestOrder("200.00", validItems()...)
				o.Status = shared.OrderStatusPending
				return o
			}(),
			wantErr: "Order is not in correct state for initialization!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.ValidateOrder()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
			assert.True(t, errors.Is(err, shared.ErrInvariant))
		})
	}
}

func TestOrder_StateMachineGuards(t *testing.T) {
	all := []shared.OrderStatus{
		shared.OrderStatusPending,
		shared.OrderStatusPaid,
		shared.OrderStatusApproved,
		shared.OrderStatusCancelling,
		shared.OrderStatusCancelled,
	}
	tests := []struct {
		op      string
		apply   func(*Order) error
		allowed map[shared.OrderStatus]shared.OrderStatus
		wantErr string
	}{
		{
			op:      "pay",
			apply:   (*Order).Pay,
			allowed: map[shared.OrderStatus]shared.OrderStatus{shared.OrderStatusPending: shared.OrderStatusPaid},
			wantErr: "Order is not in correct state for pay operation!",
		},
		{
			op:      "approve",
			apply:   (*Order).Approve,
			allowed: map[shared.OrderStatus]shared.OrderStatus{shared.OrderStatusPaid: shared.OrderStatusApproved},
			wantErr: "Order is not in correct state for approve operation!",
		},
		{
			op:      "init cancel",
			apply:   func(o *Order) error { return o.InitCancel(nil) },
			allowed: map[shared.OrderStatus]shared.OrderStatus{shared.OrderStatusPaid: shared.OrderStatusCancelling},
			wantErr: "Order is not in correct state for init cancel operation!",
		},
		{
			op:    "cancel",
			apply: func(o *Order) error { return o.Cancel(nil) },
			allowed: map[shared.OrderStatus]shared.OrderStatus{
				shared.OrderStatusPending:    shared.OrderStatusCancelled,
				shared.OrderStatusCancelling: shared.OrderStatusCancelled,
			},
			wantErr: "Order is not in correct state for cancel operation!",
		},
	}
	for _, tt := range tests {
		for _, from := range all {
			t.Run(tt.op+" from "+string(from), func(t *testing.T) {
				order := &Order{Status: from}
				err := tt.apply(order)
				if to, ok := tt.allowed[from]; ok {
					require.NoError(t, err)
					assert.Equal(t, to, order.Status)
					return
				}
				assert.EqualError(t, err, tt.wantErr)
				assert.Equal(t, from, order.Status)
			})
		}
	}
}

func TestOrder_FailureMessageMerge(t *testing.T) {
	t.Run("nil list adopts new list as given", func(t *testing.T) {
		order := &Order{Status: shared.OrderStatusPaid}
		msgs := []string{"out of stock", ""}
		require.NoError(t, order.InitCancel(msgs))
		assert.Equal(t, []string{"out of stock", ""}, order.FailureMessages)

		msgs[0] = "changed"
		assert.Equal(t, "out of stock", order.FailureMessages[0])
	})

	t.Run("nil list adopts empty list", func(t *testing.T) {
		order := &Order{Status: shared.OrderStatusPending}
		require.NoError(t, order.Cancel([]string{}))
		assert.NotNil(t, order.FailureMessages)
		assert.Empty(t, order.FailureMessages)
	})

	t.Run("existing list appends non-empty entries", func(t *testing.T) {
		order := &Order{Status: shared.OrderStatusPaid}
		require.NoError(t, order.InitCancel([]string{"out of stock"}))
		require.NoError(t, order.Cancel([]string{"", "refunded late"}))
		assert.Equal(t, []string{"out of stock", "refunded late"}, order.FailureMessages)
	})

	t.Run("existing list ignores nil", func(t *testing.T) {
		order := &Order{Status: shared.OrderStatusCancelling, FailureMessages: []string{"a"}}
		require.NoError(t, order.Cancel(nil))
		assert.Equal(t, []string{"a"}, order.FailureMessages)
	})
}

func TestStreetAddress_EqualIgnoresID(t *testing.T) {
	a := StreetAddress{Street: "s", PostalCode: "p", City: "c"}
	b := a
	b.ID = [16]byte{1}
	assert.True(t, a.Equal(b))

	b.City = "other"
	assert.False(t, a.Equal(b))
}
