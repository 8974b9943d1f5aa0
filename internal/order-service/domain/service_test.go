package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService() *OrderDomainService {
	return NewOrderDomainService(shared.FixedClock{T: fixedNow})
}

func activeRestaurant(order *Order) Restaurant {
	return Restaurant{
		ID:     order.RestaurantID,
		Active: true,
		Products: []Product{
			{ID: productOneID, Name: "product-1", Price: shared.MustMoney("50.00")},
			{ID: productTwoID, Name: "product-2", Price: shared.MustMoney("50.00")},
		},
	}
}

func TestValidateAndInitiateOrder(t *testing.T) {
	svc := newTestService()

	t.Run("creates pending order", func(t *testing.T) {
		order := newTestOrder("200.00", validItems()...)

		event, err := svc.ValidateAndInitiateOrder(order, activeRestaurant(order))
		require.NoError(t, err)

		assert.Equal(t, shared.OrderStatusPending, order.Status)
		assert.Equal(t, order.ID, event.Order.ID)
		assert.Equal(t, shared.OrderStatusPending, event.Order.Status)
		assert.Equal(t, fixedNow, event.CreatedAt)
		assert.Equal(t, "product-1", order.Items[0].Product.Name)
	})

	t.Run("total mismatch", func(t *testing.T) {
		order := newTestOrder("250.00", validItems()...)

		_, err := svc.ValidateAndInitiateOrder(order, activeRestaurant(order))
		assert.EqualError(t, err, "Total price: 250.00 is not equal to Order items total: 200.00!")
		assert.True(t, order.ID.IsZero())
	})

	t.Run("item price not confirmed by restaurant", func(t *testing.T) {
		order := newTestOrder("210.00",
			item(productOneID, 1, "60.00", "60.00"),
			item(productTwoID, 3, "50.00", "150.00"),
		)

		_, err := svc.ValidateAndInitiateOrder(order, activeRestaurant(order))
		assert.EqualError(t, err, "Order item price: 60.00 is not valid for product "+productOneID.String())
		assert.Equal(t, "50.00", order.Items[0].Product.Price.String())
	})

	t.Run("inactive restaurant", func(t *testing.T) {
		order := newTestOrder("200.00", validItems()...)
		restaurant := activeRestaurant(order)
		restaurant.Active = false

		_, err := svc.ValidateAndInitiateOrder(order, restaurant)
		assert.EqualError(t, err, "Restaurant with id "+order.RestaurantID.String()+" is currently not active!")
		assert.True(t, errors.Is(err, shared.ErrInvariant))
		assert.Empty(t, order.Items[0].Product.Name)
	})

	t.Run("unknown product keeps client data", func(t *testing.T) {
		unknown := shared.NewID[shared.ProductID]()
		order := newTestOrder("50.00", item(unknown, 1, "50.00", "50.00"))
		order.Items[0].Product.Name = "client"

		_, err := svc.ValidateAndInitiateOrder(order, activeRestaurant(order))
		require.NoError(t, err)
		assert.Equal(t, "client", order.Items[0].Product.Name)
	})
}

func TestOrderDomainService_HappyPath(t *testing.T) {
	svc := newTestService()
	order := newTestOrder("200.00", validItems()...)
	_, err := svc.ValidateAndInitiateOrder(order, activeRestaurant(order))
	require.NoError(t, err)

	paid, err := svc.PayOrder(order)
	require.NoError(t, err)
	assert.Equal(t, shared.OrderStatusPaid, paid.Order.Status)

	require.NoError(t, svc.ApproveOrder(order))
	assert.Equal(t, shared.OrderStatusApproved, order.Status)
	assert.Equal(t, shared.OrderStatusPaid, paid.Order.Status, "event holds a snapshot")

	_, err = svc.PayOrder(order)
	assert.EqualError(t, err, "Order is not in correct state for pay operation!")
}

func TestOrderDomainService_RejectedByRestaurant(t *testing.T) {
	svc := newTestService()
	order := newTestOrder("200.00", validItems()...)
	_, err := svc.ValidateAndInitiateOrder(order, activeRestaurant(order))
	require.NoError(t, err)
	_, err = svc.PayOrder(order)
	require.NoError(t, err)

	event, err := svc.CancelOrderPayment(order, []string{"out of stock"})
	require.NoError(t, err)
	assert.Equal(t, shared.OrderStatusCancelling, order.Status)
	assert.Equal(t, []string{"out of stock"}, event.Order.FailureMessages)
	assert.Equal(t, fixedNow, event.CreatedAt)

	require.NoError(t, svc.CancelOrder(order, []string{"", "payment refunded"}))
	assert.Equal(t, shared.OrderStatusCancelled, order.Status)
	assert.Equal(t, []string{"out of stock", "payment refunded"}, order.FailureMessages)

	assert.EqualError(t, svc.CancelOrder(order, nil), "Order is not in correct state for cancel operation!")
}

func TestOrderDomainService_CancelBeforePayment(t *testing.T) {
	svc := newTestService()
	order := newTestOrder("200.00", validItems()...)
	_, err := svc.ValidateAndInitiateOrder(order, activeRestaurant(order))
	require.NoError(t, err)

	require.NoError(t, svc.CancelOrder(order, []string{"insufficient credit"}))
	assert.Equal(t, shared.OrderStatusCancelled, order.Status)

	_, err = svc.CancelOrderPayment(order, nil)
	assert.EqualError(t, err, "Order is not in correct state for init cancel operation!")
}
