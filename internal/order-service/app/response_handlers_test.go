package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/food-ordering-sagas/internal/coordinator/sagalog"
	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/domain"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
)

func createdOrder(t *testing.T, f *fixture) domain.Order {
	t.Helper()
	ctx := context.Background()
	resp, err := f.service.CreateOrder(ctx, createOrderCommand("200.00"))
	require.NoError(t, err)
	order, ok, err := f.orders.FindByTrackingID(ctx, resp.OrderTrackingID)
	require.NoError(t, err)
	require.True(t, ok)
	return order
}

func paymentResponse(orderID shared.OrderID, status shared.PaymentStatus, msgs ...string) PaymentResponse {
	return PaymentResponse{
		ID:              "msg",
		OrderID:         orderID,
		CustomerID:      customerID,
		Price:           shared.MustMoney("200.00"),
		PaymentStatus:   status,
		FailureMessages: msgs,
	}
}

func approvalResponse(orderID shared.OrderID, status shared.OrderApprovalStatus, msgs ...string) RestaurantApprovalResponse {
	return RestaurantApprovalResponse{
		ID:                  "msg",
		OrderID:             orderID,
		RestaurantID:        restaurantID,
		OrderApprovalStatus: status,
		FailureMessages:     msgs,
	}
}

func status(t *testing.T, f *fixture, id shared.OrderID) domain.Order {
	t.Helper()
	order, ok, err := f.orders.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)
	return order
}

func TestSaga_HappyPath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(true)
	order := createdOrder(t, f)

	require.NoError(t, f.payments.PaymentCompleted(ctx, paymentResponse(order.ID, shared.PaymentStatusCompleted)))
	assert.Equal(t, shared.OrderStatusPaid, status(t, f, order.ID).Status)
	require.Len(t, f.publisher.paid, 1)
	assert.Equal(t, shared.OrderStatusPaid, f.publisher.paid[0].Order.Status)
	assert.Len(t, f.publisher.paid[0].Order.Items, 2)

	require.NoError(t, f.approval.OrderApproved(ctx, approvalResponse(order.ID, shared.OrderApprovalStatusApproved)))
	assert.Equal(t, shared.OrderStatusApproved, status(t, f, order.ID).Status)

	history, err := f.sagaLog.History(ctx, order.ID.String())
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, sagalog.StatusCompleted, history[2].Status)
	assert.Equal(t, sagalog.StepOrderApproved, history[2].CurrentStep)
}

func TestSaga_DuplicateResponsesAreConcurrentModifications(t *testing.T) {
	ctx := context.Background()
	f := newFixture(true)
	order := createdOrder(t, f)

	completed := paymentResponse(order.ID, shared.PaymentStatusCompleted)
	require.NoError(t, f.payments.PaymentCompleted(ctx, completed))
	err := f.payments.PaymentCompleted(ctx, completed)
	assert.True(t, errors.Is(err, shared.ErrConcurrentModification))
	assert.Len(t, f.publisher.paid, 1)

	approved := approvalResponse(order.ID, shared.OrderApprovalStatusApproved)
	require.NoError(t, f.approval.OrderApproved(ctx, approved))
	err = f.approval.OrderApproved(ctx, approved)
	assert.True(t, errors.Is(err, shared.ErrConcurrentModification))

	stored := status(t, f, order.ID)
	assert.Equal(t, shared.OrderStatusApproved, stored.Status)
	assert.Equal(t, int64(3), stored.Version)
}

func TestSaga_RestaurantRejection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(true)
	order := createdOrder(t, f)
	require.NoError(t, f.payments.PaymentCompleted(ctx, paymentResponse(order.ID, shared.PaymentStatusCompleted)))

	rejected := approvalResponse(order.ID, shared.OrderApprovalStatusRejected, "out of stock")
	require.NoError(t, f.approval.OrderRejected(ctx, rejected))

	stored := status(t, f, order.ID)
	assert.Equal(t, shared.OrderStatusCancelling, stored.Status)
	assert.Equal(t, []string{"out of stock"}, stored.FailureMessages)
	require.Len(t, f.publisher.cancelled, 1)
	assert.Equal(t, shared.OrderStatusCancelling, f.publisher.cancelled[0].Order.Status)

	err := f.approval.OrderRejected(ctx, rejected)
	assert.True(t, errors.Is(err, shared.ErrConcurrentModification))
	assert.Len(t, f.publisher.cancelled, 1)

	refunded := paymentResponse(order.ID, shared.PaymentStatusCancelled, "", "payment refunded")
	require.NoError(t, f.payments.PaymentCancelled(ctx, refunded))
	stored = status(t, f, order.ID)
	assert.Equal(t, shared.OrderStatusCancelled, stored.Status)
	assert.Equal(t, []string{"out of stock", "payment refunded"}, stored.FailureMessages)

	err = f.payments.PaymentCancelled(ctx, refunded)
	assert.True(t, errors.Is(err, shared.ErrConcurrentModification))

	latest, err := f.sagaLog.GetLatest(ctx, order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, sagalog.StatusFailed, latest.Status)
}

func TestSaga_PaymentFailed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(true)
	order := createdOrder(t, f)

	msg := "Customer with id=" + customerID.String() + " doesn't have enough credit for payment!"
	require.NoError(t, f.payments.PaymentCancelled(ctx, paymentResponse(order.ID, shared.PaymentStatusFailed, msg)))

	stored := status(t, f, order.ID)
	assert.Equal(t, shared.OrderStatusCancelled, stored.Status)
	assert.Equal(t, []string{msg}, stored.FailureMessages)
	assert.Empty(t, f.publisher.paid)
	assert.Empty(t, f.publisher.cancelled)

	err := f.payments.PaymentCompleted(ctx, paymentResponse(order.ID, shared.PaymentStatusCompleted))
	assert.True(t, errors.Is(err, shared.ErrConcurrentModification))
}

func TestSaga_UnknownOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(true)
	missing := shared.NewID[shared.OrderID]()

	err := f.payments.PaymentCompleted(ctx, paymentResponse(missing, shared.PaymentStatusCompleted))
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	err = f.approval.OrderRejected(ctx, approvalResponse(missing, shared.OrderApprovalStatusRejected))
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.EqualError(t, err, "Could not find order with id "+missing.String())
}
