package restaurantservice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/messaging"
)

var (
	productOne = shared.MustID[shared.ProductID]("d215b5f8-0249-4dc5-89a3-51fd148cfb48")
	productTwo = shared.MustID[shared.ProductID]("d215b5f8-0249-4dc5-89a3-51fd148cfb47")
)

type recordingPublisher struct {
	msgs []messaging.Message
}

func (p *recordingPublisher) Publish(_ context.Context, msg messaging.Message) error {
	p.msgs = append(p.msgs, msg)
	return nil
}

func newApprover() (*Approver, *recordingPublisher) {
	out := &recordingPublisher{}
	clock := shared.FixedClock{T: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewApprover(out, messaging.DefaultTopics(), clock, map[shared.ProductID]int{
		productOne: 5,
		productTwo: 2,
	}), out
}

func approvalRequest(t *testing.T, orderID shared.OrderID, products ...messaging.Product) messaging.Message {
	t.Helper()
	req := messaging.RestaurantApprovalRequest{
		ID:                    "req-" + orderID.String(),
		SagaID:                orderID.String(),
		OrderID:               orderID.String(),
		RestaurantID:          "d215b5f8-0249-4dc5-89a3-51fd148cfb45",
		Products:              products,
		Price:                 shared.MustMoney("100.00"),
		RestaurantOrderStatus: shared.RestaurantOrderStatusPaid,
	}
	msg, err := messaging.NewMessage(req.ID, messaging.TopicRestaurantApprovalRequest, req.OrderID, req)
	require.NoError(t, err)
	return msg
}

func decodeLast(t *testing.T, out *recordingPublisher) messaging.RestaurantApprovalResponse {
	t.Helper()
	require.NotEmpty(t, out.msgs)
	last := out.msgs[len(out.msgs)-1]
	assert.Equal(t, messaging.TopicRestaurantApprovalResponse, last.Topic)
	resp, err := messaging.Decode[messaging.RestaurantApprovalResponse](last)
	require.NoError(t, err)
	return resp
}

func TestApprover_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("approves and reserves stock", func(t *testing.T) {
		a, out := newApprover()
		orderID := shared.NewID[shared.OrderID]()

		require.NoError(t, a.Handle(ctx, approvalRequest(t, orderID,
			messaging.Product{ID: productOne.String(), Quantity: 3},
			messaging.Product{ID: productTwo.String(), Quantity: 2},
		)))

		resp := decodeLast(t, out)
		assert.Equal(t, shared.OrderApprovalStatusApproved, resp.OrderApprovalStatus)
		assert.Equal(t, orderID.String(), resp.OrderID)
		assert.Empty(t, resp.FailureMessages)
		assert.Equal(t, 2, a.Available(productOne))
		assert.Equal(t, 0, a.Available(productTwo))
	})

	t.Run("rejects without touching stock", func(t *testing.T) {
		a, out := newApprover()
		unknown := shared.NewID[shared.ProductID]()

		require.NoError(t, a.Handle(ctx, approvalRequest(t, shared.NewID[shared.OrderID](),
			messaging.Product{ID: productOne.String(), Quantity: 1},
			messaging.Product{ID: productTwo.String(), Quantity: 3},
			messaging.Product{ID: unknown.String(), Quantity: 1},
		)))

		resp := decodeLast(t, out)
		assert.Equal(t, shared.OrderApprovalStatusRejected, resp.OrderApprovalStatus)
		assert.Equal(t, []string{
			"Product with id: " + productTwo.String() + " has only 2 items in stock, 3 requested!",
			"Product with id: " + unknown.String() + " is not available!",
		}, resp.FailureMessages)
		assert.Equal(t, 5, a.Available(productOne))
	})

	t.Run("sums lines for the same product", func(t *testing.T) {
		a, out := newApprover()

		require.NoError(t, a.Handle(ctx, approvalRequest(t, shared.NewID[shared.OrderID](),
			messaging.Product{ID: productOne.String(), Quantity: 3},
			messaging.Product{ID: productOne.String(), Quantity: 3},
		)))

		resp := decodeLast(t, out)
		assert.Equal(t, shared.OrderApprovalStatusRejected, resp.OrderApprovalStatus)
		assert.Equal(t, []string{
			"Product with id: " + productOne.String() + " has only 5 items in stock, 6 requested!",
		}, resp.FailureMessages)
		assert.Equal(t, 5, a.Available(productOne))

		require.NoError(t, a.Handle(ctx, approvalRequest(t, shared.NewID[shared.OrderID](),
			messaging.Product{ID: productOne.String(), Quantity: 2},
			messaging.Product{ID: productOne.String(), Quantity: 3},
		)))
		assert.Equal(t, shared.OrderApprovalStatusApproved, decodeLast(t, out).OrderApprovalStatus)
		assert.Equal(t, 0, a.Available(productOne))
	})

	t.Run("repeats the answer for a known order", func(t *testing.T) {
		a, out := newApprover()
		orderID := shared.NewID[shared.OrderID]()
		msg := approvalRequest(t, orderID, messaging.Product{ID: productOne.String(), Quantity: 4})

		require.NoError(t, a.Handle(ctx, msg))
		require.NoError(t, a.Handle(ctx, msg))

		require.Len(t, out.msgs, 2)
		assert.Equal(t, shared.OrderApprovalStatusApproved, decodeLast(t, out).OrderApprovalStatus)
		assert.Equal(t, 1, a.Available(productOne))
	})

	t.Run("drops malformed", func(t *testing.T) {
		a, out := newApprover()
		assert.NoError(t, a.Handle(ctx, messaging.Message{ID: "x", Payload: []byte("[")}))
		assert.NoError(t, a.Handle(ctx, approvalRequest(t, shared.NewID[shared.OrderID](),
			messaging.Product{ID: "nope", Quantity: 1})))
		assert.Empty(t, out.msgs)
	})
}
