// Package restaurantservice is a development stand-in for the restaurant
// approval participant. It keeps per-product stock in memory and approves a
// paid order when every line can be reserved.
package restaurantservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/interceptors"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/messaging"
	"github.com/jcmexdev/food-ordering-sagas/internal/restaurant-service/domain"
)

type Approver struct {
	out    messaging.Publisher
	topics messaging.Topics
	clock  shared.Clock

	mu           sync.Mutex
	stock        map[shared.ProductID]int
	reservations map[shared.OrderID]domain.Reservation
}

func NewApprover(out messaging.Publisher, topics messaging.Topics, clock shared.Clock, stock map[shared.ProductID]int) *Approver {
	s := make(map[shared.ProductID]int, len(stock))
	for id, qty := range stock {
		s[id] = qty
	}
	return &Approver{
		out:          out,
		topics:       topics,
		clock:        clock,
		stock:        s,
		reservations: make(map[shared.OrderID]domain.Reservation),
	}
}

// Available returns the stock left for a product.
func (a *Approver) Available(id shared.ProductID) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stock[id]
}

// Handle is a messaging.Handler for restaurant approval requests. A request
// for an order that was already answered repeats the earlier answer.
func (a *Approver) Handle(ctx context.Context, msg messaging.Message) error {
	req, err := messaging.Decode[messaging.RestaurantApprovalRequest](msg)
	if err != nil {
		slog.ErrorContext(ctx, "malformed message, dropping", "topic", msg.Topic, "message_id", msg.ID, "error", err)
		return nil
	}
	orderID, err := shared.ParseID[shared.OrderID](req.OrderID)
	if err != nil {
		slog.ErrorContext(ctx, "malformed message, dropping", "topic", msg.Topic, "message_id", msg.ID, "error", err)
		return nil
	}
	items, err := stockItems(req.Products)
	if err != nil {
		slog.ErrorContext(ctx, "malformed message, dropping", "topic", msg.Topic, "message_id", msg.ID, "error", err)
		return nil
	}

	reservation := a.Reserve(ctx, orderID, items)
	return a.reply(ctx, req, reservation)
}

// Reserve takes stock for all items or none of them.
func (a *Approver) Reserve(ctx context.Context, orderID shared.OrderID, items []domain.StockItem) domain.Reservation {
	a.mu.Lock()
	defer a.mu.Unlock()

	if r, ok := a.reservations[orderID]; ok {
		slog.WarnContext(ctx, "order already answered", "order_id", orderID.String(), "status", string(r.Status))
		return r
	}

	// Lines for the same product draw on one stock count.
	requested := make(map[shared.ProductID]int, len(items))
	var order []shared.ProductID
	for _, item := range items {
		if _, seen := requested[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		requested[item.ProductID] += item.Quantity
	}

	var failureMessages []string
	for _, id := range order {
		current, exists := a.stock[id]
		switch {
		case !exists:
			failureMessages = append(failureMessages,
				fmt.Sprintf("Product with id: %s is not available!", id))
		case current < requested[id]:
			failureMessages = append(failureMessages,
				fmt.Sprintf("Product with id: %s has only %d items in stock, %d requested!", id, current, requested[id]))
		}
	}

	r := domain.Reservation{OrderID: orderID, Items: items}
	if len(failureMessages) > 0 {
		r.Status = shared.OrderApprovalStatusRejected
		r.FailureMessages = failureMessages
		slog.InfoContext(ctx, "order rejected", "order_id", orderID.String(), "failure_messages", strings.Join(failureMessages, shared.FailureMessageDelimiter))
	} else {
		for id, qty := range requested {
			a.stock[id] -= qty
		}
		r.Status = shared.OrderApprovalStatusApproved
		slog.InfoContext(ctx, "order approved", "order_id", orderID.String())
	}
	a.reservations[orderID] = r
	return r
}

func (a *Approver) reply(ctx context.Context, req messaging.RestaurantApprovalRequest, r domain.Reservation) error {
	msgs := r.FailureMessages
	if msgs == nil {
		msgs = []string{}
	}
	resp := messaging.RestaurantApprovalResponse{
		ID:                  uuid.NewString(),
		SagaID:              req.SagaID,
		OrderID:             req.OrderID,
		RestaurantID:        req.RestaurantID,
		CreatedAt:           a.clock.Now().UTC(),
		OrderApprovalStatus: r.Status,
		FailureMessages:     msgs,
	}
	msg, err := messaging.NewMessage(resp.ID, a.topics.RestaurantApprovalResponse, resp.OrderID, resp)
	if err != nil {
		return err
	}
	interceptors.InjectHeaders(ctx, msg.Headers)
	messaging.InjectTrace(ctx, &msg)
	return a.out.Publish(ctx, msg)
}

func stockItems(products []messaging.Product) ([]domain.StockItem, error) {
	items := make([]domain.StockItem, 0, len(products))
	for _, p := range products {
		id, err := shared.ParseID[shared.ProductID](p.ID)
		if err != nil {
			return nil, fmt.Errorf("product %q: %w", p.ID, err)
		}
		items = append(items, domain.StockItem{ProductID: id, Quantity: p.Quantity})
	}
	return items, nil
}
