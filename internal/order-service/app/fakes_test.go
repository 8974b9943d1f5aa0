package app

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/jcmexdev/food-ordering-sagas/internal/coordinator/sagalog"
	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/domain"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
)

type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeOrders struct {
	mu     sync.Mutex
	orders map[shared.OrderID]domain.Order
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: map[shared.OrderID]domain.Order{}}
}

func (f *fakeOrders) Save(_ context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, exists := f.orders[order.ID]
	switch {
	case order.Version == 0 && exists:
		return shared.ErrConcurrentModification
	case order.Version != 0 && (!exists || stored.Version != order.Version):
		return shared.ErrConcurrentModification
	}
	order.Version++
	c := *order
	c.Items = slices.Clone(order.Items)
	c.FailureMessages = slices.Clone(order.FailureMessages)
	f.orders[order.ID] = c
	return nil
}

func (f *fakeOrders) FindByID(_ context.Context, id shared.OrderID) (domain.Order, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	return o, ok, nil
}

func (f *fakeOrders) FindByTrackingID(_ context.Context, id shared.TrackingID) (domain.Order, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.TrackingID == id {
			return o, true, nil
		}
	}
	return domain.Order{}, false, nil
}

type fakeCustomers map[shared.CustomerID]bool

func (f fakeCustomers) FindCustomer(_ context.Context, id shared.CustomerID) (domain.Customer, bool, error) {
	if !f[id] {
		return domain.Customer{}, false, nil
	}
	return domain.Customer{ID: id}, true, nil
}

type fakeRestaurants map[shared.RestaurantID]domain.Restaurant

func (f fakeRestaurants) FindRestaurantInformation(_ context.Context, id shared.RestaurantID, productIDs []shared.ProductID) (domain.Restaurant, bool, error) {
	r, ok := f[id]
	if !ok {
		return domain.Restaurant{}, false, nil
	}
	var products []domain.Product
	for _, p := range r.Products {
		if slices.Contains(productIDs, p.ID) {
			products = append(products, p)
		}
	}
	r.Products = products
	return r, true, nil
}

type recordingPublisher struct {
	created   []domain.OrderCreatedEvent
	paid      []domain.OrderPaidEvent
	cancelled []domain.OrderCancelledEvent
	err       error
}

func (p *recordingPublisher) PublishOrderCreated(_ context.Context, e domain.OrderCreatedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.created = append(p.created, e)
	return nil
}

func (p *recordingPublisher) PublishOrderPaid(_ context.Context, e domain.OrderPaidEvent) error {
	if p.err != nil {
		return p.err
	}
	p.paid = append(p.paid, e)
	return nil
}

func (p *recordingPublisher) PublishOrderCancelled(_ context.Context, e domain.OrderCancelledEvent) error {
	if p.err != nil {
		return p.err
	}
	p.cancelled = append(p.cancelled, e)
	return nil
}

type memorySagaLog struct {
	entries []sagalog.SagaLog
}

func (m *memorySagaLog) Save(_ context.Context, e *sagalog.SagaLog) error {
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memorySagaLog) GetLatest(_ context.Context, sagaID string) (*sagalog.SagaLog, error) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].SagaID == sagaID {
			e := m.entries[i]
			return &e, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *memorySagaLog) History(_ context.Context, sagaID string) ([]sagalog.SagaLog, error) {
	var out []sagalog.SagaLog
	for _, e := range m.entries {
		if e.SagaID == sagaID {
			out = append(out, e)
		}
	}
	return out, nil
}
