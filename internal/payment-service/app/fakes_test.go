package app

import (
	"context"
	"slices"

	"github.com/jcmexdev/food-ordering-sagas/internal/payment-service/domain"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
)

type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePayments map[shared.OrderID]domain.Payment

func (f fakePayments) Save(_ context.Context, p *domain.Payment) error {
	stored, exists := f[p.OrderID]
	if exists != (p.Version != 0) || (exists && stored.Version != p.Version) {
		return shared.ErrConcurrentModification
	}
	p.Version++
	f[p.OrderID] = *p
	return nil
}

func (f fakePayments) FindByOrderID(_ context.Context, id shared.OrderID) (domain.Payment, bool, error) {
	p, ok := f[id]
	return p, ok, nil
}

type fakeCreditEntries map[shared.CustomerID]domain.CreditEntry

func (f fakeCreditEntries) Save(_ context.Context, e *domain.CreditEntry) error {
	stored, exists := f[e.CustomerID]
	if exists && stored.Version != e.Version {
		return shared.ErrConcurrentModification
	}
	e.Version++
	f[e.CustomerID] = *e
	return nil
}

func (f fakeCreditEntries) FindByCustomerID(_ context.Context, id shared.CustomerID) (domain.CreditEntry, bool, error) {
	e, ok := f[id]
	return e, ok, nil
}

type fakeHistories map[shared.CustomerID][]domain.CreditHistory

func (f fakeHistories) Save(_ context.Context, h domain.CreditHistory) error {
	f[h.CustomerID] = append(f[h.CustomerID], h)
	return nil
}

func (f fakeHistories) FindByCustomerID(_ context.Context, id shared.CustomerID) ([]domain.CreditHistory, bool, error) {
	h, ok := f[id]
	return slices.Clone(h), ok, nil
}

type recordingPublisher struct {
	events []domain.PaymentEvent
}

func (p *recordingPublisher) PublishPaymentCompleted(_ context.Context, e domain.PaymentEvent) error {
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) PublishPaymentCancelled(_ context.Context, e domain.PaymentEvent) error {
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) PublishPaymentFailed(_ context.Context, e domain.PaymentEvent) error {
	p.events = append(p.events, e)
	return nil
}
