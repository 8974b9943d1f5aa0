package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/food-ordering-sagas/internal/payment-service/domain"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
)

var (
	fixedNow   = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	customerID = shared.MustID[shared.CustomerID]("d215b5f8-0249-4dc5-89a3-51fd148cfb41")
)

type fixture struct {
	payments  fakePayments
	entries   fakeCreditEntries
	histories fakeHistories
	publisher *recordingPublisher
	listener  *PaymentRequestListener
	helper    *PaymentRequestHelper
}

// newFixture seeds the customer with balance credit, backed by one CREDIT row.
func newFixture(balance string) *fixture {
	f := &fixture{
		payments:  fakePayments{},
		entries:   fakeCreditEntries{},
		histories: fakeHistories{},
		publisher: &recordingPublisher{},
	}
	if balance != "" {
		amount := shared.MustMoney(balance)
		f.entries[customerID] = domain.CreditEntry{
			ID: shared.NewID[shared.CreditEntryID](), CustomerID: customerID, TotalCreditAmount: amount, Version: 1,
		}
		f.histories[customerID] = []domain.CreditHistory{{
			ID: shared.NewID[shared.CreditHistoryID](), CustomerID: customerID, Amount: amount,
			TransactionType: domain.TransactionTypeCredit,
		}}
	}
	f.helper = NewPaymentRequestHelper(fakeTx{}, f.payments, f.entries, f.histories,
		domain.NewPaymentDomainService(shared.FixedClock{T: fixedNow}), f.publisher)
	f.listener = NewPaymentRequestListener(f.helper)
	return f
}

func paymentRequest(orderID shared.OrderID, price string, status shared.PaymentOrderStatus) PaymentRequest {
	return PaymentRequest{
		ID:                 "msg",
		OrderID:            orderID,
		CustomerID:         customerID,
		Price:              shared.MustMoney(price),
		CreatedAt:          fixedNow,
		PaymentOrderStatus: status,
	}
}

func TestPersistPayment_Completed(t *testing.T) {
	ctx := context.Background()
	f := newFixture("500.00")
	orderID := shared.NewID[shared.OrderID]()

	event, err := f.helper.PersistPayment(ctx, paymentRequest(orderID, "200.00", shared.PaymentOrderStatusPending))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, event.Kind)
	assert.Equal(t, fixedNow, event.CreatedAt)

	payment := f.payments[orderID]
	assert.Equal(t, shared.PaymentStatusCompleted, payment.Status)
	assert.False(t, payment.ID.IsZero())
	assert.Equal(t, "300.00", f.entries[customerID].TotalCreditAmount.String())
	require.Len(t, f.histories[customerID], 2)
	assert.Equal(t, domain.TransactionTypeDebit, f.histories[customerID][1].TransactionType)
	require.Len(t, f.publisher.events, 1)
}

func TestPersistPayment_InsufficientCreditIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	f := newFixture("100.00")
	orderID := shared.NewID[shared.OrderID]()

	event, err := f.helper.PersistPayment(ctx, paymentRequest(orderID, "200.00", shared.PaymentOrderStatusPending))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, event.Kind)
	assert.Contains(t, event.FailureMessages,
		"Customer with id="+customerID.String()+" doesn't have enough credit for payment!")

	assert.Equal(t, shared.PaymentStatusFailed, f.payments[orderID].Status)
	assert.Equal(t, "100.00", f.entries[customerID].TotalCreditAmount.String())
	assert.Equal(t, int64(1), f.entries[customerID].Version)
	assert.Len(t, f.histories[customerID], 1)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, domain.PaymentFailed, f.publisher.events[0].Kind)
}

func TestPersistPayment_DuplicateRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture("500.00")
	req := paymentRequest(shared.NewID[shared.OrderID](), "200.00", shared.PaymentOrderStatusPending)

	require.NoError(t, f.listener.CompletePayment(ctx, req))
	err := f.listener.CompletePayment(ctx, req)
	assert.True(t, errors.Is(err, shared.ErrConcurrentModification))

	assert.Equal(t, "300.00", f.entries[customerID].TotalCreditAmount.String())
	assert.Len(t, f.histories[customerID], 2)
	assert.Len(t, f.publisher.events, 1)
}

func TestPersistPayment_MissingLedger(t *testing.T) {
	ctx := context.Background()
	f := newFixture("")

	_, err := f.helper.PersistPayment(ctx, paymentRequest(shared.NewID[shared.OrderID](), "200.00", shared.PaymentOrderStatusPending))
	assert.True(t, errors.Is(err, ErrPaymentApplication))
	assert.EqualError(t, err, "Could not find credit entry for customer: "+customerID.String())

	f.entries[customerID] = domain.CreditEntry{CustomerID: customerID, TotalCreditAmount: shared.MustMoney("500.00")}
	_, err = f.helper.PersistPayment(ctx, paymentRequest(shared.NewID[shared.OrderID](), "200.00", shared.PaymentOrderStatusPending))
	assert.True(t, errors.Is(err, ErrPaymentApplication))
	assert.EqualError(t, err, "Could not find credit history for customer: "+customerID.String())
	assert.Empty(t, f.payments)
	assert.Empty(t, f.publisher.events)
}

func TestPersistCancelPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture("500.00")
	orderID := shared.NewID[shared.OrderID]()
	require.NoError(t, f.listener.CompletePayment(ctx, paymentRequest(orderID, "200.00", shared.PaymentOrderStatusPending)))
	paymentID := f.payments[orderID].ID

	cancel := paymentRequest(orderID, "200.00", shared.PaymentOrderStatusCancelled)
	event, err := f.helper.PersistCancelPayment(ctx, cancel)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCancelled, event.Kind)
	assert.Equal(t, paymentID, event.Payment.ID)

	assert.Equal(t, shared.PaymentStatusCancelled, f.payments[orderID].Status)
	assert.Equal(t, "500.00", f.entries[customerID].TotalCreditAmount.String())
	require.Len(t, f.histories[customerID], 3)
	assert.Equal(t, domain.TransactionTypeCredit, f.histories[customerID][2].TransactionType)

	err = f.listener.CancelPayment(ctx, cancel)
	assert.True(t, errors.Is(err, shared.ErrConcurrentModification))
	assert.Len(t, f.histories[customerID], 3)
	assert.Len(t, f.publisher.events, 2)
}

func TestPersistCancelPayment_Rejected(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown payment", func(t *testing.T) {
		f := newFixture("500.00")
		orderID := shared.NewID[shared.OrderID]()
		_, err := f.helper.PersistCancelPayment(ctx, paymentRequest(orderID, "200.00", shared.PaymentOrderStatusCancelled))
		assert.True(t, errors.Is(err, ErrPaymentApplication))
		assert.EqualError(t, err, "Payment with order id: "+orderID.String()+" could not be found!")
	})

	t.Run("failed payment is never refunded", func(t *testing.T) {
		f := newFixture("100.00")
		orderID := shared.NewID[shared.OrderID]()
		require.NoError(t, f.listener.CompletePayment(ctx, paymentRequest(orderID, "200.00", shared.PaymentOrderStatusPending)))

		err := f.listener.CancelPayment(ctx, paymentRequest(orderID, "200.00", shared.PaymentOrderStatusCancelled))
		assert.True(t, errors.Is(err, shared.ErrConcurrentModification))
		assert.Equal(t, "100.00", f.entries[customerID].TotalCreditAmount.String())
	})
}

// racingCreditEntries lets another writer update the entry between read and save.
type racingCreditEntries struct {
	fakeCreditEntries
}

func (r racingCreditEntries) Save(ctx context.Context, e *domain.CreditEntry) error {
	stored := r.fakeCreditEntries[e.CustomerID]
	stored.Version++
	r.fakeCreditEntries[e.CustomerID] = stored
	return r.fakeCreditEntries.Save(ctx, e)
}

func TestPersistPayment_ConcurrentCreditUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture("500.00")
	helper := NewPaymentRequestHelper(fakeTx{}, f.payments, racingCreditEntries{f.entries}, f.histories,
		domain.NewPaymentDomainService(shared.FixedClock{T: fixedNow}), f.publisher)

	_, err := helper.PersistPayment(ctx, paymentRequest(shared.NewID[shared.OrderID](), "200.00", shared.PaymentOrderStatusPending))
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConcurrentModification))
	assert.Equal(t, "500.00", f.entries[customerID].TotalCreditAmount.String())
	assert.Len(t, f.histories[customerID], 1)
	assert.Empty(t, f.publisher.events)
}
