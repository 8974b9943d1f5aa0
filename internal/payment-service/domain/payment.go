package domain

import (
	"time"

	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
)

// Payment records one charge for an order and its outcome. It is resolved to
// COMPLETED, CANCELLED or FAILED within the call that creates or cancels it.
type Payment struct {
	ID         shared.PaymentID
	OrderID    shared.OrderID
	CustomerID shared.CustomerID
	Price      shared.Money
	Status     shared.PaymentStatus
	CreatedAt  time.Time
	Version    int64
}

// ValidatePayment appends a failure message when the price is not positive.
// It never returns an error; the saga reports the failure downstream.
func (p *Payment) ValidatePayment(failureMessages []string) []string {
	if !p.Price.IsGreaterThanZero() {
		failureMessages = append(failureMessages, "Total price must be greater than zero!")
	}
	return failureMessages
}

// InitializePayment assigns a fresh id and the creation time.
func (p *Payment) InitializePayment(clock shared.Clock) {
	p.ID = shared.NewID[shared.PaymentID]()
	p.CreatedAt = clock.Now()
}

func (p *Payment) UpdateStatus(status shared.PaymentStatus) {
	p.Status = status
}
