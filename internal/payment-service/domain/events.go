package domain

import "time"

type PaymentEventKind int

const (
	PaymentCompleted PaymentEventKind = iota + 1
	PaymentCancelled
	PaymentFailed
)

func (k PaymentEventKind) String() string {
	switch k {
	case PaymentCompleted:
		return "completed"
	case PaymentCancelled:
		return "cancelled"
	case PaymentFailed:
		return "failed"
	}
	return "unknown"
}

// PaymentEvent is the outcome of a payment operation. FailureMessages is only
// set when Kind is PaymentFailed.
type PaymentEvent struct {
	Kind            PaymentEventKind
	Payment         Payment
	CreatedAt       time.Time
	FailureMessages []string
}
