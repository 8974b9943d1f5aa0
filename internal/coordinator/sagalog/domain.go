// Package sagalog is an append-only audit trail of the order saga.
//
// The order service writes one row per transition it applies, keyed by the
// order id, so the latest row answers "where is this saga" and the trace id
// links the row to the distributed trace that produced it.
package sagalog

import "time"

// Status is the saga lifecycle state recorded by a row.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// Step names written by the order service.
const (
	StepOrderCreated     = "order_created"
	StepPaymentCompleted = "payment_completed"
	StepPaymentCancelled = "payment_cancelled"
	StepOrderApproved    = "order_approved"
	StepOrderRejected    = "order_rejected"
)

// SagaLog is a single row in the saga_logs table.
type SagaLog struct {
	// SagaID is the order id.
	SagaID string

	Status      Status
	CurrentStep string

	// OrderStatus is the order status after the step was applied.
	OrderStatus string

	// ErrorMessages holds the failure messages known at this step as a JSON
	// array.
	ErrorMessages string

	// TraceID and SpanID identify the span active when the row was written.
	// Both are empty when no span was recording.
	TraceID string
	SpanID  string

	UpdatedAt time.Time
}
