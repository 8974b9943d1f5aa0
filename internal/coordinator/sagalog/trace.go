package sagalog

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	TraceID string
	SpanID  string
}

// ExtractTraceInfo returns the ids of the span in ctx as hex strings, or an
// empty TraceInfo when ctx carries no valid span.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds a row for sagaID with the trace ids of ctx.
//
//	entry := sagalog.NewEntry(ctx, order.ID.String(), sagalog.StatusStepDone,
//		sagalog.StepPaymentCompleted, string(order.Status), nil, now)
func NewEntry(
	ctx context.Context,
	sagaID string,
	status Status,
	step string,
	orderStatus string,
	errs []string,
	now time.Time,
) *SagaLog {
	ti := ExtractTraceInfo(ctx)

	errJSON := "[]"
	if len(errs) > 0 {
		if b, err := json.Marshal(errs); err == nil {
			errJSON = string(b)
		}
	}

	return &SagaLog{
		SagaID:        sagaID,
		Status:        status,
		CurrentStep:   step,
		OrderStatus:   orderStatus,
		ErrorMessages: errJSON,
		TraceID:       ti.TraceID,
		SpanID:        ti.SpanID,
		UpdatedAt:     now.UTC(),
	}
}
