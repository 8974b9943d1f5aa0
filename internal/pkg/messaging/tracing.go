package messaging

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/interceptors"
)

const tracerName = "github.com/jcmexdev/food-ordering-sagas/internal/pkg/messaging"

// Traced continues the producer's trace and request id and runs h inside a
// consumer span.
func Traced(h Handler) Handler {
	return func(ctx context.Context, msg Message) error {
		ctx = ExtractTrace(ctx, msg)
		ctx = interceptors.ExtractHeaders(ctx, msg.Headers)

		ctx, span := otel.Tracer(tracerName).Start(ctx, "consume "+msg.Topic,
			trace.WithSpanKind(trace.SpanKindConsumer),
			trace.WithAttributes(
				attribute.String("messaging.destination.name", msg.Topic),
				attribute.String("messaging.message.id", msg.ID),
				attribute.String("messaging.message.key", msg.Key),
			),
		)
		defer span.End()

		if err := h(ctx, msg); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		return nil
	}
}
