package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/adapters/httpx/middlewares"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/telemetry"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachTracingMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(traceRequests)

	r.Post("/orders", handler.CreateOrder)
	r.Get("/orders/{trackingId}", handler.TrackOrder)
	r.Get("/sagas/{orderId}", handler.SagaHistory)
	return r
}

// traceRequests continues an incoming W3C trace and opens a server span per
// request.
func traceRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := propagation.TraceContext{}.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := telemetry.Tracer().Start(ctx, r.Method+" "+r.URL.Path)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
