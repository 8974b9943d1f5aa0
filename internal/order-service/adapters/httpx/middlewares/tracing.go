package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/interceptors"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/interceptors/constants"
)

// AttachTracingMetadata stores the request id and the idempotency key in the
// context. The request id reaches logs and outgoing saga messages; the
// idempotency key deduplicates order creation.
func AttachTracingMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(constants.HeaderXRequestId)
		if requestID == "" {
			requestID = middleware.GetReqID(r.Context())
		}
		ctx := interceptors.WithRequestID(r.Context(), requestID)
		ctx = interceptors.WithIdempotencyKey(ctx, r.Header.Get(constants.HeaderXIdempotencyKey))
		w.Header().Set(constants.HeaderXRequestId, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
