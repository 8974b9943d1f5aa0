// Package interceptors moves the request id between gRPC metadata, HTTP
// requests, saga message headers and the context.
package interceptors

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/interceptors/constants"
)

// WithRequestID returns ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, constants.ContextKeyRequestID, id)
}

// RequestIDFromContext returns the request id stored in ctx, falling back to
// incoming gRPC metadata.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok {
		return id
	}
	return GetMetadataValue(ctx, constants.HeaderXRequestId)
}

// WithIdempotencyKey returns ctx carrying the client's idempotency key.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, constants.ContextKeyIdempotencyKey, key)
}

// IdempotencyKeyFromContext returns the idempotency key stored in ctx,
// falling back to incoming gRPC metadata.
func IdempotencyKeyFromContext(ctx context.Context) string {
	if key, ok := ctx.Value(constants.ContextKeyIdempotencyKey).(string); ok {
		return key
	}
	return GetMetadataValue(ctx, constants.HeaderXIdempotencyKey)
}

// GetMetadataValue returns the first value of key in incoming or outgoing
// gRPC metadata.
func GetMetadataValue(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(key); len(ids) > 0 {
			return ids[0]
		}
	}
	if md, ok := metadata.FromOutgoingContext(ctx); ok {
		if ids := md.Get(key); len(ids) > 0 {
			return ids[0]
		}
	}
	return ""
}

// InjectHeaders copies the request id of ctx into message headers.
func InjectHeaders(ctx context.Context, headers map[string]string) {
	if id := RequestIDFromContext(ctx); id != "" {
		headers[constants.HeaderXRequestId] = id
	}
}

// ExtractHeaders returns ctx carrying the request id found in headers.
func ExtractHeaders(ctx context.Context, headers map[string]string) context.Context {
	return WithRequestID(ctx, headers[constants.HeaderXRequestId])
}

// UnaryServerInterceptor stores the request id and idempotency key of the
// incoming metadata in the context.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		newCtx := WithRequestID(ctx, GetMetadataValue(ctx, constants.HeaderXRequestId))
		newCtx = WithIdempotencyKey(newCtx, GetMetadataValue(ctx, constants.HeaderXIdempotencyKey))
		slog.DebugContext(newCtx, "grpc call", "method", info.FullMethod)
		return handler(newCtx, req)
	}
}
