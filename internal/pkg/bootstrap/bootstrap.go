// Package bootstrap builds the infrastructure shared by the service binaries
// from their configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/cache"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/config"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/interceptors"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/messaging"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/sqlstore"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/telemetry"
)

const shutdownTimeout = 5 * time.Second

// Tracing installs the tracer provider. The returned func flushes it.
func Tracing(ctx context.Context, cfg config.Config) (func(), error) {
	shutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName, "", cfg.TracingEnabled)
	if err != nil {
		return nil, err
	}
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}, nil
}

// OpenDatabase opens the configured database and applies schemas in order.
func OpenDatabase(ctx context.Context, cfg config.Config, schemas ...[]string) (*sqlstore.DB, error) {
	db, err := sqlstore.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	for _, schema := range schemas {
		if err := db.Migrate(ctx, schema...); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	slog.InfoContext(ctx, "database ready", "driver", cfg.DBDriver)
	return db, nil
}

// Bus returns the redis streams broker, or the in-process bus when BROKER is
// memory.
func Bus(cfg config.Config) messaging.Bus {
	if cfg.Broker == config.BrokerMemory {
		slog.Warn("using in-memory broker, messages do not leave this process")
		return messaging.NewMemoryBus()
	}
	return messaging.NewRedisStreamBus(cfg.RedisAddr, messaging.RedisStreamConfig{
		Group:    cfg.ConsumerGroup,
		Consumer: cfg.ConsumerName,
	})
}

// Cache backs the inbox. It follows the broker choice.
func Cache(cfg config.Config) cache.Cache {
	if cfg.Broker == config.BrokerMemory {
		return cache.NewMemoryCache(cfg.ServiceName)
	}
	return cache.NewRedisCache(cfg.RedisAddr, cfg.ServiceName)
}

// GRPCHealth returns a worker serving the gRPC health service on addr until
// ctx is done.
func GRPCHealth(addr string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("bootstrap: listen %s: %w", addr, err)
		}

		grpcServer := grpc.NewServer(
			grpc.StatsHandler(otelgrpc.NewServerHandler()),
			grpc.ChainUnaryInterceptor(
				interceptors.UnaryServerInterceptor(),
				interceptors.TraceServerInterceptor(),
			),
		)
		healthServer := health.NewServer()
		healthpb.RegisterHealthServer(grpcServer, healthServer)
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

		go func() {
			<-ctx.Done()
			healthServer.Shutdown()
			grpcServer.GracefulStop()
		}()

		slog.InfoContext(ctx, "gRPC health running", "addr", addr)
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("bootstrap: serve gRPC: %w", err)
		}
		return nil
	}
}

// HTTP returns a worker serving handler on addr until ctx is done.
func HTTP(addr string, handler http.Handler) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("http shutdown error", "error", err)
			}
		}()

		slog.InfoContext(ctx, "http server running", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("bootstrap: serve http: %w", err)
		}
		return nil
	}
}
