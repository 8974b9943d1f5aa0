package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jcmexdev/food-ordering-sagas/internal/coordinator"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/bootstrap"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/config"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/inbox"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/telemetry"
	restaurantservice "github.com/jcmexdev/food-ordering-sagas/internal/restaurant-service"
)

// Stock of the demo restaurant's products.
var demoStock = map[shared.ProductID]int{
	shared.MustID[shared.ProductID]("d215b5f8-0249-4dc5-89a3-51fd148cfb48"): 15,
	shared.MustID[shared.ProductID]("d215b5f8-0249-4dc5-89a3-51fd148cfb47"): 10,
}

func main() {
	cfg, err := config.Load(config.Defaults{
		ServiceName: "restaurant-service",
		GRPCPort:    "9092",
	})
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("restaurant service stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	shutdownTracer, err := bootstrap.Tracing(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownTracer()

	bus := bootstrap.Bus(cfg)
	defer bus.Close()

	approver := restaurantservice.NewApprover(bus, cfg.Topics, shared.SystemClock{}, demoStock)

	router := coordinator.NewRouter(bus, inbox.New(bootstrap.Cache(cfg), cfg.InboxTTL))
	router.Handle(cfg.Topics.RestaurantApprovalRequest, cfg.ServiceName, approver.Handle)
	router.Go("grpc-health", bootstrap.GRPCHealth(":"+cfg.GRPCPort))

	slog.InfoContext(ctx, "restaurant service running", "grpc_port", cfg.GRPCPort)
	return router.Run(ctx)
}
