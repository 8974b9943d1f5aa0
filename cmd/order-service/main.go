package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jcmexdev/food-ordering-sagas/internal/coordinator"
	"github.com/jcmexdev/food-ordering-sagas/internal/coordinator/sagalog"
	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/adapters/httpx"
	ordermessaging "github.com/jcmexdev/food-ordering-sagas/internal/order-service/adapters/messaging"
	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/adapters/persistence"
	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/app"
	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/bootstrap"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/config"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/inbox"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/outbox"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load(config.Defaults{
		ServiceName: "order-service",
		HTTPPort:    "8181",
		GRPCPort:    "9090",
		DBDSN:       "order.db",
	})
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("order service stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	shutdownTracer, err := bootstrap.Tracing(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownTracer()

	db, err := bootstrap.OpenDatabase(ctx, cfg, persistence.Schema, outbox.Schema, sagalog.Schema)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.SeedData {
		if err := persistence.SeedDemoData(ctx, db); err != nil {
			return err
		}
	}

	bus := bootstrap.Bus(cfg)
	defer bus.Close()

	clock := shared.SystemClock{}
	idempotency := bootstrap.Cache(cfg)
	outboxStore := outbox.NewStore(db, clock)
	publisher := ordermessaging.NewPublisher(outboxStore, cfg.Topics)
	orders := persistence.NewOrderRepository(db)
	sagaLog := sagalog.NewSQLRepository(db)
	domainService := domain.NewOrderDomainService(clock)

	orderService := app.NewOrderApplicationService(db, orders,
		persistence.NewCustomerRepository(db), persistence.NewRestaurantRepository(db),
		domainService, publisher, sagaLog, clock).
		WithIdempotency(idempotency, cfg.InboxTTL)
	paymentResponses := ordermessaging.NewPaymentResponseListener(
		app.NewPaymentResponseHandler(db, orders, domainService, publisher, sagaLog, clock))
	approvalResponses := ordermessaging.NewApprovalResponseListener(
		app.NewApprovalResponseHandler(db, orders, domainService, publisher, sagaLog, clock))

	router := coordinator.NewRouter(bus, inbox.New(idempotency, cfg.InboxTTL))
	router.Handle(cfg.Topics.PaymentResponse, cfg.ServiceName, paymentResponses.Handle)
	router.Handle(cfg.Topics.RestaurantApprovalResponse, cfg.ServiceName, approvalResponses.Handle)
	router.Go("outbox-relay", outbox.NewRelay(outboxStore, bus, cfg.OutboxInterval).Run)
	router.Go("http", bootstrap.HTTP(":"+cfg.HTTPPort, httpx.NewRouter(httpx.NewHandler(orderService, sagaLog))))
	router.Go("grpc-health", bootstrap.GRPCHealth(":"+cfg.GRPCPort))

	slog.InfoContext(ctx, "order service running", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)
	return router.Run(ctx)
}
