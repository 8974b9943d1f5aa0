package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jcmexdev/food-ordering-sagas/internal/coordinator"
	paymentmessaging "github.com/jcmexdev/food-ordering-sagas/internal/payment-service/adapters/messaging"
	"github.com/jcmexdev/food-ordering-sagas/internal/payment-service/adapters/persistence"
	"github.com/jcmexdev/food-ordering-sagas/internal/payment-service/app"
	"github.com/jcmexdev/food-ordering-sagas/internal/payment-service/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/bootstrap"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/config"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/inbox"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/outbox"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load(config.Defaults{
		ServiceName: "payment-service",
		GRPCPort:    "9091",
		DBDSN:       "payment.db",
	})
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("payment service stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	shutdownTracer, err := bootstrap.Tracing(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownTracer()

	db, err := bootstrap.OpenDatabase(ctx, cfg, persistence.Schema, outbox.Schema)
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
	outboxStore := outbox.NewStore(db, clock)
	helper := app.NewPaymentRequestHelper(db,
		persistence.NewPaymentRepository(db),
		persistence.NewCreditEntryRepository(db),
		persistence.NewCreditHistoryRepository(db),
		domain.NewPaymentDomainService(clock),
		paymentmessaging.NewPublisher(outboxStore, cfg.Topics))
	requests := paymentmessaging.NewPaymentRequestListener(app.NewPaymentRequestListener(helper))

	router := coordinator.NewRouter(bus, inbox.New(bootstrap.Cache(cfg), cfg.InboxTTL))
	router.Handle(cfg.Topics.PaymentRequest, cfg.ServiceName, requests.Handle)
	router.Go("outbox-relay", outbox.NewRelay(outboxStore, bus, cfg.OutboxInterval).Run)
	router.Go("grpc-health", bootstrap.GRPCHealth(":"+cfg.GRPCPort))

	slog.InfoContext(ctx, "payment service running", "grpc_port", cfg.GRPCPort)
	return router.Run(ctx)
}
