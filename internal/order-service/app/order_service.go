// Package app is the order service's saga participant: it creates and tracks
// orders and applies payment and restaurant responses to them.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/food-ordering-sagas/internal/coordinator/sagalog"
	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/cache"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/interceptors"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/telemetry"
)

const (
	orderCreatedMessage = "Order created successfully"

	createOrderOperation = "create-order"
	// createInFlight marks an idempotency key whose order is still being created.
	createInFlight = "in-flight"
)

type OrderApplicationService struct {
	tx               TxManager
	orders           OrderRepository
	customers        CustomerRepository
	restaurants      RestaurantRepository
	domainService    *domain.OrderDomainService
	createdPublisher OrderCreatedPaymentRequestPublisher
	journal          *journal
	idempotency      cache.Cache
	idempotencyTTL   time.Duration
}

// NewOrderApplicationService wires the create and track use cases. sagaLog
// may be nil, in which case transitions are not journaled.
func NewOrderApplicationService(
	tx TxManager,
	orders OrderRepository,
	customers CustomerRepository,
	restaurants RestaurantRepository,
	domainService *domain.OrderDomainService,
	createdPublisher OrderCreatedPaymentRequestPublisher,
	sagaLog sagalog.Repository,
	clock shared.Clock,
) *OrderApplicationService {
	return &OrderApplicationService{
		tx:               tx,
		orders:           orders,
		customers:        customers,
		restaurants:      restaurants,
		domainService:    domainService,
		createdPublisher: createdPublisher,
		journal:          newJournal(sagaLog, clock),
	}
}

// WithIdempotency makes CreateOrder remember, for ttl, the tracking id created
// under each client idempotency key. A retried request with the same key
// returns the first order instead of creating another.
func (s *OrderApplicationService) WithIdempotency(c cache.Cache, ttl time.Duration) *OrderApplicationService {
	s.idempotency = c
	s.idempotencyTTL = ttl
	return s
}

// CreateOrder validates and stores a new order and queues the payment
// request in the same transaction.
func (s *OrderApplicationService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (CreateOrderResponse, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "order.CreateOrder")
	defer span.End()

	key := interceptors.IdempotencyKeyFromContext(ctx)
	if s.idempotency == nil || key == "" {
		return s.createOrder(ctx, cmd)
	}
	cacheKey := s.idempotency.GenerateKey(createOrderOperation, key)
	claimed, err := s.idempotency.SetNX(ctx, cacheKey, createInFlight, s.idempotencyTTL)
	if err != nil {
		span.RecordError(err)
		return CreateOrderResponse{}, fmt.Errorf("order: claim idempotency key: %w", err)
	}
	if !claimed {
		return s.replayCreateOrder(ctx, cacheKey)
	}

	resp, err := s.createOrder(ctx, cmd)
	if err != nil {
		if delErr := s.idempotency.Delete(ctx, cacheKey); delErr != nil {
			slog.WarnContext(ctx, "could not release idempotency key", "key", cacheKey, "error", delErr)
		}
		return CreateOrderResponse{}, err
	}
	if err := s.idempotency.Set(ctx, cacheKey, resp.OrderTrackingID.String(), s.idempotencyTTL); err != nil {
		slog.WarnContext(ctx, "could not store idempotency key", "key", cacheKey, "error", err)
	}
	return resp, nil
}

// replayCreateOrder answers a repeated create request with the order stored
// under its idempotency key.
func (s *OrderApplicationService) replayCreateOrder(ctx context.Context, cacheKey string) (CreateOrderResponse, error) {
	stored, err := s.idempotency.Get(ctx, cacheKey)
	if err != nil {
		return CreateOrderResponse{}, fmt.Errorf("order: read idempotency key: %w", err)
	}
	if stored == "" || stored == createInFlight {
		return CreateOrderResponse{}, fmt.Errorf("order: request with the same idempotency key is in progress: %w", shared.ErrConcurrentModification)
	}
	trackingID, err := shared.ParseID[shared.TrackingID](stored)
	if err != nil {
		return CreateOrderResponse{}, fmt.Errorf("order: stored tracking id %q: %w", stored, err)
	}
	order, ok, err := s.orders.FindByTrackingID(ctx, trackingID)
	if err != nil {
		return CreateOrderResponse{}, fmt.Errorf("order: find by tracking id %s: %w", trackingID, err)
	}
	if !ok {
		return CreateOrderResponse{}, shared.NotFoundf("Could not find order with tracking id %s", trackingID)
	}
	slog.InfoContext(ctx, "repeated create order request", "order_id", order.ID.String(), "tracking_id", stored)
	return orderToCreateOrderResponse(&order, orderCreatedMessage), nil
}

func (s *OrderApplicationService) createOrder(ctx context.Context, cmd CreateOrderCommand) (CreateOrderResponse, error) {
	span := trace.SpanFromContext(ctx)

	var order *domain.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkCustomer(ctx, cmd.CustomerID); err != nil {
			return err
		}
		restaurant, err := s.checkRestaurant(ctx, cmd)
		if err != nil {
			return err
		}

		order = createOrderCommandToOrder(cmd)
		event, err := s.domainService.ValidateAndInitiateOrder(order, restaurant)
		if err != nil {
			return err
		}
		if err := s.orders.Save(ctx, order); err != nil {
			return fmt.Errorf("order: save %s: %w", order.ID, err)
		}
		if err := s.createdPublisher.PublishOrderCreated(ctx, event); err != nil {
			return fmt.Errorf("order: publish created %s: %w", order.ID, err)
		}
		return s.journal.record(ctx, order, sagalog.StatusStarted, sagalog.StepOrderCreated)
	})
	if err != nil {
		span.RecordError(err)
		return CreateOrderResponse{}, err
	}

	span.SetAttributes(attribute.String("order.id", order.ID.String()))
	slog.InfoContext(ctx, "order created", "order_id", order.ID.String(), "tracking_id", order.TrackingID.String())
	return orderToCreateOrderResponse(order, orderCreatedMessage), nil
}

// TrackOrder returns the status of the order with the given tracking id.
func (s *OrderApplicationService) TrackOrder(ctx context.Context, query TrackOrderQuery) (TrackOrderResponse, error) {
	order, ok, err := s.orders.FindByTrackingID(ctx, query.OrderTrackingID)
	if err != nil {
		return TrackOrderResponse{}, fmt.Errorf("order: find by tracking id %s: %w", query.OrderTrackingID, err)
	}
	if !ok {
		slog.WarnContext(ctx, "could not find order", "tracking_id", query.OrderTrackingID.String())
		return TrackOrderResponse{}, shared.NotFoundf("Could not find order with tracking id %s", query.OrderTrackingID)
	}
	return orderToTrackOrderResponse(order), nil
}

func (s *OrderApplicationService) checkCustomer(ctx context.Context, id shared.CustomerID) error {
	_, ok, err := s.customers.FindCustomer(ctx, id)
	if err != nil {
		return fmt.Errorf("order: find customer %s: %w", id, err)
	}
	if !ok {
		slog.WarnContext(ctx, "could not find customer", "customer_id", id.String())
		return shared.Errorf("Could not find customer with customer id %s", id)
	}
	return nil
}

func (s *OrderApplicationService) checkRestaurant(ctx context.Context, cmd CreateOrderCommand) (domain.Restaurant, error) {
	restaurant, ok, err := s.restaurants.FindRestaurantInformation(ctx, cmd.RestaurantID, commandProductIDs(cmd))
	if err != nil {
		return domain.Restaurant{}, fmt.Errorf("order: find restaurant %s: %w", cmd.RestaurantID, err)
	}
	if !ok {
		slog.WarnContext(ctx, "could not find restaurant", "restaurant_id", cmd.RestaurantID.String())
		return domain.Restaurant{}, shared.Errorf("Could not find restaurant with restaurant id %s", cmd.RestaurantID)
	}
	return restaurant, nil
}
