package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/food-ordering-sagas/internal/coordinator/sagalog"
	"github.com/jcmexdev/food-ordering-sagas/internal/order-service/app"
	shared "github.com/jcmexdev/food-ordering-sagas/internal/pkg/domain"
)

// Handler serves the order API.
type Handler struct {
	orders  *app.OrderApplicationService
	sagaLog sagalog.Repository // nil-safe: saga endpoint answers 404 if nil
}

func NewHandler(orders *app.OrderApplicationService, sagaLog sagalog.Repository) *Handler {
	return &Handler{orders: orders, sagaLog: sagaLog}
}

// CreateOrder validates the request and starts the saga. Payment and
// approval happen asynchronously; the client polls TrackOrder.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cmd, err := toCreateOrderCommand(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.InfoContext(r.Context(), "creating order",
		"customer_id", req.CustomerID, "restaurant_id", req.RestaurantID)

	resp, err := h.orders.CreateOrder(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateOrderResponse{
		OrderTrackingID: resp.OrderTrackingID.String(),
		OrderStatus:     string(resp.OrderStatus),
		Message:         resp.Message,
	})
}

// TrackOrder returns the status of an order by tracking id.
func (h *Handler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	trackingID, err := shared.ParseID[shared.TrackingID](chi.URLParam(r, "trackingId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.orders.TrackOrder(r.Context(), app.TrackOrderQuery{OrderTrackingID: trackingID})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	msgs := resp.FailureMessages
	if msgs == nil {
		msgs = []string{}
	}
	writeJSON(w, http.StatusOK, TrackOrderResponse{
		OrderTrackingID: resp.OrderTrackingID.String(),
		OrderStatus:     string(resp.OrderStatus),
		FailureMessages: msgs,
	})
}

// SagaHistory lists the saga log rows of an order.
func (h *Handler) SagaHistory(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	if h.sagaLog == nil {
		writeError(w, http.StatusNotFound, "saga log is disabled")
		return
	}
	entries, err := h.sagaLog.History(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if len(entries) == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("saga %s not found", orderID))
		return
	}
	out := make([]SagaStepResponse, len(entries))
	for i, e := range entries {
		out[i] = SagaStepResponse{
			Status:          string(e.Status),
			Step:            e.CurrentStep,
			OrderStatus:     e.OrderStatus,
			FailureMessages: e.ErrorMessages,
			TraceID:         e.TraceID,
			UpdatedAt:       e.UpdatedAt.Format(time.RFC3339Nano),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func toCreateOrderCommand(req CreateOrderRequest) (app.CreateOrderCommand, error) {
	if req.Price == nil || req.Address == nil || len(req.Items) == 0 {
		return app.CreateOrderCommand{}, errors.New("price, items and address are required")
	}
	var (
		cmd = app.CreateOrderCommand{
			Price: *req.Price,
			Address: app.OrderAddress{
				Street:     req.Address.Street,
				PostalCode: req.Address.PostalCode,
				City:       req.Address.City,
			},
		}
		err error
	)
	if cmd.CustomerID, err = shared.ParseID[shared.CustomerID](req.CustomerID); err != nil {
		return app.CreateOrderCommand{}, fmt.Errorf("customerId: %w", err)
	}
	if cmd.RestaurantID, err = shared.ParseID[shared.RestaurantID](req.RestaurantID); err != nil {
		return app.CreateOrderCommand{}, fmt.Errorf("restaurantId: %w", err)
	}
	if cmd.Address.Street == "" || cmd.Address.PostalCode == "" || cmd.Address.City == "" {
		return app.CreateOrderCommand{}, errors.New("address street, postalCode and city are required")
	}
	for i, it := range req.Items {
		if it.Price == nil || it.SubTotal == nil || it.Quantity <= 0 {
			return app.CreateOrderCommand{}, fmt.Errorf("items[%d]: quantity, price and subTotal are required", i)
		}
		productID, err := shared.ParseID[shared.ProductID](it.ProductID)
		if err != nil {
			return app.CreateOrderCommand{}, fmt.Errorf("items[%d].productId: %w", i, err)
		}
		cmd.Items = append(cmd.Items, app.OrderItemCommand{
			ProductID: productID,
			Quantity:  it.Quantity,
			Price:     *it.Price,
			SubTotal:  *it.SubTotal,
		})
	}
	return cmd, nil
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrInvariant):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrConcurrentModification):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Unexpected error!")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{
		Code:    http.StatusText(status),
		Message: msg,
	})
}
