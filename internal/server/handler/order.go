package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jchenga/signalbot/internal/domain"
)

// OrderService defines the exchange order operations the handler needs.
type OrderService interface {
	LimitOrder(ctx context.Context, symbol string, side domain.Side, quantity, price float64, timeInForce string) (domain.OrderAck, error)
	CancelOrder(ctx context.Context, symbol string, orderID int64) error
	OrderStatus(ctx context.Context, symbol string, orderID int64) (domain.OrderAck, error)
	OpenOrders(ctx context.Context, symbol string) ([]domain.OrderAck, error)
	OrderHistory(ctx context.Context, symbol string, limit int) ([]domain.OrderAck, error)
}

// OrderHandler serves manual order management endpoints against the exchange.
type OrderHandler struct {
	orders OrderService
	logger *slog.Logger
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(orders OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// placeOrderRequest is the JSON body for placing a limit order.
type placeOrderRequest struct {
	Symbol      string  `json:"symbol"`
	Side        string  `json:"side"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	TimeInForce string  `json:"time_in_force"`
}

// PlaceOrder places a limit order on the exchange.
// POST /api/orders
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	side, err := domain.ParseSide(req.Side)
	if err != nil {
		writeError(w, http.StatusBadRequest, "side must be buy or sell")
		return
	}
	if req.Symbol == "" || req.Quantity <= 0 || req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "symbol, quantity and price are required")
		return
	}

	ack, err := h.orders.LimitOrder(r.Context(), req.Symbol, side, req.Quantity, req.Price, req.TimeInForce)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidOrder) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: place order failed",
			slog.String("symbol", req.Symbol),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to place order")
		return
	}

	writeJSON(w, http.StatusCreated, ack)
}

// CancelOrder cancels an order by exchange order id.
// DELETE /api/orders/{symbol}/{id}
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	symbol := pathParam(r, "symbol")
	orderID, err := strconv.ParseInt(pathParam(r, "id"), 10, 64)
	if symbol == "" || err != nil {
		writeError(w, http.StatusBadRequest, "symbol and numeric order id are required")
		return
	}

	if err := h.orders.CancelOrder(r.Context(), symbol, orderID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: cancel order failed",
			slog.Int64("order_id", orderID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to cancel order")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "cancelled",
		"order_id": strconv.FormatInt(orderID, 10),
	})
}

// GetOrder fetches the current state of one order.
// GET /api/orders/{symbol}/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	symbol := pathParam(r, "symbol")
	orderID, err := strconv.ParseInt(pathParam(r, "id"), 10, 64)
	if symbol == "" || err != nil {
		writeError(w, http.StatusBadRequest, "symbol and numeric order id are required")
		return
	}

	ack, err := h.orders.OrderStatus(r.Context(), symbol, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: order status failed",
			slog.Int64("order_id", orderID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to fetch order")
		return
	}

	writeJSON(w, http.StatusOK, ack)
}

// listOrdersResponse wraps the open orders list.
type listOrdersResponse struct {
	Orders []domain.OrderAck `json:"orders"`
}

// OpenOrders lists open orders, optionally filtered by symbol.
// GET /api/orders/open?symbol=ETHUSDT
func (h *OrderHandler) OpenOrders(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")

	orders, err := h.orders.OpenOrders(r.Context(), symbol)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list open orders failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list open orders")
		return
	}
	if orders == nil {
		orders = []domain.OrderAck{}
	}

	writeJSON(w, http.StatusOK, listOrdersResponse{Orders: orders})
}

// OrderHistory lists past orders for a symbol, most recent last.
// GET /api/orders/history?symbol=ETHUSDT&limit=50
func (h *OrderHandler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = v
	}

	orders, err := h.orders.OrderHistory(r.Context(), symbol, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: order history failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list order history")
		return
	}
	if orders == nil {
		orders = []domain.OrderAck{}
	}

	writeJSON(w, http.StatusOK, listOrdersResponse{Orders: orders})
}
