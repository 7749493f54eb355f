package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jchenga/signalbot/internal/domain"
)

// PriceHandler serves cached top-of-book prices.
type PriceHandler struct {
	prices domain.PriceCache
	logger *slog.Logger
}

// NewPriceHandler creates a PriceHandler. prices may be nil when no cache is
// configured; every request then reports 503.
func NewPriceHandler(prices domain.PriceCache, logger *slog.Logger) *PriceHandler {
	return &PriceHandler{prices: prices, logger: logger}
}

// GetPrice returns the latest cached top of book for a symbol.
// GET /api/prices/{symbol}
func (h *PriceHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	if h.prices == nil {
		writeError(w, http.StatusServiceUnavailable, "price cache not configured")
		return
	}

	symbol := pathParam(r, "symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol")
		return
	}

	tob, err := h.prices.GetPrice(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no price for symbol "+symbol)
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: price lookup failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to fetch price")
		return
	}

	writeJSON(w, http.StatusOK, tob)
}
