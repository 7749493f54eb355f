package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jchenga/signalbot/internal/domain"
)

// BalanceHandler serves exchange balance lookups.
type BalanceHandler struct {
	balances domain.BalanceSource
	logger   *slog.Logger
}

// NewBalanceHandler creates a BalanceHandler.
func NewBalanceHandler(balances domain.BalanceSource, logger *slog.Logger) *BalanceHandler {
	return &BalanceHandler{balances: balances, logger: logger}
}

// balanceResponse is the JSON shape of a single-asset balance.
type balanceResponse struct {
	Asset string  `json:"asset"`
	Free  float64 `json:"free"`
}

// GetBalance returns the free balance for one asset. An unknown asset
// reports zero, mirroring the exchange semantics.
// GET /api/balance/{asset}
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	asset := pathParam(r, "asset")
	if asset == "" {
		writeError(w, http.StatusBadRequest, "missing asset")
		return
	}

	free, err := h.balances.Balance(r.Context(), asset)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: balance lookup failed",
			slog.String("asset", asset),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to fetch balance")
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{
		Asset: strings.ToUpper(asset),
		Free:  free,
	})
}
