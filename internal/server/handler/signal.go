package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jchenga/signalbot/internal/domain"
)

// SignalProcessor runs one raw trade signal through the full pipeline.
type SignalProcessor interface {
	HandleEvent(ctx context.Context, raw string) domain.PipelineResult
}

// SignalHandler accepts trade signals over HTTP and forwards them to the
// pipeline.
type SignalHandler struct {
	pipeline SignalProcessor
	logger   *slog.Logger
}

// NewSignalHandler creates a SignalHandler.
func NewSignalHandler(pipeline SignalProcessor, logger *slog.Logger) *SignalHandler {
	return &SignalHandler{pipeline: pipeline, logger: logger}
}

// signalRequest is the JSON body for submitting a raw wire-format signal.
type signalRequest struct {
	Signal string `json:"signal"`
}

// Submit runs a wire-format signal string through the pipeline and returns
// the structured result. The HTTP status reflects the pipeline outcome:
// 200 for executed, 422 for rejected or failed.
// POST /api/signal
func (h *SignalHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req signalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Signal == "" {
		writeError(w, http.StatusBadRequest, "signal is required")
		return
	}

	result := h.pipeline.HandleEvent(r.Context(), req.Signal)

	status := http.StatusOK
	if result.Outcome != domain.OutcomeExecuted {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}
