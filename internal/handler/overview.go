package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/secondbrain/secondbrain/internal/handler/dto"
	"github.com/secondbrain/secondbrain/internal/service"
)

// OverviewHandler serves the dashboard summary.
type OverviewHandler struct {
	svc    *service.OverviewService
	logger *slog.Logger
}

// NewOverviewHandler creates a new OverviewHandler.
func NewOverviewHandler(svc *service.OverviewService, logger *slog.Logger) *OverviewHandler {
	return &OverviewHandler{svc: svc, logger: logger}
}

// Overview handles GET /overview and GET /main.
func (h *OverviewHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.Overview(r.Context(), identity(r))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToOverviewResponse(overview, time.Now().UTC()))
}
