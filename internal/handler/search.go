package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/secondbrain/secondbrain/internal/handler/dto"
	"github.com/secondbrain/secondbrain/internal/service"
)

// SearchHandler serves cross-entity search.
type SearchHandler struct {
	svc    *service.SearchService
	logger *slog.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(svc *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{svc: svc, logger: logger}
}

// Search handles GET /search?q=. When q is repeated the first value wins.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.svc.Search(r.Context(), identity(r), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSearchResponse(results, time.Now().UTC()))
}
