package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/olegbp/cryptofolio/internal/adapter/http/dto"
)

// MaintenanceService defines the behavior needed by AdminHandler.
type MaintenanceService interface {
	ClearAllData(ctx context.Context) error
}

// EvictionService drives cache eviction on demand.
type EvictionService interface {
	EvictStale(ctx context.Context, maxAge time.Duration) (int64, error)
}

// AdminHandler handles operational endpoints.
type AdminHandler struct {
	maintenanceUC MaintenanceService
	evictionUC    EvictionService
	cacheMaxAge   time.Duration
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(maintenanceUC MaintenanceService, evictionUC EvictionService, cacheMaxAge time.Duration) *AdminHandler {
	return &AdminHandler{
		maintenanceUC: maintenanceUC,
		evictionUC:    evictionUC,
		cacheMaxAge:   cacheMaxAge,
	}
}

// EvictCache removes cached quotes older than the configured max age.
func (h *AdminHandler) EvictCache(w http.ResponseWriter, r *http.Request) {
	evicted, err := h.evictionUC.EvictStale(r.Context(), h.cacheMaxAge)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to evict cache", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DeletedResponse{Deleted: evicted})
}

// ClearData wipes every application table. The schema stays intact.
func (h *AdminHandler) ClearData(w http.ResponseWriter, r *http.Request) {
	if err := h.maintenanceUC.ClearAllData(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear data", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
