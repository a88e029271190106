package api

import (
	"net/http"

	"github.com/gametwin/gaming-twin/server/internal/api/respond"
)

// HealthHandler reports service liveness and store connectivity. The health
// verdict comes from the background checkers wired in at startup.
type HealthHandler struct {
	storeHealthy func() bool
}

func NewHealthHandler(storeHealthy func() bool) *HealthHandler {
	return &HealthHandler{storeHealthy: storeHealthy}
}

// CheckHealth handles GET /health.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	if h.storeHealthy == nil || !h.storeHealthy() {
		respond.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "connected",
	})
}
