package handler

import (
	"net/http"

	"konsole/internal/httputil"
	"konsole/internal/service"
)

// HealthHandler reports service liveness and cache state
type HealthHandler struct {
	configs *service.ConfigService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(configs *service.ConfigService) *HealthHandler {
	return &HealthHandler{configs: configs}
}

// HealthCheck returns 200 with the current cache state.
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"cache_state": h.configs.CacheState(),
	})
}
