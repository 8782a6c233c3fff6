package handler

import (
	"log/slog"
	"net/http"

	"konsole/internal/domain/models"
	"konsole/internal/httputil"
	"konsole/internal/service"
)

// ConfigHandler handles configuration HTTP requests
type ConfigHandler struct {
	configs *service.ConfigService
	logger  *slog.Logger
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(configs *service.ConfigService, logger *slog.Logger) *ConfigHandler {
	return &ConfigHandler{configs: configs, logger: logger}
}

// ListConfigs returns all configuration groups with their versions.
// GET /api/configs?refresh=1
func (h *ConfigHandler) ListConfigs(w http.ResponseWriter, r *http.Request) {
	refresh := r.URL.Query().Get("refresh") == "1"

	groups, err := h.configs.ListGroups(r.Context(), refresh)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"groups":      groups,
		"cache_state": h.configs.CacheState(),
	})
}

// InvalidateCache drops the config cache so the next read refetches.
// POST /api/configs/invalidate
func (h *ConfigHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.configs.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// CreateConfig creates a new configuration group.
// POST /api/configs
func (h *ConfigHandler) CreateConfig(w http.ResponseWriter, r *http.Request) {
	var req models.CreateConfigRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	group, err := h.configs.CreateConfig(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, group)
}

// CreateVersion saves a new version of an existing configuration.
// POST /api/configs/{id}/versions
func (h *ConfigHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	configID := r.PathValue("id")

	var req models.CreateVersionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	version, err := h.configs.CreateVersion(r.Context(), configID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, version)
}
