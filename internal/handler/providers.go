package handler

import (
	"net/http"

	"konsole/internal/httputil"
	"konsole/internal/registry"
)

// ProvidersHandler serves the static provider/model catalog
type ProvidersHandler struct {
	registry *registry.Registry
}

// NewProvidersHandler creates a new providers handler
func NewProvidersHandler(reg *registry.Registry) *ProvidersHandler {
	return &ProvidersHandler{registry: reg}
}

// ListProviders returns all providers and their models.
// GET /api/providers
func (h *ProvidersHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"providers": h.registry.Providers(),
	})
}
