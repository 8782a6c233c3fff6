package handler

import (
	"log/slog"
	"net/http"

	"konsole/internal/httputil"
	"konsole/internal/service"
)

// DiffHandler handles transcript comparison requests
type DiffHandler struct {
	transcripts *service.TranscriptService
	logger      *slog.Logger
}

// NewDiffHandler creates a new diff handler
func NewDiffHandler(transcripts *service.TranscriptService, logger *slog.Logger) *DiffHandler {
	return &DiffHandler{transcripts: transcripts, logger: logger}
}

// CompareTranscripts aligns a reference transcript against a hypothesis and
// returns the classified segments plus the error summary.
// POST /api/diff
func (h *DiffHandler) CompareTranscripts(w http.ResponseWriter, r *http.Request) {
	var req service.DiffRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.transcripts.Compare(&req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
