package handler

import (
	"log/slog"
	"net/http"
	"time"

	"konsole/internal/config"
	"konsole/internal/domain/models"
	"konsole/internal/handler/sse"
	"konsole/internal/httputil"
	"konsole/internal/service"
)

// EvalHandler handles evaluation job and dataset HTTP requests
type EvalHandler struct {
	evals        *service.EvalService
	logger       *slog.Logger
	pollInterval time.Duration
}

// NewEvalHandler creates a new eval handler
func NewEvalHandler(evals *service.EvalService, logger *slog.Logger) *EvalHandler {
	return &EvalHandler{
		evals:        evals,
		logger:       logger,
		pollInterval: 2 * time.Second,
	}
}

// SubmitJob submits an evaluation job to the backend.
// POST /api/jobs
func (h *EvalHandler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitJobRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job, err := h.evals.SubmitJob(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, job)
}

// GetJob returns the current status of a job.
// GET /api/jobs/{id}
func (h *EvalHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.evals.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, job)
}

// ListResults returns the scored rows of a job.
// GET /api/jobs/{id}/results
func (h *EvalHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	rows, err := h.evals.ListResults(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"results": rows})
}

// ExportResults streams a job's results as a CSV download.
// GET /api/jobs/{id}/export
func (h *EvalHandler) ExportResults(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="results-`+jobID+`.csv"`)

	if err := h.evals.ExportCSV(r.Context(), jobID, w); err != nil {
		// Headers may already be sent; log and cut the stream
		h.logger.Error("csv export failed", "job_id", jobID, "error", err)
	}
}

// StreamJobEvents relays job status transitions over SSE until the job
// reaches a terminal state or the client disconnects.
// GET /api/jobs/{id}/events
func (h *EvalHandler) StreamJobEvents(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	job, err := h.evals.GetJob(r.Context(), jobID)
	if err != nil {
		handleError(w, err)
		return
	}

	stream, err := sse.NewStream(w)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := stream.WriteEvent("status", job); err != nil {
		return
	}
	if job.Status.Terminal() {
		stream.WriteEvent("done", job)
		return
	}

	poll := time.NewTicker(h.pollInterval)
	defer poll.Stop()
	keepAlive := time.NewTicker(10 * time.Second)
	defer keepAlive.Stop()

	lastStatus := job.Status
	for {
		select {
		case <-r.Context().Done():
			return

		case <-keepAlive.C:
			if err := stream.WriteKeepAlive(); err != nil {
				h.logger.Debug("sse client gone", "job_id", jobID)
				return
			}

		case <-poll.C:
			job, err := h.evals.GetJob(r.Context(), jobID)
			if err != nil {
				// Transient backend errors keep the stream open; the next
				// poll may succeed
				h.logger.Warn("job poll failed", "job_id", jobID, "error", err)
				continue
			}
			if job.Status != lastStatus {
				lastStatus = job.Status
				if err := stream.WriteEvent("status", job); err != nil {
					return
				}
			}
			if job.Status.Terminal() {
				stream.WriteEvent("done", job)
				return
			}
		}
	}
}

// UploadDataset forwards a multipart dataset upload to the backend.
// POST /api/datasets
func (h *EvalHandler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxDatasetUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	dataset, err := h.evals.UploadDataset(r.Context(), name, header.Filename, file)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, dataset)
}
