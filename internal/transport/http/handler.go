package httptransport

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"validation-proxy-service/internal/repository/memory"
	"validation-proxy-service/internal/service"
	"validation-proxy-service/internal/telemetry"
	"validation-proxy-service/internal/worker"
)

type Handler struct {
	jobSvc *service.JobService
	log    logrus.FieldLogger
}

func NewHandler(jobSvc *service.JobService, log logrus.FieldLogger) *Handler {
	return &Handler{jobSvc: jobSvc, log: log}
}

type startValidationDTO struct {
	Email string `json:"email"`
	URL   string `json:"url"`
}

type startValidationResp struct {
	JobID string `json:"jobId"`
}

type sortDTO struct {
	Data json.RawMessage `json:"data"`
}

type sortResp struct {
	Word []string `json:"word"`
}

// StartValidation godoc
// @Summary Start an asynchronous validation
// @Description Registers a running job and validates the url in the background. Poll /validate/result/{jobId} for the outcome.
// @Tags validation
// @Accept json
// @Produce json
// @Param request body startValidationDTO true "email and http(s) url"
// @Success 202 {object} startValidationResp
// @Failure 400 {object} apiError
// @Failure 429 {object} apiError
// @Failure 503 {object} apiError
// @Router /validate/start [post]
func (h *Handler) StartValidation(w http.ResponseWriter, r *http.Request) {
	var dto startValidationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	id, err := h.jobSvc.StartValidation(r.Context(), service.StartValidationRequest{
		Email:  dto.Email,
		URL:    dto.URL,
		Caller: callerKey(r),
	})
	if err != nil {
		h.writeStartError(w, err)
		return
	}

	telemetry.JobsSubmitted.Inc()
	respond(w, http.StatusAccepted, startValidationResp{JobID: id})
}

func (h *Handler) writeStartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingField):
		telemetry.JobsRejected.WithLabelValues("missing_field").Inc()
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidScheme):
		telemetry.JobsRejected.WithLabelValues("invalid_scheme").Inc()
		respondError(w, http.StatusBadRequest, service.ErrInvalidScheme.Error())
	case errors.Is(err, service.ErrRateLimited):
		telemetry.JobsRejected.WithLabelValues("rate_limited").Inc()
		respondError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, worker.ErrQueueFull), errors.Is(err, worker.ErrStopped):
		telemetry.JobsRejected.WithLabelValues("unavailable").Inc()
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.log.WithError(err).Error("start validation")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// GetValidationResult godoc
// @Summary Get validation job state
// @Description Returns the job as stored: running, or the terminal done/error payload.
// @Tags validation
// @Produce json
// @Param jobId path string true "job id"
// @Success 200 {object} entity.Job
// @Failure 404 {object} apiError
// @Router /validate/result/{jobId} [get]
func (h *Handler) GetValidationResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobId")

	j, err := h.jobSvc.GetResult(r.Context(), id)
	if err != nil {
		if errors.Is(err, memory.ErrNotFound) {
			respondError(w, http.StatusNotFound, "job not found")
			return
		}
		h.log.WithError(err).WithField("job_id", id).Error("get validation result")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respond(w, http.StatusOK, j)
}

// Sort godoc
// @Summary Sort the characters of a string
// @Tags utility
// @Accept json
// @Produce json
// @Param request body sortDTO true "data: string to sort"
// @Success 200 {object} sortResp
// @Failure 400 {object} apiError
// @Router /sort [post]
func (h *Handler) Sort(w http.ResponseWriter, r *http.Request) {
	var dto sortDTO
	// malformed or missing body is treated like a missing field
	_ = json.NewDecoder(r.Body).Decode(&dto)

	var data string
	if len(dto.Data) == 0 || string(dto.Data) == "null" || json.Unmarshal(dto.Data, &data) != nil {
		respondError(w, http.StatusBadRequest, `"data" must be a string`)
		return
	}

	respond(w, http.StatusOK, sortResp{Word: service.SortChars(data)})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(homePage))
}

// callerKey identifies the submitter for admission control. RealIP has
// already rewritten RemoteAddr when proxy headers are present.
func callerKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

const homePage = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>validation proxy</title></head>
<body>
<h1>validation proxy</h1>
<ul>
<li><code>POST /sort</code> &mdash; <code>{"data": "..."}</code> returns the characters sorted</li>
<li><code>POST /validate/start</code> &mdash; <code>{"email": "...", "url": "https://..."}</code> returns a job id</li>
<li><code>GET /validate/result/{jobId}</code> &mdash; poll the job state</li>
<li><code>GET /health</code></li>
<li><a href="/swagger/index.html">API docs</a></li>
</ul>
</body>
</html>
`
