package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hydration/internal/intake/models"
	"hydration/internal/platform/metrics"
	id "hydration/pkg/domain"
	dErrors "hydration/pkg/domain-errors"
	"hydration/pkg/platform/httputil"
	"hydration/pkg/requestcontext"
	"hydration/pkg/temporal"
)

// Service defines the intake operations used by the handler.
type Service interface {
	Log(ctx context.Context, userID id.UserID, req models.LogRequest) (*models.Intake, error)
	Search(ctx context.Context, userID id.UserID, req *models.SearchRequest) (*models.Page, error)
	Delete(ctx context.Context, userID id.UserID, intakeID id.IntakeID) error
	Today(ctx context.Context, userID id.UserID) (*models.DailySummary, error)
}

// Handler serves the caller's intake log.
type Handler struct {
	service  Service
	renderer httputil.Renderer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func New(service Service, renderer httputil.Renderer, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{service: service, renderer: renderer, metrics: m, logger: logger}
}

// Register mounts the intake routes. Callers apply authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/me/intakes", h.handleLog)
	r.Get("/v1/me/intakes", h.handleSearch)
	r.Get("/v1/me/intakes/today", h.handleToday)
	r.Delete("/v1/me/intakes/{id}", h.handleDelete)
}

func (h *Handler) handleLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.LogRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err, "invalid intake request")
		return
	}
	intake, err := h.service.Log(ctx, requestcontext.UserID(ctx), req)
	if err != nil {
		h.writeError(ctx, w, err, "failed to log intake")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.ToResponse(intake))
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	req := &models.SearchRequest{
		From:          optional(q.Has("from"), q.Get("from")),
		To:            optional(q.Has("to"), q.Get("to")),
		MinVolume:     q.Get("minVolume"),
		MaxVolume:     q.Get("maxVolume"),
		SortField:     q.Get("sortField"),
		SortDirection: q.Get("sortDirection"),
		Page:          q.Get("page"),
		Size:          q.Get("size"),
	}
	page, err := h.service.Search(ctx, requestcontext.UserID(ctx), req)
	if err != nil {
		h.writeError(ctx, w, err, "failed to search intakes")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToPageResponse(page))
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	summary, err := h.service.Today(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(ctx, w, err, "failed to summarize intakes")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	intakeID, err := id.ParseIntakeID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(ctx, w, err, "invalid intake id")
		return
	}
	if err := h.service.Delete(ctx, requestcontext.UserID(ctx), intakeID); err != nil {
		h.writeError(ctx, w, err, "failed to delete intake")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// optional treats a present-but-empty parameter as absent.
func optional(present bool, v string) *string {
	if !present || v == "" {
		return nil
	}
	return &v
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	requestID := requestcontext.RequestID(ctx)
	var verr *temporal.ValidationError
	switch {
	case errors.As(err, &verr):
		for _, v := range verr.Violations {
			h.metrics.RecordViolation(v.Key)
		}
		h.logger.InfoContext(ctx, msg, "request_id", requestID, "violations", len(verr.Violations))
	case dErrors.CodeOf(err) == dErrors.CodeInternal:
		h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err)
	default:
		h.logger.WarnContext(ctx, msg, "request_id", requestID, "error", err)
	}
	httputil.WriteErrorWith(w, h.renderer, err)
}
