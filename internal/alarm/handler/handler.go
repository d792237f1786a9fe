package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hydration/internal/alarm/models"
	"hydration/internal/alarm/service"
	"hydration/internal/platform/metrics"
	id "hydration/pkg/domain"
	dErrors "hydration/pkg/domain-errors"
	"hydration/pkg/platform/httputil"
	"hydration/pkg/requestcontext"
	"hydration/pkg/temporal"
)

// Service defines the alarm operations used by the handler.
type Service interface {
	Get(ctx context.Context, userID id.UserID) (*models.Alarm, error)
	Update(ctx context.Context, userID id.UserID, req *models.UpdateRequest) (*models.Alarm, error)
}

// Handler serves the caller's alarm schedule.
type Handler struct {
	service  Service
	renderer httputil.Renderer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func New(service Service, renderer httputil.Renderer, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{service: service, renderer: renderer, metrics: m, logger: logger}
}

// Register mounts the alarm routes. Callers apply authentication.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/me/alarm", h.handleGet)
	r.Put("/v1/me/alarm", h.handleUpdate)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	alarm, err := h.service.Get(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(ctx, w, err, "failed to get alarm")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, service.ToResponse(alarm))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.UpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err, "invalid alarm request")
		return
	}
	alarm, err := h.service.Update(ctx, requestcontext.UserID(ctx), &req)
	if err != nil {
		h.writeError(ctx, w, err, "failed to update alarm")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, service.ToResponse(alarm))
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
