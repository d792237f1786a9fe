package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hydration/internal/platform/metrics"
	"hydration/internal/profile/models"
	id "hydration/pkg/domain"
	dErrors "hydration/pkg/domain-errors"
	"hydration/pkg/platform/httputil"
	"hydration/pkg/requestcontext"
	"hydration/pkg/temporal"
)

// Service defines the profile operations used by the handler.
type Service interface {
	Get(ctx context.Context, userID id.UserID) (*models.Profile, error)
	Update(ctx context.Context, userID id.UserID, req models.UpdateRequest) (*models.Profile, error)
	Delete(ctx context.Context, userID id.UserID) error
}

// Handler serves the caller's profile.
type Handler struct {
	service  Service
	renderer httputil.Renderer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func New(service Service, renderer httputil.Renderer, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{service: service, renderer: renderer, metrics: m, logger: logger}
}

// Register mounts the profile routes. Callers apply authentication.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/me", h.handleGet)
	r.Put("/v1/me", h.handleUpdate)
	r.Delete("/v1/me", h.handleDelete)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := h.service.Get(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(ctx, w, err, "failed to get profile")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(p))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.UpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err, "invalid profile update request")
		return
	}
	p, err := h.service.Update(ctx, requestcontext.UserID(ctx), req)
	if err != nil {
		h.writeError(ctx, w, err, "failed to update profile")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(p))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.Delete(ctx, requestcontext.UserID(ctx)); err != nil {
		h.writeError(ctx, w, err, "failed to delete profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
