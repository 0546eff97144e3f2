// Package handler exposes the public verification lookup over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"bitid/internal/identity/models"
	"bitid/internal/platform/middleware"
	dErrors "bitid/pkg/domain-errors"
	"bitid/pkg/platform/httputil"
)

// Service defines the lookup operation the handler drives.
type Service interface {
	Lookup(ctx context.Context, identifier string) (*models.PublicProfile, error)
}

type Handler struct {
	logger   *slog.Logger
	verifier Service
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		verifier: svc,
	}
}

// Register registers the verification route with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/verify/{identifier}", h.handleLookup)
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identifier := chi.URLParam(r, "identifier")
	if unescaped, err := url.PathUnescape(identifier); err == nil {
		identifier = unescaped
	}

	profile, err := h.verifier.Lookup(ctx, identifier)
	if err != nil {
		h.logger.WarnContext(ctx, "verification lookup failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	if profile == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no identity found for this identifier"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}
