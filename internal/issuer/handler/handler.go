// Package handler exposes credential issuance over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bitid/internal/identity/models"
	"bitid/internal/issuer"
	"bitid/internal/platform/middleware"
	dErrors "bitid/pkg/domain-errors"
	"bitid/pkg/platform/httputil"
)

// Service defines the issuance operations the handler drives.
type Service interface {
	Templates() []issuer.Template
	Issue(ctx context.Context, userID string, req issuer.IssueRequest) (*models.User, error)
}

type Handler struct {
	logger       *slog.Logger
	issuer       Service
	jwtValidator middleware.JWTValidator
}

func New(svc Service, jwtValidator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{
		logger:       logger,
		issuer:       svc,
		jwtValidator: jwtValidator,
	}
}

// Register registers the credential routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/credentials/templates", h.handleTemplates)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/credentials", h.handleIssue)
	})
}

func (h *Handler) handleTemplates(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.issuer.Templates())
}

// issueRequest mirrors the credential wire shape: the metadata is a flat
// bag whose decoding depends on the type.
type issueRequest struct {
	Type        models.CredentialType `json:"type"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Issuer      string                `json:"issuer"`
	Icon        string                `json:"icon"`
	ExpiresAt   *time.Time            `json:"expiresAt"`
	Metadata    json.RawMessage       `json:"metadata"`
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	var meta models.Metadata
	if len(req.Metadata) > 0 {
		decoded, err := models.DecodeMetadata(req.Type, req.Metadata)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid credential metadata"))
			return
		}
		meta = decoded
	}

	user, err := h.issuer.Issue(ctx, userID, issuer.IssueRequest{
		Type:        req.Type,
		Name:        req.Name,
		Description: req.Description,
		Issuer:      req.Issuer,
		Icon:        req.Icon,
		ExpiresAt:   req.ExpiresAt,
		Metadata:    meta,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "credential issuance rejected",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	if user == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "user not found"))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, user)
}
