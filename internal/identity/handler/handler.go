// Package handler exposes the identity directory over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mssola/useragent"

	"bitid/internal/identity/models"
	"bitid/internal/identity/service"
	"bitid/internal/platform/middleware"
	dErrors "bitid/pkg/domain-errors"
	"bitid/pkg/platform/httputil"
)

const accessTokenTTL = 24 * time.Hour

// Directory defines the identity operations the handler drives.
type Directory interface {
	Signup(ctx context.Context, req service.SignupRequest) (*models.User, error)
	Login(ctx context.Context, walletAddress, device string) (*models.User, error)
	Logout(ctx context.Context) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateUser(ctx context.Context, userID string, req service.UpdateRequest) (*models.User, error)
}

// TokenIssuer mints access tokens for authenticated sessions.
type TokenIssuer interface {
	GenerateAccessToken(userID string, expiresIn time.Duration) (string, error)
}

type Handler struct {
	logger       *slog.Logger
	identity     Directory
	tokens       TokenIssuer
	jwtValidator middleware.JWTValidator
}

func New(identity Directory, tokens TokenIssuer, jwtValidator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{
		logger:       logger,
		identity:     identity,
		tokens:       tokens,
		jwtValidator: jwtValidator,
	}
}

// Register registers the auth and profile routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/signup", h.handleSignup)
	r.Post("/auth/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/auth/logout", h.handleLogout)
		r.Get("/users/me", h.handleGetMe)
		r.Patch("/users/me", h.handleUpdateMe)
	})
}

type signupRequest struct {
	Name          string `json:"name"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	WalletAddress string `json:"walletAddress"`
	Twitter       string `json:"twitter"`
	GitHub        string `json:"github"`
	Avatar        string `json:"avatar"`
}

type loginRequest struct {
	WalletAddress string `json:"walletAddress"`
}

type authResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"accessToken"`
}

type updateRequest struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Twitter  *string `json:"twitter"`
	GitHub   *string `json:"github"`
	Avatar   *string `json:"avatar"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	user, err := h.identity.Signup(ctx, service.SignupRequest{
		Name:          req.Name,
		Username:      req.Username,
		Email:         req.Email,
		WalletAddress: req.WalletAddress,
		Twitter:       req.Twitter,
		GitHub:        req.GitHub,
		Avatar:        req.Avatar,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "signup rejected",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	token, err := h.tokens.GenerateAccessToken(user.ID, accessTokenTTL)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to mint access token",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to create session token"))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, authResponse{User: user, AccessToken: token})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.WalletAddress == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "wallet address is required"))
		return
	}

	user, err := h.identity.Login(ctx, req.WalletAddress, deviceSummary(r.UserAgent()))
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	token, err := h.tokens.GenerateAccessToken(user.ID, accessTokenTTL)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to mint access token",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to create session token"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, authResponse{User: user, AccessToken: token})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.identity.Logout(ctx); err != nil {
		h.logger.ErrorContext(ctx, "logout failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	user, err := h.identity.GetUser(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	user, err := h.identity.UpdateUser(ctx, userID, service.UpdateRequest{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Twitter:  req.Twitter,
		GitHub:   req.GitHub,
		Avatar:   req.Avatar,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "profile update rejected",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	if user == nil {
		// The token references an identity that no longer exists.
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "user not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// deviceSummary condenses a User-Agent header into "browser on platform"
// for the login audit trail.
func deviceSummary(rawUA string) string {
	if rawUA == "" {
		return ""
	}
	ua := useragent.New(rawUA)
	name, _ := ua.Browser()
	platform := ua.OS()
	switch {
	case name != "" && platform != "":
		return name + " on " + platform
	case name != "":
		return name
	default:
		return platform
	}
}
