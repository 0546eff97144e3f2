// Package handler drives the configured wallet connector over HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bitid/internal/platform/metrics"
	"bitid/internal/platform/middleware"
	"bitid/internal/wallet"
	"bitid/pkg/platform/audit"
	"bitid/pkg/platform/httputil"
	"bitid/pkg/platform/sentinel"
)

// AuditPublisher records connect outcomes; delivery failures never fail
// the request.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Handler struct {
	logger    *slog.Logger
	connector wallet.Connector
	metrics   *metrics.Metrics
	auditor   AuditPublisher
}

type Option func(*Handler)

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(h *Handler) { h.auditor = p }
}

func New(connector wallet.Connector, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		logger:    logger,
		connector: connector,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the wallet routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/wallet/connect", h.handleConnect)
	r.Post("/wallet/disconnect", h.handleDisconnect)
}

type notInstalledResponse struct {
	Error      string `json:"error"`
	InstallURL string `json:"installUrl"`
}

func (h *Handler) handleConnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	account, err := h.connector.Connect(ctx)
	if err != nil {
		h.observeFailure(ctx, err)

		var notInstalled *wallet.NotInstalledError
		switch {
		case errors.As(err, &notInstalled):
			httputil.WriteJSON(w, http.StatusServiceUnavailable, notInstalledResponse{
				Error:      "wallet_not_installed",
				InstallURL: notInstalled.InstallURL,
			})
		case errors.Is(err, sentinel.ErrCancelled):
			h.logger.InfoContext(ctx, "wallet connection cancelled",
				"request_id", requestID,
			)
			httputil.WriteError(w, err)
		default:
			h.logger.WarnContext(ctx, "wallet connection failed",
				"request_id", requestID,
				"error", err.Error(),
			)
			httputil.WriteError(w, err)
		}
		return
	}

	if h.metrics != nil {
		h.metrics.WalletConnectsTotal.Inc()
	}
	h.emit(ctx, audit.Event{
		Action: string(audit.EventWalletConnected),
		Wallet: account.Address,
	})

	httputil.WriteJSON(w, http.StatusOK, account)
}

func (h *Handler) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.connector.Disconnect(ctx); err != nil {
		h.logger.WarnContext(ctx, "wallet disconnect failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) observeFailure(ctx context.Context, err error) {
	if h.metrics != nil {
		h.metrics.WalletConnectFailures.Inc()
	}
	h.emit(ctx, audit.Event{
		Action: string(audit.EventWalletConnectFailed),
		Reason: err.Error(),
	})
}

func (h *Handler) emit(ctx context.Context, event audit.Event) {
	if h.auditor == nil {
		return
	}
	event.RequestID = middleware.GetRequestID(ctx)
	if err := h.auditor.Emit(ctx, event); err != nil {
		h.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err.Error(),
		)
	}
}
