// Package verifier resolves a free-text identifier to a public profile.
// The lookup is read-only: it never touches the session and never mutates
// the directory.
package verifier

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"bitid/internal/identity/models"
	"bitid/internal/platform/metrics"
	"bitid/internal/platform/middleware"
	dErrors "bitid/pkg/domain-errors"
	audit "bitid/pkg/platform/audit"
	"bitid/pkg/platform/sentinel"
)

// Directory is the slice of the identity service the verifier needs.
type Directory interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	FindUser(ctx context.Context, identifier string) (*models.User, error)
}

// ProfileIndex resolves a username to a published public profile. Misses
// surface as sentinel.ErrNotFound.
type ProfileIndex interface {
	Lookup(ctx context.Context, username string) (*models.PublicProfile, error)
}

// AuditPublisher records lookup events; delivery failures never fail the
// lookup itself.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	directory Directory
	profiles  ProfileIndex
	metrics   *metrics.Metrics
	auditor   AuditPublisher
	logger    *slog.Logger
}

type Option func(*Service)

func WithProfileIndex(idx ProfileIndex) Option {
	return func(s *Service) { s.profiles = idx }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditor = p }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(directory Directory, opts ...Option) *Service {
	s := &Service{
		directory: directory,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup trims the identifier and resolves it to a public profile. An id
// match is resolved against the directory before anything else, so a
// username that happens to equal another user's id can never shadow it.
// After that the profile index answers for usernames when it can; the
// directory scan is the authority. A miss is a nil result, not an error,
// so callers can distinguish "no such identity" from "identity with zero
// credentials".
func (s *Service) Lookup(ctx context.Context, identifier string) (*models.PublicProfile, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "identifier is required")
	}

	if s.metrics != nil {
		s.metrics.VerifierLookupsTotal.Inc()
	}

	if user, err := s.directory.GetUser(ctx, identifier); err == nil {
		s.emit(ctx, identifier, true)
		return user.PublicView(), nil
	} else if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return nil, err
	}

	if s.profiles != nil {
		if profile, err := s.profiles.Lookup(ctx, identifier); err == nil {
			s.emit(ctx, identifier, true)
			return profile, nil
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "profile index lookup failed, falling back to directory",
				"identifier", identifier,
				"error", err,
			)
		}
	}

	user, err := s.directory.FindUser(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		if s.metrics != nil {
			s.metrics.VerifierMissesTotal.Inc()
		}
		s.emit(ctx, identifier, false)
		return nil, nil
	}

	s.emit(ctx, identifier, true)
	return user.PublicView(), nil
}

func (s *Service) emit(ctx context.Context, identifier string, found bool) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		Action:    string(audit.EventProfileVerified),
		Subject:   identifier,
		RequestID: middleware.GetRequestID(ctx),
	}
	if !found {
		event.Reason = "no matching identity"
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
