// Package service implements the identity directory and session manager.
//
// The directory owns the in-memory user list, loaded once from the store at
// construction; every mutation persists the whole collection back through
// the store before it is committed to memory, so a failed write never
// leaves the directory ahead of the medium. The session is a pointer to a
// user id, re-resolved against the directory on every read.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"bitid/internal/identity/models"
	"bitid/internal/identity/profileindex"
	"bitid/internal/identity/store"
	"bitid/internal/platform/metrics"
	"bitid/internal/platform/middleware"
	dErrors "bitid/pkg/domain-errors"
	audit "bitid/pkg/platform/audit"
)

// AuditPublisher records domain events. Delivery failures never fail the
// triggering operation.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store    store.Store
	profiles *profileindex.Index
	metrics  *metrics.Metrics
	auditor  AuditPublisher
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time

	state serialized
}

type Option func(*Service)

func WithProfileIndex(idx *profileindex.Index) Option {
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

// WithClock injects the time source used for ids and timestamps. Tests use
// a fixed clock for deterministic ids.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New loads the directory and session pointer from the store. A session
// pointer referencing an id absent from the loaded directory silently
// starts logged out.
func New(ctx context.Context, st store.Store, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("identity store is required")
	}

	s := &Service{
		store:  st,
		logger: slog.Default(),
		tracer: otel.Tracer("bitid/identity"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	users, err := st.LoadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load identity directory: %w", err)
	}

	current, err := st.LoadSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session pointer: %w", err)
	}
	if current != "" && findByID(users, current) < 0 {
		current = ""
	}

	s.state.init(users, current)
	return s, nil
}

// SignupRequest carries the caller-supplied identity fields. Everything but
// the wallet address is optional.
type SignupRequest struct {
	Name          string
	Username      string
	Email         string
	WalletAddress string
	Twitter       string
	GitHub        string
	Avatar        string
}

// Signup creates a new identity and makes it the current session.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*models.User, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Signup")
	defer span.End()

	if req.WalletAddress == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "wallet address is required")
	}

	s.state.lock()
	defer s.state.unlock()

	for _, u := range s.state.users {
		if u.MatchesWallet(req.WalletAddress) {
			return nil, dErrors.New(dErrors.CodeConflict, "this wallet address is already registered")
		}
		if req.Username != "" && u.MatchesUsername(req.Username) {
			return nil, dErrors.New(dErrors.CodeConflict, "this username is already taken")
		}
	}

	now := s.now()
	user := &models.User{
		ID:            s.state.nextID("u", now),
		Name:          req.Name,
		Username:      req.Username,
		Email:         req.Email,
		WalletAddress: req.WalletAddress,
		Twitter:       req.Twitter,
		GitHub:        req.GitHub,
		Avatar:        req.Avatar,
		CreatedAt:     now,
		Credentials:   []*models.Credential{},
	}
	if user.Name == "" {
		user.Name = "Anonymous"
	}
	if user.Username == "" {
		user.Username = "user_" + strconv.FormatInt(now.UnixMilli(), 36)
	}

	next := append(s.state.snapshot(), user)
	if err := s.store.SaveUsers(ctx, next); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to persist new identity")
	}
	if err := s.store.SaveSession(ctx, user.ID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to persist session")
	}
	s.state.commit(next, user.ID)

	s.publishProfile(ctx, user)
	if s.metrics != nil {
		s.metrics.SignupsTotal.Inc()
	}
	s.emit(ctx, audit.Event{
		UserID: user.ID,
		Action: string(audit.EventUserCreated),
		Wallet: user.WalletAddress,
	})

	return user.Clone(), nil
}

// Login resolves a wallet address to an identity and makes it the current
// session. There is deliberately no password or signature check: any caller
// claiming an address is treated as that user.
func (s *Service) Login(ctx context.Context, walletAddress, device string) (*models.User, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Login")
	defer span.End()

	s.state.lock()
	defer s.state.unlock()

	var user *models.User
	for _, u := range s.state.users {
		if u.MatchesWallet(walletAddress) {
			user = u
			break
		}
	}
	if user == nil {
		if s.metrics != nil {
			s.metrics.LoginFailuresTotal.Inc()
		}
		s.emit(ctx, audit.Event{
			Action: string(audit.EventUserLoginFailed),
			Wallet: walletAddress,
			Reason: "no account for wallet address",
		})
		return nil, dErrors.New(dErrors.CodeNotFound, "no account found with this wallet address")
	}

	if err := s.store.SaveSession(ctx, user.ID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to persist session")
	}
	s.state.current = user.ID

	if s.metrics != nil {
		s.metrics.LoginsTotal.Inc()
	}
	s.emit(ctx, audit.Event{
		UserID: user.ID,
		Action: string(audit.EventUserLogin),
		Wallet: user.WalletAddress,
		Device: device,
	})

	return user.Clone(), nil
}

// Logout clears the session pointer and its persisted copy.
func (s *Service) Logout(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "identity.Logout")
	defer span.End()

	s.state.lock()
	defer s.state.unlock()

	if err := s.store.ClearSession(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to clear session")
	}

	previous := s.state.current
	s.state.current = ""
	if previous != "" {
		s.emit(ctx, audit.Event{
			UserID: previous,
			Action: string(audit.EventUserLoggedOut),
		})
	}
	return nil
}

// Current re-resolves the session pointer against the directory. The second
// return is false when logged out or when the pointer dangles.
func (s *Service) Current(ctx context.Context) (*models.User, bool) {
	s.state.rlock()
	defer s.state.runlock()

	if s.state.current == "" {
		return nil, false
	}
	idx := findByID(s.state.users, s.state.current)
	if idx < 0 {
		return nil, false
	}
	return s.state.users[idx].Clone(), true
}

// GetUser returns the user with the given id.
func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	s.state.rlock()
	defer s.state.runlock()

	idx := findByID(s.state.users, userID)
	if idx < 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return s.state.users[idx].Clone(), nil
}

// FindUser matches the identifier against id, username and wallet address,
// in that precedence, case-insensitively for the latter two. A miss is a
// nil result, not an error; the lookup has no side effects on the
// directory or the session.
func (s *Service) FindUser(ctx context.Context, identifier string) (*models.User, error) {
	_, span := s.tracer.Start(ctx, "identity.FindUser")
	defer span.End()

	s.state.rlock()
	defer s.state.runlock()

	if idx := findByID(s.state.users, identifier); idx >= 0 {
		return s.state.users[idx].Clone(), nil
	}
	for _, u := range s.state.users {
		if u.MatchesUsername(identifier) {
			return u.Clone(), nil
		}
	}
	for _, u := range s.state.users {
		if u.MatchesWallet(identifier) {
			return u.Clone(), nil
		}
	}
	return nil, nil
}

// Snapshot returns a deep copy of the whole directory, used to rebuild the
// public profile index at startup.
func (s *Service) Snapshot(ctx context.Context) []*models.User {
	s.state.rlock()
	defer s.state.runlock()
	return s.state.snapshotDeep()
}

func (s *Service) publishProfile(ctx context.Context, user *models.User) {
	if err := s.profiles.Publish(ctx, user); err != nil {
		s.logger.WarnContext(ctx, "failed to publish public profile",
			"username", user.Username,
			"error", err,
		)
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = middleware.GetRequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

func findByID(users []*models.User, id string) int {
	for i, u := range users {
		if u.ID == id {
			return i
		}
	}
	return -1
}
