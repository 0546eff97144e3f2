package service

import (
	"context"
	"time"

	"bitid/internal/identity/models"
	dErrors "bitid/pkg/domain-errors"
	audit "bitid/pkg/platform/audit"
)

// CredentialInput carries the fields of a credential to issue. ID, IssuedAt,
// Status and Verified are owned by the directory and cannot be supplied.
type CredentialInput struct {
	Type        models.CredentialType
	Name        string
	Description string
	Issuer      string
	Icon        string
	ExpiresAt   *time.Time
	Metadata    models.Metadata
}

// AddCredential appends a credential to the target user. The result is
// unconditionally marked verified and active; no signature check occurs
// anywhere. An unknown userID yields a nil user with no store write.
func (s *Service) AddCredential(ctx context.Context, userID string, input CredentialInput) (*models.User, error) {
	ctx, span := s.tracer.Start(ctx, "identity.AddCredential")
	defer span.End()

	s.state.lock()
	defer s.state.unlock()

	idx := findByID(s.state.users, userID)
	if idx < 0 {
		return nil, nil
	}

	now := s.now()
	meta := input.Metadata
	if meta == nil {
		meta = models.GenericMetadata{}
	}
	credential := &models.Credential{
		ID:          s.state.nextID("c", now),
		Type:        input.Type,
		Name:        input.Name,
		Description: input.Description,
		IssuedAt:    now,
		ExpiresAt:   input.ExpiresAt,
		Issuer:      input.Issuer,
		Status:      models.StatusActive,
		Verified:    true,
		Metadata:    meta,
		Icon:        input.Icon,
	}

	updated := s.state.users[idx].Clone()
	updated.Credentials = append(updated.Credentials, credential)

	next := s.state.snapshot()
	next[idx] = updated
	if err := s.store.SaveUsers(ctx, next); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to persist credential")
	}
	s.state.commit(next, s.state.current)

	s.publishProfile(ctx, updated)
	if s.metrics != nil {
		s.metrics.CredentialsIssued.WithLabelValues(string(credential.Type)).Inc()
	}
	s.emit(ctx, audit.Event{
		UserID:  userID,
		Action:  string(audit.EventCredentialIssued),
		Subject: credential.ID,
	})

	return updated.Clone(), nil
}
