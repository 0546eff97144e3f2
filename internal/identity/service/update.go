package service

import (
	"context"

	"bitid/internal/identity/models"
	dErrors "bitid/pkg/domain-errors"
	audit "bitid/pkg/platform/audit"
)

// UpdateRequest is a partial update; nil fields are left untouched. The id,
// wallet address, creation time and credential sequence are immutable.
type UpdateRequest struct {
	Name     *string
	Username *string
	Email    *string
	Twitter  *string
	GitHub   *string
	Avatar   *string
}

// UpdateUser shallow-merges the set fields onto the existing record. An
// unknown userID yields a nil user with no store write. A username change
// must not collide case-insensitively with another user.
func (s *Service) UpdateUser(ctx context.Context, userID string, req UpdateRequest) (*models.User, error) {
	ctx, span := s.tracer.Start(ctx, "identity.UpdateUser")
	defer span.End()

	s.state.lock()
	defer s.state.unlock()

	idx := findByID(s.state.users, userID)
	if idx < 0 {
		return nil, nil
	}

	updated := s.state.users[idx].Clone()
	previousUsername := updated.Username

	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.Username != nil && *req.Username != "" {
		for _, u := range s.state.users {
			if u.ID != userID && u.MatchesUsername(*req.Username) {
				return nil, dErrors.New(dErrors.CodeConflict, "this username is already taken")
			}
		}
		updated.Username = *req.Username
	}
	if req.Email != nil {
		updated.Email = *req.Email
	}
	if req.Twitter != nil {
		updated.Twitter = *req.Twitter
	}
	if req.GitHub != nil {
		updated.GitHub = *req.GitHub
	}
	if req.Avatar != nil {
		updated.Avatar = *req.Avatar
	}

	next := s.state.snapshot()
	next[idx] = updated
	if err := s.store.SaveUsers(ctx, next); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to persist update")
	}
	s.state.commit(next, s.state.current)

	// A renamed profile leaves its old index key behind.
	if !updated.MatchesUsername(previousUsername) {
		if err := s.profiles.Remove(ctx, previousUsername); err != nil {
			s.logger.WarnContext(ctx, "failed to drop stale profile key",
				"username", previousUsername,
				"error", err,
			)
		}
	}
	s.publishProfile(ctx, updated)
	s.emit(ctx, audit.Event{
		UserID: userID,
		Action: string(audit.EventUserUpdated),
	})

	return updated.Clone(), nil
}
