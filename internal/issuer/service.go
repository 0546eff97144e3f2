// Package issuer turns template-based requests into credentials on a user
// record. Everything it issues is marked verified; there is no signing and
// no verification step, which is the point of the demo.
package issuer

import (
	"context"
	"log/slog"
	"time"

	"bitid/internal/identity/models"
	"bitid/internal/identity/service"
	dErrors "bitid/pkg/domain-errors"
)

// Directory is the slice of the identity service the issuer needs.
type Directory interface {
	AddCredential(ctx context.Context, userID string, input service.CredentialInput) (*models.User, error)
}

type Service struct {
	directory Directory
	logger    *slog.Logger
}

type Option func(*Service)

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

// Templates lists the well-known credential kinds.
func (s *Service) Templates() []Template {
	return templates()
}

// IssueRequest picks a credential type and optionally overrides the
// template defaults. Unknown types are accepted as-is so callers can mint
// free-form credentials; they just start from an empty template.
type IssueRequest struct {
	Type        models.CredentialType
	Name        string
	Description string
	Issuer      string
	Icon        string
	ExpiresAt   *time.Time
	Metadata    models.Metadata
}

// Issue merges the request onto its template and appends the credential to
// the target user. A nil user means the target does not exist.
func (s *Service) Issue(ctx context.Context, userID string, req IssueRequest) (*models.User, error) {
	if req.Type == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "credential type is required")
	}

	input := service.CredentialInput{
		Type:        req.Type,
		Name:        req.Name,
		Description: req.Description,
		Issuer:      req.Issuer,
		Icon:        req.Icon,
		ExpiresAt:   req.ExpiresAt,
		Metadata:    req.Metadata,
	}
	if tpl, ok := templateFor(req.Type); ok {
		if input.Name == "" {
			input.Name = tpl.Name
		}
		if input.Description == "" {
			input.Description = tpl.Description
		}
		if input.Issuer == "" {
			input.Issuer = tpl.Issuer
		}
		if input.Icon == "" {
			input.Icon = tpl.Icon
		}
		if input.Metadata == nil {
			input.Metadata = tpl.Metadata
		}
	}
	if input.Name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "credential name is required")
	}

	user, err := s.directory.AddCredential(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	if user != nil {
		s.logger.InfoContext(ctx, "credential issued",
			"user_id", userID,
			"type", string(req.Type),
		)
	}
	return user, nil
}
