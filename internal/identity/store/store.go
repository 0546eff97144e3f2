// Package store persists the identity directory and the session pointer.
//
// The contract is deliberately coarse: the user collection is loaded and
// saved whole, last-writer-wins, with no merge and no partial-write
// recovery. The session pointer is a single scalar slot beside it. A load
// that finds no prior data seeds the demonstration set and persists it
// before returning.
package store

import (
	"context"

	"bitid/internal/identity/models"
)

// Store is implemented by the file-backed and Postgres-backed adapters.
type Store interface {
	// LoadUsers returns the whole collection, seeding it first if the
	// medium holds no prior data.
	LoadUsers(ctx context.Context) ([]*models.User, error)
	// SaveUsers overwrites the whole collection.
	SaveUsers(ctx context.Context, users []*models.User) error

	// LoadSession returns the persisted session pointer, or "" when
	// logged out.
	LoadSession(ctx context.Context) (string, error)
	SaveSession(ctx context.Context, userID string) error
	ClearSession(ctx context.Context) error
}
