// Package profileindex mirrors public profiles into Redis, keyed by
// lowercase username, so the verifier can resolve a username without
// touching the directory's internal ids.
package profileindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"bitid/internal/identity/models"
	"bitid/pkg/platform/sentinel"
)

const keyPrefix = "bitid:profile:"

// Index publishes and resolves public profiles. A nil Index is valid and
// turns every operation into a no-op miss, matching the "Redis not
// configured" case.
type Index struct {
	client *redis.Client
}

func New(client *redis.Client) *Index {
	if client == nil {
		return nil
	}
	return &Index{client: client}
}

func key(username string) string {
	return keyPrefix + strings.ToLower(username)
}

// Publish writes the user's public view under its lowercase username.
func (i *Index) Publish(ctx context.Context, user *models.User) error {
	if i == nil {
		return nil
	}
	doc, err := json.Marshal(user.PublicView())
	if err != nil {
		return fmt.Errorf("encode public profile: %w", err)
	}
	if err := i.client.Set(ctx, key(user.Username), doc, 0).Err(); err != nil {
		return fmt.Errorf("publish profile %s: %w", user.Username, err)
	}
	return nil
}

// Remove drops a published profile, used when a username changes.
func (i *Index) Remove(ctx context.Context, username string) error {
	if i == nil {
		return nil
	}
	return i.client.Del(ctx, key(username)).Err()
}

// Lookup resolves a username to its public profile. Misses surface as
// sentinel.ErrNotFound.
func (i *Index) Lookup(ctx context.Context, username string) (*models.PublicProfile, error) {
	if i == nil {
		return nil, sentinel.ErrNotFound
	}
	doc, err := i.client.Get(ctx, key(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup profile %s: %w", username, err)
	}

	var profile models.PublicProfile
	if err := json.Unmarshal(doc, &profile); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", username, err)
	}
	return &profile, nil
}

// Rebuild republishes every profile, fanning writes out concurrently. Run
// at startup so the index converges with the directory after downtime.
func (i *Index) Rebuild(ctx context.Context, users []*models.User) error {
	if i == nil {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, user := range users {
		g.Go(func() error {
			return i.Publish(ctx, user)
		})
	}
	return g.Wait()
}
