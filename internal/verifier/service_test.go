package verifier

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitid/internal/identity/models"
	"bitid/internal/platform/middleware"
	dErrors "bitid/pkg/domain-errors"
	audit "bitid/pkg/platform/audit"
	auditmemory "bitid/pkg/platform/audit/store/memory"
	"bitid/pkg/platform/audit/publisher"
	"bitid/pkg/platform/sentinel"
)

type stubDirectory struct {
	byID  map[string]*models.User
	users map[string]*models.User
	calls []string
}

func (d *stubDirectory) GetUser(_ context.Context, userID string) (*models.User, error) {
	if u, ok := d.byID[userID]; ok {
		return u, nil
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
}

func (d *stubDirectory) FindUser(_ context.Context, identifier string) (*models.User, error) {
	d.calls = append(d.calls, identifier)
	return d.users[identifier], nil
}

// stubIndex serves canned public profiles the way the Redis index would.
type stubIndex struct {
	profiles map[string]*models.PublicProfile
	lookups  []string
}

func (i *stubIndex) Lookup(_ context.Context, username string) (*models.PublicProfile, error) {
	i.lookups = append(i.lookups, username)
	if p, ok := i.profiles[strings.ToLower(username)]; ok {
		return p, nil
	}
	return nil, sentinel.ErrNotFound
}

func TestLookup(t *testing.T) {
	ctx := context.Background()

	alex := &models.User{
		ID:       "u_1",
		Name:     "Alex Johnson",
		Username: "alexbtc",
		Email:    "alex@example.com",
		Credentials: []*models.Credential{
			{ID: "c_1", Type: models.TypeEmailVerification, Verified: true},
		},
	}

	t.Run("resolves through the directory and hides the internal id", func(t *testing.T) {
		dir := &stubDirectory{users: map[string]*models.User{"alexbtc": alex}}
		svc := New(dir)

		profile, err := svc.Lookup(ctx, "alexbtc")
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Equal(t, "Alex Johnson", profile.Name)
		assert.Len(t, profile.Credentials, 1)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		dir := &stubDirectory{users: map[string]*models.User{"alexbtc": alex}}
		svc := New(dir)

		profile, err := svc.Lookup(ctx, "  alexbtc  ")
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Equal(t, []string{"alexbtc"}, dir.calls)
	})

	t.Run("rejects an empty identifier", func(t *testing.T) {
		svc := New(&stubDirectory{})

		_, err := svc.Lookup(ctx, "   ")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("miss is a nil profile, not an error", func(t *testing.T) {
		svc := New(&stubDirectory{})

		profile, err := svc.Lookup(ctx, "nonexistent")
		require.NoError(t, err)
		assert.Nil(t, profile)
	})

	t.Run("found identity with zero credentials is still found", func(t *testing.T) {
		empty := &models.User{ID: "u_2", Name: "Empty", Username: "empty", Credentials: []*models.Credential{}}
		dir := &stubDirectory{users: map[string]*models.User{"empty": empty}}
		svc := New(dir)

		profile, err := svc.Lookup(ctx, "empty")
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Empty(t, profile.Credentials)
	})

	t.Run("id match wins over an indexed username equal to that id", func(t *testing.T) {
		// A user registered the username "u_1" while another user holds
		// the id "u_1". The impostor's profile sits in the index under
		// that key, but the id match must resolve first.
		impostor := &models.PublicProfile{Name: "Impostor", Username: "u_1"}
		idx := &stubIndex{profiles: map[string]*models.PublicProfile{"u_1": impostor}}
		dir := &stubDirectory{byID: map[string]*models.User{"u_1": alex}}
		svc := New(dir, WithProfileIndex(idx))

		profile, err := svc.Lookup(ctx, "u_1")
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Equal(t, "Alex Johnson", profile.Name)
		assert.Empty(t, idx.lookups)
	})

	t.Run("username lookups resolve from the index without a directory scan", func(t *testing.T) {
		indexed := &models.PublicProfile{Name: "Alex Johnson", Username: "alexbtc"}
		idx := &stubIndex{profiles: map[string]*models.PublicProfile{"alexbtc": indexed}}
		dir := &stubDirectory{users: map[string]*models.User{"alexbtc": alex}}
		svc := New(dir, WithProfileIndex(idx))

		profile, err := svc.Lookup(ctx, "alexbtc")
		require.NoError(t, err)
		assert.Equal(t, "Alex Johnson", profile.Name)
		assert.Empty(t, dir.calls)
	})

	t.Run("index miss falls back to the directory", func(t *testing.T) {
		idx := &stubIndex{}
		dir := &stubDirectory{users: map[string]*models.User{"alexbtc": alex}}
		svc := New(dir, WithProfileIndex(idx))

		profile, err := svc.Lookup(ctx, "alexbtc")
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Equal(t, []string{"alexbtc"}, idx.lookups)
		assert.Equal(t, []string{"alexbtc"}, dir.calls)
	})

	t.Run("audits hits and misses", func(t *testing.T) {
		events := auditmemory.NewInMemoryStore()
		pub := publisher.NewPublisher(events)

		dir := &stubDirectory{users: map[string]*models.User{"alexbtc": alex}}
		svc := New(dir, WithAuditPublisher(pub))

		traced := middleware.WithRequestID(ctx, "req-42")
		_, err := svc.Lookup(traced, "alexbtc")
		require.NoError(t, err)
		_, err = svc.Lookup(traced, "nonexistent")
		require.NoError(t, err)

		all, err := events.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, string(audit.EventProfileVerified), all[0].Action)
		assert.Equal(t, "alexbtc", all[0].Subject)
		assert.Equal(t, "req-42", all[0].RequestID)
		assert.Empty(t, all[0].Reason)
		assert.Equal(t, "nonexistent", all[1].Subject)
		assert.Equal(t, "req-42", all[1].RequestID)
		assert.NotEmpty(t, all[1].Reason)
	})
}
