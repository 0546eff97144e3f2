package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "bitid/pkg/domain-errors"
)

func TestJWTService(t *testing.T) {
	svc := NewJWTService("test-signing-key", "bitid")

	t.Run("round trip", func(t *testing.T) {
		token, err := svc.GenerateAccessToken("u_1", time.Hour)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "u_1", claims.UserID)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		token, err := svc.GenerateAccessToken("u_1", -time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("token signed with another key is rejected", func(t *testing.T) {
		other := NewJWTService("other-key", "bitid")
		token, err := other.GenerateAccessToken("u_1", time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		require.Error(t, err)
	})
}
