package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mgr := testJWTManager(15*time.Minute, time.Hour)
	return NewService(mgr, client), mr
}

func TestGenerateAndRefreshTokens(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	pair, err := svc.GenerateTokens(ctx, "5f0c8e9a-0000-4000-8000-000000000010", "fox@example.com")
	require.NoError(t, err)

	refreshed, err := svc.RefreshTokens(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, pair.RefreshToken, refreshed.RefreshToken)

	// The rotated access token keeps the identity claims intact.
	claims, err := svc.ValidateAccessToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "5f0c8e9a-0000-4000-8000-000000000010", claims.UserID)
	assert.Equal(t, "fox@example.com", claims.Email)
}

func TestRefreshTokenRotation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	pair, err := svc.GenerateTokens(ctx, "5f0c8e9a-0000-4000-8000-000000000011", "fox@example.com")
	require.NoError(t, err)

	_, err = svc.RefreshTokens(ctx, pair.RefreshToken)
	require.NoError(t, err)

	// The old refresh token was revoked by the rotation.
	_, err = svc.RefreshTokens(ctx, pair.RefreshToken)
	assert.Error(t, err)
}

func TestLogoutRevokesAllRefreshTokens(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	userID := "5f0c8e9a-0000-4000-8000-000000000012"

	first, err := svc.GenerateTokens(ctx, userID, "fox@example.com")
	require.NoError(t, err)
	second, err := svc.GenerateTokens(ctx, userID, "fox@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, userID))

	_, err = svc.RefreshTokens(ctx, first.RefreshToken)
	assert.Error(t, err)
	_, err = svc.RefreshTokens(ctx, second.RefreshToken)
	assert.Error(t, err)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.RefreshTokens(context.Background(), "not-a-token")
	assert.Error(t, err)
}
