package utils

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-32-characters-long"

func TestGenerateAndParseJWT(t *testing.T) {
	token, claims, err := GenerateJWT(42, "chef01", testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NotEmpty(t, claims.ID)

	parsed, err := ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), parsed.UserID)
	assert.Equal(t, "chef01", parsed.Username)
	assert.Equal(t, claims.ID, parsed.ID)
	assert.InDelta(t, time.Hour.Seconds(), parsed.RemainingTTL().Seconds(), 5)
}

func TestGenerateJWT_UniqueSessionIDs(t *testing.T) {
	_, a, err := GenerateJWT(1, "chef01", testSecret, time.Hour)
	require.NoError(t, err)
	_, b, err := GenerateJWT(1, "chef01", testSecret, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestParseJWT_WrongSecret(t *testing.T) {
	token, _, err := GenerateJWT(1, "chef01", testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "another-secret")
	assert.Error(t, err)
}

func TestParseJWT_Expired(t *testing.T) {
	token, _, err := GenerateJWT(1, "chef01", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, testSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestClaims_RemainingTTL(t *testing.T) {
	assert.Zero(t, (&Claims{}).RemainingTTL())
	expired := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Second))}}
	assert.Zero(t, expired.RemainingTTL())
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	type summary struct {
		Average float64 `json:"average"`
		Count   int64   `json:"count"`
	}

	var got summary
	found, err := cache.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, "recipe:1:rating", summary{Average: 4.5, Count: 2}, time.Minute))
	found, err = cache.Get(ctx, "recipe:1:rating", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, summary{Average: 4.5, Count: 2}, got)

	require.NoError(t, cache.Delete(ctx, "recipe:1:rating", "unknown"))
	found, err = cache.Get(ctx, "recipe:1:rating", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	require.NoError(t, cache.Set(ctx, "short", 1, time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	var v int
	found, err := cache.Get(ctx, "short", &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSessionRevocation(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	revoked, err := IsSessionRevoked(ctx, cache, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, RevokeSession(ctx, cache, "jti-1", time.Hour))
	revoked, err = IsSessionRevoked(ctx, cache, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = IsSessionRevoked(ctx, cache, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	// Expired sessions are not stored
	require.NoError(t, RevokeSession(ctx, cache, "jti-3", 0))
	revoked, err = IsSessionRevoked(ctx, cache, "jti-3")
	require.NoError(t, err)
	assert.False(t, revoked)
}
