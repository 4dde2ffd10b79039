package utils

import (
	"context" // Context for cache operations
	"time"    // Revocation TTL
)

const revokedSessionPrefix = "session:revoked:"

// RevokeSession marks a session id as logged out until its token would have expired
func RevokeSession(ctx context.Context, cache Cache, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Already expired, nothing to revoke
	}
	return cache.Set(ctx, revokedSessionPrefix+jti, true, ttl)
}

// IsSessionRevoked reports whether a session id was logged out
func IsSessionRevoked(ctx context.Context, cache Cache, jti string) (bool, error) {
	var revoked bool
	found, err := cache.Get(ctx, revokedSessionPrefix+jti, &revoked)
	if err != nil {
		return false, err
	}
	return found && revoked, nil
}
