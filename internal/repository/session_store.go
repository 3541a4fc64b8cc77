package repository

import (
	"context"
	"time"
)

// SessionStore tracks live session IDs (JWT jti) so logout can revoke a
// token before it expires. Implementations: Redis or in-memory.
type SessionStore interface {
	Register(ctx context.Context, jti, iqCode string, ttl time.Duration) error
	// Lookup returns the IQCode bound to jti, or ErrNotFound when revoked or expired.
	Lookup(ctx context.Context, jti string) (string, error)
	Revoke(ctx context.Context, jti string) error
}

const sessionKeyPrefix = "session:"

func sessionKey(jti string) string { return sessionKeyPrefix + jti }
