package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist revokes refresh tokens on sign-out. Entries expire with the
// token itself; access tokens are short-lived and not tracked.
type Blacklist struct {
	client *redis.Client
	prefix string
}

// NewBlacklist creates a blacklist store.
func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{client: client, prefix: "rollcall:revoked:"}
}

// Revoke marks a token revoked until it would have expired anyway.
func (b *Blacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, b.prefix+token, "1", ttl).Err()
}

// Revoked reports whether a token was signed out.
func (b *Blacklist) Revoked(ctx context.Context, token string) (bool, error) {
	n, err := b.client.Exists(ctx, b.prefix+token).Result()
	return n > 0, err
}
