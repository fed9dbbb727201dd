package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenDenylist tracks tokens invalidated before their natural expiry.
type TokenDenylist interface {
	Revoke(ctx context.Context, token string, until time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type redisDenylist struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisDenylist constructs a denylist backed by redis. Entries expire with
// the token they shadow, so the set never grows beyond live tokens.
func NewRedisDenylist(client *redis.Client) TokenDenylist {
	return &redisDenylist{client: client, now: time.Now}
}

func (d *redisDenylist) Revoke(ctx context.Context, token string, until time.Time) error {
	ttl := time.Until(until)
	if d.now != nil {
		ttl = until.Sub(d.now())
	}
	if ttl <= 0 {
		return nil
	}

	if err := d.client.Set(ctx, denylistKey(token), "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

func (d *redisDenylist) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := d.client.Get(ctx, denylistKey(token)).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}

	return true, nil
}

func denylistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "auth:denylist:" + hex.EncodeToString(sum[:])
}
