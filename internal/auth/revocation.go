package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:jti:"

// Revoker keeps a Redis blacklist of token ids until the tokens would have expired.
// A nil client disables revocation; logout then only stamps last_logout.
type Revoker struct {
	client *redis.Client
	now    func() time.Time
}

// NewRevoker creates a Revoker backed by client, which may be nil.
func NewRevoker(client *redis.Client) *Revoker {
	return &Revoker{client: client, now: time.Now}
}

// Revoke blacklists jti until expiresAt.
func (r *Revoker) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if r == nil || r.client == nil || jti == "" {
		return nil
	}
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether jti has been blacklisted.
func (r *Revoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r == nil || r.client == nil {
		return false, nil
	}
	n, err := r.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
