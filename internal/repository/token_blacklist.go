package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RefreshBlacklist records redeemed refresh-token jti values in Redis so a
// refresh token is usable exactly once. Entries expire together with the
// token they belong to, which keeps the set bounded by the refresh horizon
// instead of growing forever.
type RefreshBlacklist struct {
	RDB    *redis.Client
	Prefix string
}

func NewRefreshBlacklist(rdb *redis.Client) *RefreshBlacklist {
	return &RefreshBlacklist{RDB: rdb, Prefix: "refresh:used"}
}

// Redeem atomically marks jti as used. SET NX is the check-and-set: when
// two redemptions race on the same token, Redis lets exactly one through
// and the loser gets ErrTokenReused. ttl should be the remaining lifetime
// of the presented token.
//
// Refresh fails closed: when Redis is unreachable (or was never configured)
// the caller gets ErrBlacklistUnavailable rather than a replayable token.
func (b *RefreshBlacklist) Redeem(ctx context.Context, jti string, ttl time.Duration) error {
	if b == nil || b.RDB == nil {
		return ErrBlacklistUnavailable
	}
	if ttl <= 0 {
		// Token already past its expiry; signature validation upstream
		// rejects it anyway, but never store a non-expiring key.
		ttl = time.Minute
	}
	ok, err := b.RDB.SetNX(ctx, b.Prefix+":"+jti, 1, ttl).Result()
	if err != nil {
		return ErrBlacklistUnavailable
	}
	if !ok {
		return ErrTokenReused
	}
	return nil
}
