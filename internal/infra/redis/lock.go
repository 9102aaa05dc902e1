// File: internal/infra/redis/lock.go
package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"chatwarden/internal/domain/ports/lock"
)

// RedisLocker implements lock.Locker with SETNX/compare-and-delete, the same
// pattern as the teacher's distributed lock, repurposed from a per-chat
// idle-conversation guard into the cycle-leadership primitive SPEC_FULL.md
// §11 describes.
type RedisLocker struct {
	cli *redis.Client
}

var _ lock.Locker = (*RedisLocker)(nil)

func NewLocker(c *Client) *RedisLocker {
	return &RedisLocker{cli: c.cli}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.cli.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

var luaUnlock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	_, err := luaUnlock.Run(ctx, l.cli, []string{key}, token).Result()
	return err
}

// NoopLocker always wins the lock, satisfying single-replica deployments
// (SPEC_FULL.md §11: "single-replica deployments simply always win the
// lock") without requiring Redis at all.
type NoopLocker struct{}

var _ lock.Locker = NoopLocker{}

func (NoopLocker) TryLock(context.Context, string, time.Duration) (string, bool, error) {
	return "", true, nil
}

func (NoopLocker) Unlock(context.Context, string, string) error { return nil }
