package payment

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// NonceGuard enforces one-time use of payment tokens. FirstUse returns true
// exactly once per nonce; a replayed nonce must be rejected before the
// gateway is ever called, since retrying a charge risks double-billing.
type NonceGuard interface {
	FirstUse(ctx context.Context, nonce string) (bool, error)
}

const nonceKeyPrefix = "checkout:nonce:"

// RedisNonceGuard claims nonces with SET NX so concurrent submissions of the
// same token race safely across processes.
type RedisNonceGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisNonceGuard(client *redis.Client, ttl time.Duration) *RedisNonceGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisNonceGuard{client: client, ttl: ttl}
}

func (g *RedisNonceGuard) FirstUse(ctx context.Context, nonce string) (bool, error) {
	return g.client.SetNX(ctx, nonceKeyPrefix+nonce, "1", g.ttl).Result()
}

// MemoryNonceGuard is the single-process fallback used in tests and when no
// Redis address is configured.
type MemoryNonceGuard struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryNonceGuard() *MemoryNonceGuard {
	return &MemoryNonceGuard{seen: make(map[string]struct{})}
}

func (g *MemoryNonceGuard) FirstUse(_ context.Context, nonce string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.seen[nonce]; ok {
		return false, nil
	}
	g.seen[nonce] = struct{}{}
	return true, nil
}
