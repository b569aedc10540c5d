package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SundayYogurt/rolematch/internal/helper/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// Limiter decides whether one more request under key fits in its budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter is a fixed-window counter shared across API instances.
type RedisLimiter struct {
	client *redis.Client
	script *redis.Script
	limit  int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		script: redis.NewScript(rateLimitScript),
		limit:  limit,
		window: window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}
	ttl := l.window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{"ratelimit:" + key}, ttl, l.limit).Int64()
	if err != nil {
		return true, err
	}
	return allowed == 1, nil
}

// LocalLimiter keeps a token bucket per key in process memory.
type LocalLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func NewLocalLimiter(limit int, window time.Duration) *LocalLimiter {
	return &LocalLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Every(window / time.Duration(max(limit, 1))),
		burst:    limit,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.burst <= 0 {
		return true, nil
	}
	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) > 10000 {
			l.limiters = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow(), nil
}

// ApplyRateLimit limits apply requests per (role, student). Limiter errors
// let the request through.
func ApplyRateLimit(limiter Limiter, log logrus.FieldLogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if limiter == nil {
			return ctx.Next()
		}
		key := fmt.Sprintf("apply:%s:%d", ctx.Params("roleID"), CurrentUserID(ctx))
		allowed, err := limiter.Allow(ctx.UserContext(), key)
		if err != nil {
			log.WithError(err).WithField("key", key).Warn("rate limiter unavailable")
			return ctx.Next()
		}
		if !allowed {
			return utils.ResponseError(ctx, fiber.StatusTooManyRequests, "too many requests, try again later")
		}
		return ctx.Next()
	}
}
