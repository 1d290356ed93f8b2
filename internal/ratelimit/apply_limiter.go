package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/sentrakoop/sentra/internal/config"
	"go.uber.org/zap"
)

const keyMembershipApply = "ratelimit:membership:apply:%s"

// ApplyLimiter throttles membership applications per user. With no
// redis configured it admits everything, so a single-node deployment
// works out of the box.
type ApplyLimiter struct {
	enabled bool
	bucket  *TokenBucket
	log     *zap.Logger
	rate    float64
	burst   int
}

func NewApplyLimiter(cfg config.Config, log *zap.Logger) *ApplyLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" || cfg.ApplyRate <= 0 || cfg.ApplyBurst <= 0 {
		return &ApplyLimiter{enabled: false, log: log.Named("ratelimit")}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &ApplyLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		log:     log.Named("ratelimit"),
		rate:    cfg.ApplyRate,
		burst:   cfg.ApplyBurst,
	}
}

func (l *ApplyLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// AllowUser reports whether the user may submit another application
// right now. Limiter failures admit the request; throttling is a
// shield, not a dependency.
func (l *ApplyLimiter) AllowUser(ctx context.Context, userID string) bool {
	if !l.Enabled() {
		return true
	}

	key := fmt.Sprintf(keyMembershipApply, strings.TrimSpace(userID))
	allowed, err := l.bucket.Allow(ctx, key, l.rate, l.burst)
	if err != nil {
		l.log.Warn("rate limiter unavailable, admitting request", zap.Error(err))
		return true
	}
	return allowed
}
