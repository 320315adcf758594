package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Key patterns:
//   ratelimit:{user_hex}:messages - per-minute message posts
//   ratelimit:{ip}:auth           - per-minute auth attempts

type RateLimitConfig struct {
	MessageLimit  int
	MessageWindow time.Duration
	AuthLimit     int
	AuthWindow    time.Duration
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MessageLimit:  60,
		MessageWindow: 60 * time.Second,
		AuthLimit:     5,
		AuthWindow:    60 * time.Second,
	}
}

// RateLimiter implements a fixed-window counter on Redis.
type RateLimiter struct {
	client *goredis.Client
	config RateLimitConfig
}

type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
	Limit     int
}

func NewRateLimiter(client *goredis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
	}
}

// AllowMessage checks whether a user may post another message.
func (r *RateLimiter) AllowMessage(ctx context.Context, userHex string) (*RateLimitResult, error) {
	key := fmt.Sprintf("ratelimit:%s:messages", userHex)
	return r.checkLimit(ctx, key, r.config.MessageLimit, r.config.MessageWindow)
}

// AllowAuth checks whether an IP may make another auth attempt.
func (r *RateLimiter) AllowAuth(ctx context.Context, ip string) (*RateLimitResult, error) {
	key := fmt.Sprintf("ratelimit:%s:auth", ip)
	return r.checkLimit(ctx, key, r.config.AuthLimit, r.config.AuthWindow)
}

// checkLimit atomically increments the window counter and reports the result.
func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitResult, error) {
	script := goredis.NewScript(`
		local key = KEYS[1]
		local limit = tonumber(ARGV[1])
		local window = tonumber(ARGV[2])

		local current = redis.call('GET', key)
		if current == false then
			current = 0
		else
			current = tonumber(current)
		end

		local ttl = redis.call('TTL', key)
		if ttl < 0 then
			ttl = window
		end

		if current < limit then
			redis.call('INCR', key)
			if ttl == window then
				redis.call('EXPIRE', key, window)
			end
			return {1, limit - current - 1, ttl}
		else
			return {0, 0, ttl}
		end
	`)

	result, err := script.Run(ctx, r.client, []string{key}, limit, int(window.Seconds())).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	resultSlice, ok := result.([]interface{})
	if !ok || len(resultSlice) < 3 {
		return nil, fmt.Errorf("unexpected rate limit result format")
	}

	allowed := resultSlice[0].(int64) == 1
	remaining := int(resultSlice[1].(int64))
	resetIn := time.Duration(resultSlice[2].(int64)) * time.Second

	return &RateLimitResult{
		Allowed:   allowed,
		Remaining: remaining,
		ResetIn:   resetIn,
		Limit:     limit,
	}, nil
}

// Reset clears the counter for a key.
func (r *RateLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// ResetUser clears a user's message counter.
func (r *RateLimiter) ResetUser(ctx context.Context, userHex string) error {
	return r.Reset(ctx, fmt.Sprintf("ratelimit:%s:messages", userHex))
}

// ResetAuth clears the auth counter for an IP.
func (r *RateLimiter) ResetAuth(ctx context.Context, ip string) error {
	return r.Reset(ctx, fmt.Sprintf("ratelimit:%s:auth", ip))
}
