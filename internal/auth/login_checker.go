package auth

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

// UserID returns ErrSessionNotFound for unknown, malformed and expired tokens.
func (lc *LoginChecker) UserID(ctx context.Context, token string) (int, error) {
	if token == "" {
		return 0, ErrSessionNotFound
	}

	val, err := lc.redisClient.Get(ctx, sessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, err
	}

	userID, createdAt, err := parseSessionValue(val)
	if err != nil {
		return 0, ErrSessionNotFound
	}

	if time.Since(createdAt) > lc.ttl {
		return 0, ErrSessionNotFound
	}

	return userID, nil
}
