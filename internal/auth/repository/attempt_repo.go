package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ekip-platform/ekip-api/internal/auth/domain"
	"github.com/redis/go-redis/v9"
)

const attemptKeyPrefix = "auth:login_attempts:" // auth:login_attempts:{ip}

// AttemptRepository counts failed logins per client IP. The counter expires
// one window after the first failure, so old attempts clean themselves up.
type AttemptRepository struct {
	client *redis.Client
}

func NewAttemptRepository(client *redis.Client) *AttemptRepository {
	return &AttemptRepository{client: client}
}

func (r *AttemptRepository) Get(ctx context.Context, ip string) (domain.AttemptStatus, error) {
	v, err := r.client.Get(ctx, attemptKey(ip)).Result()
	if err == redis.Nil {
		return domain.NewAttemptStatus(0), nil
	}
	if err != nil {
		return domain.NewAttemptStatus(0), fmt.Errorf("failed to get login attempts: %w", err)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return domain.NewAttemptStatus(0), fmt.Errorf("corrupt login attempt counter: %w", err)
	}
	return domain.NewAttemptStatus(n), nil
}

func (r *AttemptRepository) Increment(ctx context.Context, ip string) (domain.AttemptStatus, error) {
	key := attemptKey(ip)

	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return domain.NewAttemptStatus(0), fmt.Errorf("failed to increment login attempts: %w", err)
	}
	// the window starts at the first failure
	if n == 1 {
		if err := r.client.Expire(ctx, key, domain.AttemptWindow).Err(); err != nil {
			return domain.NewAttemptStatus(int(n)), fmt.Errorf("failed to set attempt window: %w", err)
		}
	}
	return domain.NewAttemptStatus(int(n)), nil
}

func (r *AttemptRepository) Reset(ctx context.Context, ip string) error {
	if err := r.client.Del(ctx, attemptKey(ip)).Err(); err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}

func attemptKey(ip string) string {
	return attemptKeyPrefix + ip
}
