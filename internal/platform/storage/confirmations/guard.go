package confirmations

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "confirmations:"

// RedisGuard remembers which users confirmed a report in a Redis set per report.
type RedisGuard struct {
	client *redis.Client
}

func NewRedisGuard(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client}
}

// Acquire adds userID to the report's set. It returns false when the user was already there.
func (g *RedisGuard) Acquire(ctx context.Context, reportID uuid.UUID, userID string) (bool, error) {
	added, err := g.client.SAdd(ctx, key(reportID), userID).Result()
	if err != nil {
		return false, fmt.Errorf("redis: add confirmation: %w", err)
	}
	return added == 1, nil
}

func (g *RedisGuard) Release(ctx context.Context, reportID uuid.UUID, userID string) error {
	if err := g.client.SRem(ctx, key(reportID), userID).Err(); err != nil {
		return fmt.Errorf("redis: remove confirmation: %w", err)
	}
	return nil
}

func key(reportID uuid.UUID) string {
	return keyPrefix + reportID.String()
}
