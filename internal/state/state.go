package state

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// StateManager persists how far the region crawler has walked, so a restart resumes instead of starting over.
type StateManager interface {
	GetLastProcessedPage(ctx context.Context, areaCode string) (int, error)
	SetLastProcessedPage(ctx context.Context, areaCode string, pageNumber int) error
	Reset(ctx context.Context, areaCode string) error
}

type redisStateManager struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedisStateManager(redisClient *redis.Client) StateManager {
	return &redisStateManager{
		redisClient: redisClient,
		keyPrefix:   "tourkorea:sync:page:",
	}
}

func (s *redisStateManager) GetLastProcessedPage(ctx context.Context, areaCode string) (int, error) {
	val, err := s.redisClient.Get(ctx, s.keyPrefix+areaCode).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil // No progress saved yet
		}
		return 0, fmt.Errorf("failed to get last processed page for area %s: %w", areaCode, err)
	}

	page, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("failed to parse page number for area %s: %w", areaCode, err)
	}

	return page, nil
}

func (s *redisStateManager) SetLastProcessedPage(ctx context.Context, areaCode string, pageNumber int) error {
	if err := s.redisClient.Set(ctx, s.keyPrefix+areaCode, pageNumber, 0).Err(); err != nil {
		return fmt.Errorf("failed to set last processed page for area %s: %w", areaCode, err)
	}
	return nil
}

// Reset forgets the cursor once a region has been walked to the end.
func (s *redisStateManager) Reset(ctx context.Context, areaCode string) error {
	if err := s.redisClient.Del(ctx, s.keyPrefix+areaCode).Err(); err != nil {
		return fmt.Errorf("failed to reset progress for area %s: %w", areaCode, err)
	}
	return nil
}
