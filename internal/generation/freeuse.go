package generation

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const freeUseKeyPrefix = "freegen:"

// FreeUseStore tracks which devices already spent their single free
// anonymous render. The flag never expires.
type FreeUseStore struct {
	client *redis.Client
}

func NewFreeUseStore(client *redis.Client) *FreeUseStore {
	return &FreeUseStore{client: client}
}

func (s *FreeUseStore) Used(ctx context.Context, deviceID string) (bool, error) {
	n, err := s.client.Exists(ctx, freeUseKeyPrefix+deviceID).Result()
	if err != nil {
		return false, fmt.Errorf("checking free generation flag: %w", err)
	}
	return n > 0, nil
}

func (s *FreeUseStore) MarkUsed(ctx context.Context, deviceID string) error {
	if err := s.client.Set(ctx, freeUseKeyPrefix+deviceID, "1", 0).Err(); err != nil {
		return fmt.Errorf("marking free generation used: %w", err)
	}
	return nil
}
