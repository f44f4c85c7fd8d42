package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/umai/recipe-api/internal/core/domain"
)

const (
	rankingKey        = "ranking:finished-recipes"
	defaultRankingTTL = 30 * time.Second
)

// RankingCache stores the serialized user ranking under a single key.
type RankingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRankingCache(client *redis.Client, ttl time.Duration) *RankingCache {
	if ttl <= 0 {
		ttl = defaultRankingTTL
	}
	return &RankingCache{client: client, ttl: ttl}
}

// Get returns the cached ranking. ok is false on a miss.
func (c *RankingCache) Get(ctx context.Context) ([]domain.PublicUser, bool, error) {
	raw, err := c.client.Get(ctx, rankingKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ranking cache get: %w", err)
	}

	users, err := decodeRanking(raw)
	if err != nil {
		return nil, false, err
	}
	return users, true, nil
}

func (c *RankingCache) Set(ctx context.Context, users []domain.PublicUser) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("ranking cache encode: %w", err)
	}
	if err := c.client.Set(ctx, rankingKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("ranking cache set: %w", err)
	}
	return nil
}

func (c *RankingCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, rankingKey).Err(); err != nil {
		return fmt.Errorf("ranking cache invalidate: %w", err)
	}
	return nil
}

func decodeRanking(raw []byte) ([]domain.PublicUser, error) {
	var users []domain.PublicUser
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("ranking cache decode: %w", err)
	}
	if users == nil {
		users = []domain.PublicUser{}
	}
	return users, nil
}
