package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"campaign-access-service/internal/client"
	"campaign-access-service/internal/model"
	"campaign-access-service/internal/util"
)

const profileConfigPrefix = "profile_config:"

// ProfileCache keeps the raw per-user access configuration hot for the
// lifetime of a session. Only the raw shape is cached: validation runs on
// every read so a profile that fails the ingress gate is never trusted just
// because it was cached.
type ProfileCache struct {
	client *client.RedisClient
	ttl    time.Duration
}

func NewProfileCache(redisClient *client.RedisClient, ttl time.Duration) *ProfileCache {
	return &ProfileCache{client: redisClient, ttl: ttl}
}

// GetRawProfile returns the cached configuration, or a miss error.
func (c *ProfileCache) GetRawProfile(ctx context.Context, accountID string) (model.RawProfile, error) {
	key := profileConfigPrefix + accountID

	payload, err := c.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, client.ErrKeyNotFound) {
			return model.RawProfile{}, err
		}
		util.Error("Failed to read profile cache",
			zap.String("account_id", accountID),
			zap.Error(err))
		return model.RawProfile{}, fmt.Errorf("failed to read profile cache: %w", err)
	}

	var raw model.RawProfile
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		// A corrupt entry is treated as a miss; the next SetRawProfile
		// overwrites it.
		util.Warn("Corrupt profile cache entry",
			zap.String("account_id", accountID),
			zap.Error(err))
		return model.RawProfile{}, client.ErrKeyNotFound
	}

	return raw, nil
}

// SetRawProfile stores the configuration with the session TTL.
func (c *ProfileCache) SetRawProfile(ctx context.Context, accountID string, raw model.RawProfile) error {
	key := profileConfigPrefix + accountID

	payload, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal profile config: %w", err)
	}

	if err := c.client.Set(ctx, key, string(payload), c.ttl); err != nil {
		util.Error("Failed to write profile cache",
			zap.String("account_id", accountID),
			zap.Error(err))
		return fmt.Errorf("failed to write profile cache: %w", err)
	}

	util.Debug("Profile cached",
		zap.String("account_id", accountID),
		zap.Duration("ttl", c.ttl))
	return nil
}

// Invalidate drops the cached configuration so the next session re-derives
// the profile from persisted state.
func (c *ProfileCache) Invalidate(ctx context.Context, accountID string) error {
	key := profileConfigPrefix + accountID
	if err := c.client.Del(ctx, key); err != nil {
		return fmt.Errorf("failed to invalidate profile cache: %w", err)
	}
	return nil
}
