package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisProposalKeyPrefix = "timetable:proposal:"

// redisProposalCache backs the pending-proposal cache with Redis, grounded
// on the teacher's pkg/cache.NewRedis client usage. Used in place of the
// in-process proposalStore when a generation run should survive across
// service instances (SPEC_FULL §2).
type redisProposalCache struct {
	client *redis.Client
	ttl    time.Duration
}

func newRedisProposalCache(client *redis.Client, ttl time.Duration) *redisProposalCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &redisProposalCache{client: client, ttl: ttl}
}

func (c *redisProposalCache) Save(p proposal) {
	payload, err := json.Marshal(p)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = c.client.Set(ctx, redisProposalKeyPrefix+p.RunID, payload, c.ttl).Err()
}

func (c *redisProposalCache) Get(runID string) (proposal, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	raw, err := c.client.Get(ctx, redisProposalKeyPrefix+runID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return proposal{}, false
		}
		return proposal{}, false
	}
	var p proposal
	if err := json.Unmarshal(raw, &p); err != nil {
		return proposal{}, false
	}
	return p, true
}

func (c *redisProposalCache) Delete(runID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = c.client.Del(ctx, redisProposalKeyPrefix+runID).Err()
}
