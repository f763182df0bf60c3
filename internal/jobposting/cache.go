package jobposting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jobposting-workers/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

const divisionKeyPrefix = "jobposting:divisions:"

// RedisDivisionCache keeps Division choices in Redis as JSON arrays.
type RedisDivisionCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisDivisionCache(client redis.Cmdable, ttl time.Duration) *RedisDivisionCache {
	return &RedisDivisionCache{client: client, ttl: ttl}
}

func (c *RedisDivisionCache) Get(ctx context.Context, library string) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, divisionKeyPrefix+library).Result()
	if errors.Is(err, redis.Nil) {
		metrics.DivisionCacheLookups.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.DivisionCacheLookups.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var divisions []string
	if err := json.Unmarshal([]byte(raw), &divisions); err != nil {
		metrics.DivisionCacheLookups.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("decode cached divisions: %w", err)
	}
	metrics.DivisionCacheLookups.WithLabelValues("hit").Inc()
	return divisions, true, nil
}

func (c *RedisDivisionCache) Set(ctx context.Context, library string, divisions []string) error {
	payload, err := json.Marshal(divisions)
	if err != nil {
		return fmt.Errorf("encode divisions: %w", err)
	}
	if err := c.client.Set(ctx, divisionKeyPrefix+library, string(payload), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
