package cache

//go:generate mockgen -source=capacity_cache.go -destination=mocks/mock_capacity_cache.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/erms/internal/domain"
)

// CapacityCache stores computed capacity summaries per engineer and day.
//
// Every Invalidate bumps the engineer's generation. Readers take the
// generation before loading the ledger and pass it to Set, which discards the
// summary when an invalidation happened in between.
type CapacityCache interface {
	Get(ctx context.Context, engineerID string, day time.Time) (*domain.CapacitySummary, bool, error)
	Generation(ctx context.Context, engineerID string) (int64, error)
	Set(ctx context.Context, summary *domain.CapacitySummary, gen int64) error
	// Invalidate drops every cached day for the engineer.
	Invalidate(ctx context.Context, engineerID string) error
}

const (
	keyPrefix = "erms:capacity:"
	genPrefix = "erms:capacity:gen:"
)

// setIfCurrent writes the summary only while the generation key still holds
// the value the reader saw. A missing generation key counts as 0.
var setIfCurrent = redis.NewScript(`
local gen = redis.call('GET', KEYS[1])
if (gen or '0') ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[2], ARGV[2], ARGV[3])
if tonumber(ARGV[4]) > 0 then
	redis.call('PEXPIRE', KEYS[2], ARGV[4])
end
return 1
`)

// RedisCapacityCache keeps one hash per engineer, keyed by YYYY-MM-DD, so a
// single DEL invalidates all days at once.
type RedisCapacityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCapacityCache builds a cache over client. A non-positive ttl disables expiry.
func NewRedisCapacityCache(client *redis.Client, ttl time.Duration) *RedisCapacityCache {
	return &RedisCapacityCache{client: client, ttl: ttl}
}

func (c *RedisCapacityCache) Get(ctx context.Context, engineerID string, day time.Time) (*domain.CapacitySummary, bool, error) {
	raw, err := c.client.HGet(ctx, keyPrefix+engineerID, domain.FormatDate(day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var summary domain.CapacitySummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, false, err
	}
	return &summary, true, nil
}

func (c *RedisCapacityCache) Generation(ctx context.Context, engineerID string) (int64, error) {
	gen, err := c.client.Get(ctx, genPrefix+engineerID).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisCapacityCache) Set(ctx context.Context, summary *domain.CapacitySummary, gen int64) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	keys := []string{genPrefix + summary.EngineerID, keyPrefix + summary.EngineerID}
	return setIfCurrent.Run(ctx, c.client, keys,
		strconv.FormatInt(gen, 10), domain.FormatDate(summary.AsOf), raw, c.ttl.Milliseconds()).Err()
}

func (c *RedisCapacityCache) Invalidate(ctx context.Context, engineerID string) error {
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, genPrefix+engineerID)
	pipe.Del(ctx, keyPrefix+engineerID)
	_, err := pipe.Exec(ctx)
	return err
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string, time.Time) (*domain.CapacitySummary, bool, error) {
	return nil, false, nil
}

func (Nop) Generation(context.Context, string) (int64, error) { return 0, nil }

func (Nop) Set(context.Context, *domain.CapacitySummary, int64) error { return nil }

func (Nop) Invalidate(context.Context, string) error { return nil }
