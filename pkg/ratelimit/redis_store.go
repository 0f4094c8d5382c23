package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store and SlidingWindowStore on Redis, sharing
// counters across instances. Counters use plain keys with TTLs; sliding
// windows use sorted sets scored by unix nanoseconds.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix sets the Redis key prefix (default "ratelimit:").
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed rate limit store.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, ErrStoreRequired
	}

	s := &RedisStore{
		client: client,
		prefix: "ratelimit:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *RedisStore) key(key string) string {
	return s.prefix + key
}

// incrementScript increments a counter, setting the TTL only on first use
// so the window does not slide on every hit.
var incrementScript = redis.NewScript(`
local current = redis.call('INCRBY', KEYS[1], ARGV[1])
if tonumber(current) == tonumber(ARGV[1]) then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
local ttl = redis.call('PTTL', KEYS[1])
return {current, ttl}
`)

func (s *RedisStore) IncrementAndGet(ctx context.Context, key string, incr int, window time.Duration) (int64, time.Duration, error) {
	res, err := incrementScript.Run(ctx, s.client, []string{s.key(key)},
		incr, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, errors.Join(ErrStoreFailure, err)
	}
	if len(res) != 2 {
		return 0, 0, ErrStoreFailure
	}

	ttl := time.Duration(0)
	if res[1] > 0 {
		ttl = time.Duration(res[1]) * time.Millisecond
	}
	return res[0], ttl, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, time.Duration, error) {
	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, s.key(key))
	ttlCmd := pipe.PTTL(ctx, s.key(key))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return 0, 0, errors.Join(ErrStoreFailure, err)
	}

	current, err := getCmd.Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, 0, nil
		}
		return 0, 0, errors.Join(ErrStoreFailure, err)
	}

	ttl := ttlCmd.Val()
	if ttl < 0 {
		ttl = 0
	}
	return current, ttl, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

// recordIfAllowedScript prunes expired entries, then records n members only
// when the window still has room for all of them. Returns {allowed, count}.
var recordIfAllowedScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
local count = redis.call('ZCARD', KEYS[1])
local n = tonumber(ARGV[4])
if count + n > tonumber(ARGV[3]) then
	return {0, count}
end
for i = 1, n do
	redis.call('ZADD', KEYS[1], ARGV[2], ARGV[5] .. ':' .. i)
end
redis.call('PEXPIRE', KEYS[1], ARGV[6])
return {1, count + n}
`)

func (s *RedisStore) RecordTimestampIfAllowed(ctx context.Context, key string, timestamp time.Time, window time.Duration, limit int, n int) (bool, int64, error) {
	cutoff := timestamp.Add(-window).UnixNano()
	res, err := recordIfAllowedScript.Run(ctx, s.client, []string{s.key(key)},
		cutoff,
		timestamp.UnixNano(),
		limit,
		n,
		uuid.NewString(),
		window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return false, 0, errors.Join(ErrStoreFailure, err)
	}
	if len(res) != 2 {
		return false, 0, ErrStoreFailure
	}
	return res[0] == 1, res[1], nil
}

func (s *RedisStore) RecordTimestamp(ctx context.Context, key string, timestamp time.Time, window time.Duration) error {
	pipe := s.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, s.key(key), "-inf", strconv.FormatInt(timestamp.Add(-window).UnixNano(), 10))
	pipe.ZAdd(ctx, s.key(key), redis.Z{
		Score:  float64(timestamp.UnixNano()),
		Member: uuid.NewString(),
	})
	pipe.PExpire(ctx, s.key(key), window)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

func (s *RedisStore) CountInWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	cutoff := strconv.FormatInt(time.Now().Add(-window).UnixNano(), 10)
	count, err := s.client.ZCount(ctx, s.key(key), cutoff, "+inf").Result()
	if err != nil {
		return 0, errors.Join(ErrStoreFailure, err)
	}
	return count, nil
}

func (s *RedisStore) CleanupExpired(ctx context.Context, key string, window time.Duration) error {
	cutoff := strconv.FormatInt(time.Now().Add(-window).UnixNano(), 10)
	if err := s.client.ZRemRangeByScore(ctx, s.key(key), "-inf", cutoff).Err(); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}
