package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// slidingWindowScript trims, records, counts, and reads the oldest hit in one
// atomic server-side step so two concurrent callers can never both observe the
// same free slot. Scores are microsecond timestamps.
//
// KEYS[1] window key
// ARGV[1] cutoff (micros, inclusive trim bound)
// ARGV[2] now (micros)
// ARGV[3] member
// ARGV[4] key TTL (millis)
var slidingWindowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, ARGV[1])
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[3])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
local count = redis.call('ZCARD', KEYS[1])
local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
return {count, oldest[2]}
`)

// RedisCounter is the shared WindowedCounter backing multi-instance
// deployments.
type RedisCounter struct {
	rdb *redis.Client
}

func NewRedisCounter(rdb *redis.Client) *RedisCounter {
	return &RedisCounter{rdb: rdb}
}

func (c *RedisCounter) Hit(ctx context.Context, key string, now time.Time, window time.Duration) (int64, time.Time, error) {
	nowMicros := now.UnixMicro()
	cutoff := nowMicros - window.Microseconds()
	member := fmt.Sprintf("%d-%s", nowMicros, uuid.NewString())
	ttl := window.Milliseconds() + 1000

	res, err := slidingWindowScript.Run(ctx, c.rdb,
		[]string{key}, cutoff, nowMicros, member, ttl).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("counter store: %w", err)
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return 0, time.Time{}, fmt.Errorf("counter store: unexpected script reply %v", res)
	}
	count, ok := vals[0].(int64)
	if !ok {
		return 0, time.Time{}, fmt.Errorf("counter store: unexpected count %v", vals[0])
	}
	oldestStr, ok := vals[1].(string)
	if !ok {
		return 0, time.Time{}, fmt.Errorf("counter store: unexpected oldest score %v", vals[1])
	}
	oldestMicros, err := strconv.ParseFloat(oldestStr, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("counter store: parse oldest score: %w", err)
	}
	return count, time.UnixMicro(int64(oldestMicros)), nil
}

// HealthPing reports whether the counter store is reachable.
func (c *RedisCounter) HealthPing(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
