package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"geo-dispatch-service/internal/domain"
)

// RedisGeocodeCache shares geocode results across service instances. It
// implements both the hot-cache and durable-store interfaces: positive
// entries are stored without expiry, negative marks under a "neg:" prefix
// with a real Redis TTL. Redis being down degrades to cache misses, never
// to request failures.
type RedisGeocodeCache struct {
	rdb         *redis.Client
	negativeTTL time.Duration
}

func NewRedisGeocodeCache(rdb *redis.Client, negativeTTL time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{rdb: rdb, negativeTTL: negativeTTL}
}

func (r *RedisGeocodeCache) Get(ctx context.Context, key string) (domain.Coordinate, bool) {
	val, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("level=warn msg=\"redis get failed\" key=%s err=%v", key, err)
		}
		return domain.Coordinate{}, false
	}

	c, ok := domain.ParseLatLng(val)
	if !ok {
		log.Printf("level=warn msg=\"redis entry unparsable, dropping\" key=%s val=%q", key, val)
		r.rdb.Del(ctx, key)
		return domain.Coordinate{}, false
	}
	return c, true
}

func (r *RedisGeocodeCache) Put(ctx context.Context, key string, c domain.Coordinate) {
	if err := r.rdb.Set(ctx, key, c.String(), 0).Err(); err != nil {
		log.Printf("level=warn msg=\"redis set failed\" key=%s err=%v", key, err)
	}
	r.rdb.Del(ctx, "neg:"+key)
}

func (r *RedisGeocodeCache) RecentlyFailed(ctx context.Context, key string) bool {
	n, err := r.rdb.Exists(ctx, "neg:"+key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("level=warn msg=\"redis exists failed\" key=%s err=%v", key, err)
		}
		return false
	}
	return n > 0
}

func (r *RedisGeocodeCache) MarkFailed(ctx context.Context, key string) {
	if err := r.rdb.Set(ctx, "neg:"+key, "1", r.negativeTTL).Err(); err != nil {
		log.Printf("level=warn msg=\"redis negative mark failed\" key=%s err=%v", key, err)
	}
}

// GetMany fetches positive entries in one MGET round trip. Missing and
// unparsable keys are simply absent from the result.
func (r *RedisGeocodeCache) GetMany(ctx context.Context, keys []string) (map[string]domain.Coordinate, error) {
	if len(keys) == 0 {
		return map[string]domain.Coordinate{}, nil
	}

	vals, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	out := make(map[string]domain.Coordinate, len(keys))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if c, ok := domain.ParseLatLng(s); ok {
			out[keys[i]] = c
		}
	}
	return out, nil
}

func (r *RedisGeocodeCache) PutMany(ctx context.Context, entries map[string]domain.Coordinate) error {
	if len(entries) == 0 {
		return nil
	}

	pipe := r.rdb.Pipeline()
	for key, c := range entries {
		pipe.Set(ctx, key, c.String(), 0)
		pipe.Del(ctx, "neg:"+key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline: %w", err)
	}
	return nil
}
