package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"net/netip"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultCacheTTL = 24 * time.Hour

	cacheKeyPrefix = "ipcatalog:enrichment:"
)

// RedisCache keeps successful lookups in Redis so repeated judgments of the
// same address skip the network round trip.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, addr netip.Addr) (Metadata, bool, error) {
	payload, err := c.client.Get(ctx, CacheKey(addr)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Metadata{}, false, nil
	}
	if err != nil {
		return Metadata{}, false, err
	}

	metadata, err := decodeMetadata(payload)
	if err != nil {
		return Metadata{}, false, err
	}
	return metadata, true, nil
}

func (c *RedisCache) Set(ctx context.Context, addr netip.Addr, metadata Metadata) error {
	payload, err := encodeMetadata(metadata)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, CacheKey(addr), payload, c.ttl).Err()
}

func CacheKey(addr netip.Addr) string {
	return cacheKeyPrefix + addr.String()
}

func encodeMetadata(metadata Metadata) ([]byte, error) {
	return json.Marshal(metadata)
}

func decodeMetadata(payload []byte) (Metadata, error) {
	var metadata Metadata
	if err := json.Unmarshal(payload, &metadata); err != nil {
		return Metadata{}, err
	}
	return metadata, nil
}
