package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Blockbuster/config"
	"Blockbuster/model"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the shared Redis client.
var RedisClient *redis.Client

// ConnectRedis initializes the Redis connection.
func ConnectRedis(cfg *config.Config) error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return nil
}

// CloseRedis closes the Redis connection.
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// TestRedis verifies the connection with a round-trip.
func TestRedis() error {
	if RedisClient == nil {
		return fmt.Errorf("redis client not initialized")
	}
	ctx := context.Background()
	if err := RedisClient.Set(ctx, "ping_test", "ok", time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to set redis key: %w", err)
	}
	val, err := RedisClient.Get(ctx, "ping_test").Result()
	if err != nil {
		return fmt.Errorf("failed to get redis key: %w", err)
	}
	if val != "ok" {
		return fmt.Errorf("unexpected value from redis: %s", val)
	}
	RedisClient.Del(ctx, "ping_test")
	return nil
}

// scanDebounceWindow suppresses the double-fire a reader produces when a tag
// stays on the pad across two button presses.
const scanDebounceWindow = 3 * time.Second

// AcquireScanSlot returns false when the same reader played the same entry
// within the debounce window. Fails open when Redis is unavailable.
func AcquireScanSlot(ctx context.Context, deviceID, entryID string) bool {
	if RedisClient == nil {
		return true
	}
	key := fmt.Sprintf("scan:%s:%s", deviceID, entryID)
	ok, err := RedisClient.SetNX(ctx, key, 1, scanDebounceWindow).Result()
	if err != nil {
		return true
	}
	return ok
}

const searchCacheTTL = 5 * time.Minute

func searchCacheKey(query string, limit int, plugin string) string {
	return fmt.Sprintf("search:%s:%d:%s", query, limit, plugin)
}

// GetCachedSearch returns a cached search response, or nil on miss.
func GetCachedSearch(ctx context.Context, query string, limit int, plugin string) []model.SearchResult {
	if RedisClient == nil {
		return nil
	}
	raw, err := RedisClient.Get(ctx, searchCacheKey(query, limit, plugin)).Bytes()
	if err != nil {
		return nil
	}
	var results []model.SearchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil
	}
	return results
}

// CacheSearch stores a search response for a short TTL.
func CacheSearch(ctx context.Context, query string, limit int, plugin string, results []model.SearchResult) {
	if RedisClient == nil {
		return
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	RedisClient.Set(ctx, searchCacheKey(query, limit, plugin), raw, searchCacheTTL)
}
