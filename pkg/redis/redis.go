package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/safedine/safedine-backend/config"
	"github.com/safedine/safedine-backend/pkg/logger"
)

var client *redis.Client

// ErrCacheMiss is returned when a cached value is absent or redis is disabled
var ErrCacheMiss = errors.New("cache miss")

// Init initializes the Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client = nil
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance (nil when redis is disabled)
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// BlacklistToken adds a token to the blacklist until it would have expired
func BlacklistToken(ctx context.Context, token string, expiry time.Duration) error {
	if client == nil {
		return nil
	}

	key := fmt.Sprintf("blacklist:%s", token)
	if err := client.Set(ctx, key, "revoked", expiry).Err(); err != nil {
		logger.Error("Failed to blacklist token", err, nil)
		return err
	}
	return nil
}

// IsTokenBlacklisted checks if a token is in the blacklist
func IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	if client == nil {
		return false, nil
	}

	key := fmt.Sprintf("blacklist:%s", token)
	_, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetJSON reads a cached JSON value into dest. Returns ErrCacheMiss when the
// key is absent or redis is unavailable, so callers fall back to the database.
func GetJSON(ctx context.Context, key string, dest interface{}) error {
	if client == nil {
		return ErrCacheMiss
	}

	data, err := client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		logger.Warn("Redis read failed, treating as cache miss", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return ErrCacheMiss
	}

	return json.Unmarshal(data, dest)
}

// SetJSON caches a JSON-encoded value with a TTL. Failures are logged, not
// propagated; the cache is an optimization only.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		logger.Error("Failed to marshal cache value", err, map[string]interface{}{"key": key})
		return
	}

	if err := client.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.Warn("Redis write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// Delete removes cached keys, used when reference data changes
func Delete(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("Redis delete failed", map[string]interface{}{
			"keys":  keys,
			"error": err.Error(),
		})
	}
}
