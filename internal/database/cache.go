package database

import (
	"context"
	"encoding/json"
	"time"
)

const (
	// Cache key prefixes
	CacheKeyBlacklist = "filoshare:token:blacklist:"
	CacheKeyOTP       = "filoshare:otp:"

	// TTLs
	TokenBlacklistTTL = 7 * 24 * time.Hour // matches max JWT lifetime
	OTPTTL            = 5 * time.Minute
)

// CacheGet retrieves a value from Redis cache and unmarshals it into dest
func CacheGet(key string, dest interface{}) error {
	ctx := context.Background()
	data, err := Redis.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// CacheSet stores a value in Redis cache with TTL
func CacheSet(key string, value interface{}, ttl time.Duration) error {
	ctx := context.Background()
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return Redis.Set(ctx, key, data, ttl).Err()
}

// CacheDelete removes a key from Redis cache
func CacheDelete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx := context.Background()
	return Redis.Del(ctx, keys...).Err()
}

// BlacklistToken marks a JWT as revoked (logout) until it would expire anyway
func BlacklistToken(token string) error {
	ctx := context.Background()
	return Redis.Set(ctx, CacheKeyBlacklist+token, "1", TokenBlacklistTTL).Err()
}

// IsTokenBlacklisted checks if a JWT has been revoked
func IsTokenBlacklisted(token string) bool {
	ctx := context.Background()
	exists, err := Redis.Exists(ctx, CacheKeyBlacklist+token).Result()
	if err != nil {
		// Fail open: a Redis outage should not lock every user out
		return false
	}
	return exists > 0
}
