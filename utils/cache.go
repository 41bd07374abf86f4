// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"darisni/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client.
	CacheClient *redis.Client
	// DraftCacheClient is the dedicated client for registration drafts and
	// staged-file metadata.
	DraftCacheClient *redis.Client
	// OTPCacheClient is the dedicated client for one-time passcodes.
	OTPCacheClient *redis.Client
)

// InitRedis initializes all Redis clients.
func InitRedis() {
	InitCache()
	InitDraftCache()
	InitOTPCache()
}

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = newClient(config.AppConfig.RedisCacheDB)
}

// InitDraftCache initializes the Redis client for registration drafts.
func InitDraftCache() {
	DraftCacheClient = newClient(config.AppConfig.RedisDraftDB)
}

// InitOTPCache initializes the Redis client for passcodes.
func InitOTPCache() {
	OTPCacheClient = newClient(config.AppConfig.RedisOTPDB)
}

func newClient(db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (db %d): %v", db, err)
	}
	return client
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// GetDraftCacheClient returns the Redis client for registration drafts.
func GetDraftCacheClient() *redis.Client {
	if DraftCacheClient == nil {
		InitDraftCache()
	}
	return DraftCacheClient
}

// GetOTPCacheClient returns the Redis client for passcodes.
func GetOTPCacheClient() *redis.Client {
	if OTPCacheClient == nil {
		InitOTPCache()
	}
	return OTPCacheClient
}
