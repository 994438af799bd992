package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	applisting "github.com/estate/backend/internal/application/listing"
	"github.com/estate/backend/internal/domain/listing"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const activeListingsKey = "property:listings:active"

// RedisPropertyCache implements the property read cache using Redis, shared
// across instances. Cache failures never fail a read; they degrade to a miss
// and the repository serves the request.
type RedisPropertyCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it

	propertyTTL time.Duration
	listingTTL  time.Duration
	logger      *zap.Logger
}

// RedisPropertyCacheOption is a functional option for configuring the cache
type RedisPropertyCacheOption func(*RedisPropertyCache)

// WithRedisTTLs sets the TTL tiers for single properties and the
// active-listings set
func WithRedisTTLs(propertyTTL, listingTTL time.Duration) RedisPropertyCacheOption {
	return func(c *RedisPropertyCache) {
		if propertyTTL > 0 {
			c.propertyTTL = propertyTTL
		}
		if listingTTL > 0 {
			c.listingTTL = listingTTL
		}
	}
}

// WithRedisLogger sets the logger for the cache
func WithRedisLogger(logger *zap.Logger) RedisPropertyCacheOption {
	return func(c *RedisPropertyCache) {
		c.logger = logger
	}
}

// NewRedisPropertyCache creates a new Redis-based property cache
func NewRedisPropertyCache(cfg RedisConfig, opts ...RedisPropertyCacheOption) (*RedisPropertyCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisPropertyCache{
		client:      client,
		ownsClient:  true, // We created this client, so we own it
		propertyTTL: defaultPropertyTTL,
		listingTTL:  defaultListingTTL,
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache, nil
}

// NewRedisPropertyCacheWithClient creates a cache with an existing Redis client
// Note: The caller retains ownership of the client and is responsible for closing it
func NewRedisPropertyCacheWithClient(client *redis.Client, opts ...RedisPropertyCacheOption) *RedisPropertyCache {
	cache := &RedisPropertyCache{
		client:      client,
		ownsClient:  false, // Client is shared, don't close it
		propertyTTL: defaultPropertyTTL,
		listingTTL:  defaultListingTTL,
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// propertyCacheKey generates the cache key for a single property
func (c *RedisPropertyCache) propertyCacheKey(id uuid.UUID) string {
	return "property:" + id.String()
}

// GetProperty retrieves a property from cache
func (c *RedisPropertyCache) GetProperty(ctx context.Context, id uuid.UUID) (*listing.Property, bool) {
	cacheKey := c.propertyCacheKey(id)

	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if err == redis.Nil {
		c.logger.Debug("cache miss for property", zap.String("property_id", id.String()))
		return nil, false
	}
	if err != nil {
		c.logger.Error("failed to get property from cache",
			zap.String("property_id", id.String()),
			zap.Error(err))
		return nil, false
	}

	var property listing.Property
	if err := json.Unmarshal(data, &property); err != nil {
		c.logger.Error("failed to unmarshal cached property",
			zap.String("property_id", id.String()),
			zap.Error(err))
		// Delete corrupted cache entry
		_ = c.client.Del(ctx, cacheKey)
		return nil, false
	}

	c.logger.Debug("cache hit for property", zap.String("property_id", id.String()))
	return &property, true
}

// SetProperty stores a property in cache
func (c *RedisPropertyCache) SetProperty(ctx context.Context, property *listing.Property) {
	if property == nil {
		return
	}

	cacheKey := c.propertyCacheKey(property.ID)

	data, err := json.Marshal(property)
	if err != nil {
		c.logger.Error("failed to marshal property",
			zap.String("property_id", property.ID.String()),
			zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, cacheKey, data, c.propertyTTL).Err(); err != nil {
		c.logger.Error("failed to set property in cache",
			zap.String("property_id", property.ID.String()),
			zap.Error(err))
		return
	}

	c.logger.Debug("cached property",
		zap.String("property_id", property.ID.String()),
		zap.Duration("ttl", c.propertyTTL))
}

// GetActiveListings retrieves the cached active-listings set
func (c *RedisPropertyCache) GetActiveListings(ctx context.Context) ([]*listing.Property, bool) {
	data, err := c.client.Get(ctx, activeListingsKey).Bytes()
	if err == redis.Nil {
		c.logger.Debug("cache miss for active listings")
		return nil, false
	}
	if err != nil {
		c.logger.Error("failed to get active listings from cache", zap.Error(err))
		return nil, false
	}

	var properties []*listing.Property
	if err := json.Unmarshal(data, &properties); err != nil {
		c.logger.Error("failed to unmarshal cached active listings", zap.Error(err))
		_ = c.client.Del(ctx, activeListingsKey)
		return nil, false
	}

	c.logger.Debug("cache hit for active listings", zap.Int("count", len(properties)))
	return properties, true
}

// SetActiveListings stores the active-listings set in cache
func (c *RedisPropertyCache) SetActiveListings(ctx context.Context, properties []*listing.Property) {
	data, err := json.Marshal(properties)
	if err != nil {
		c.logger.Error("failed to marshal active listings", zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, activeListingsKey, data, c.listingTTL).Err(); err != nil {
		c.logger.Error("failed to set active listings in cache", zap.Error(err))
		return
	}

	c.logger.Debug("cached active listings",
		zap.Int("count", len(properties)),
		zap.Duration("ttl", c.listingTTL))
}

// Invalidate drops the property entry and the active-listings set
func (c *RedisPropertyCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if err := c.client.Del(ctx, c.propertyCacheKey(id), activeListingsKey).Err(); err != nil {
		c.logger.Error("failed to invalidate property cache",
			zap.String("property_id", id.String()),
			zap.Error(err))
		return
	}

	c.logger.Debug("invalidated property cache", zap.String("property_id", id.String()))
}

// Close releases any resources held by the cache
func (c *RedisPropertyCache) Close() error {
	// Only close client if we own it
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisPropertyCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisPropertyCache implements PropertyCache
var _ applisting.PropertyCache = (*RedisPropertyCache)(nil)
