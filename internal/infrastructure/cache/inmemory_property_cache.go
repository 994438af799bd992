package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	applisting "github.com/estate/backend/internal/application/listing"
	"github.com/estate/backend/internal/domain/listing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Constants for in-memory cache configuration
const (
	defaultCleanupInterval = 30 * time.Second

	defaultPropertyTTL = 4 * time.Hour
	defaultListingTTL  = 30 * time.Minute
)

// InMemoryPropertyCache implements the property read cache using in-process
// storage. Suitable for single-instance deployments and tests; entries do not
// survive a restart and are not shared across processes.
type InMemoryPropertyCache struct {
	properties sync.Map // map[uuid.UUID]*cacheEntry[listing.Property]

	mu             sync.RWMutex
	activeListings []*listing.Property
	activeExpires  time.Time
	activeCached   bool

	propertyTTL time.Duration
	listingTTL  time.Duration
	logger      *zap.Logger
	stopCh      chan struct{}
	stopped     int32

	// Stats for monitoring
	hits   int64
	misses int64
}

// cacheEntry wraps a cached value with expiration time
type cacheEntry[T any] struct {
	value     *T
	expiresAt time.Time
}

// isExpired checks if the cache entry has expired
func (e *cacheEntry[T]) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryPropertyCacheOption is a functional option for configuring the cache
type InMemoryPropertyCacheOption func(*InMemoryPropertyCache)

// WithInMemoryTTLs sets the TTL tiers. The single-entity TTL is long because
// invalidation on write keeps entries fresh; the active-listings set churns
// with every lease cascade and gets the short tier.
func WithInMemoryTTLs(propertyTTL, listingTTL time.Duration) InMemoryPropertyCacheOption {
	return func(c *InMemoryPropertyCache) {
		if propertyTTL > 0 {
			c.propertyTTL = propertyTTL
		}
		if listingTTL > 0 {
			c.listingTTL = listingTTL
		}
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryPropertyCacheOption {
	return func(c *InMemoryPropertyCache) {
		c.logger = logger
	}
}

// NewInMemoryPropertyCache creates a new in-memory property cache
func NewInMemoryPropertyCache(opts ...InMemoryPropertyCacheOption) *InMemoryPropertyCache {
	cache := &InMemoryPropertyCache{
		propertyTTL: defaultPropertyTTL,
		listingTTL:  defaultListingTTL,
		logger:      zap.NewNop(),
		stopCh:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	// Start background cleanup goroutine
	go cache.cleanupExpired()

	return cache
}

// GetProperty retrieves a property from cache
func (c *InMemoryPropertyCache) GetProperty(ctx context.Context, id uuid.UUID) (*listing.Property, bool) {
	if value, ok := c.properties.Load(id); ok {
		entry := value.(*cacheEntry[listing.Property])
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("cache hit for property", zap.String("property_id", id.String()))
			return entry.value, true
		}
		// Expired, remove from cache
		c.properties.Delete(id)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("cache miss for property", zap.String("property_id", id.String()))
	return nil, false
}

// SetProperty stores a property in cache
func (c *InMemoryPropertyCache) SetProperty(ctx context.Context, property *listing.Property) {
	if property == nil {
		return
	}

	entry := &cacheEntry[listing.Property]{
		value:     property,
		expiresAt: time.Now().Add(c.propertyTTL),
	}

	c.properties.Store(property.ID, entry)
	c.logger.Debug("cached property",
		zap.String("property_id", property.ID.String()),
		zap.Duration("ttl", c.propertyTTL))
}

// GetActiveListings retrieves the cached active-listings set
func (c *InMemoryPropertyCache) GetActiveListings(ctx context.Context) ([]*listing.Property, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.activeCached || time.Now().After(c.activeExpires) {
		atomic.AddInt64(&c.misses, 1)
		c.logger.Debug("cache miss for active listings")
		return nil, false
	}

	atomic.AddInt64(&c.hits, 1)
	c.logger.Debug("cache hit for active listings", zap.Int("count", len(c.activeListings)))
	return c.activeListings, true
}

// SetActiveListings stores the active-listings set in cache
func (c *InMemoryPropertyCache) SetActiveListings(ctx context.Context, properties []*listing.Property) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.activeListings = properties
	c.activeExpires = time.Now().Add(c.listingTTL)
	c.activeCached = true
	c.logger.Debug("cached active listings",
		zap.Int("count", len(properties)),
		zap.Duration("ttl", c.listingTTL))
}

// Invalidate drops the property entry and the active-listings set. Called by
// writers after every committed mutation.
func (c *InMemoryPropertyCache) Invalidate(ctx context.Context, id uuid.UUID) {
	c.properties.Delete(id)

	c.mu.Lock()
	c.activeListings = nil
	c.activeCached = false
	c.mu.Unlock()

	c.logger.Debug("invalidated property cache", zap.String("property_id", id.String()))
}

// Close releases any resources held by the cache
func (c *InMemoryPropertyCache) Close() error {
	// Only close once
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryPropertyCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of single-property entries in the cache
func (c *InMemoryPropertyCache) Count() (properties int) {
	c.properties.Range(func(_, _ any) bool {
		properties++
		return true
	})
	return properties
}

// cleanupExpired periodically removes expired entries from the cache
func (c *InMemoryPropertyCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						c.logger.Error("Panic in cache cleanup",
							zap.Any("panic", r))
					}
				}()
				c.doCleanup()
			}()
		}
	}
}

// doCleanup removes expired entries
func (c *InMemoryPropertyCache) doCleanup() {
	var removed int

	c.properties.Range(func(key, value any) bool {
		entry := value.(*cacheEntry[listing.Property])
		if entry.isExpired() {
			c.properties.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		c.logger.Debug("cleaned up expired property cache entries",
			zap.Int("removed", removed))
	}
}

// Ensure InMemoryPropertyCache implements PropertyCache
var _ applisting.PropertyCache = (*InMemoryPropertyCache)(nil)
