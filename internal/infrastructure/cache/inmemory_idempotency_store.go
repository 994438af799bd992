package cache

import (
	"context"
	"sync"
	"time"

	"github.com/estate/backend/internal/domain/shared"
)

const idempotencySweepInterval = 5 * time.Minute

// InMemoryIdempotencyStore keeps processed event IDs in a map guarded by a
// mutex. It only protects against redelivery within one process, which is
// enough for a single-instance deployment and for tests. Multi-instance
// deployments need the Redis store so every instance sees the same claims.
type InMemoryIdempotencyStore struct {
	mu      sync.RWMutex
	claims  map[string]time.Time
	done    chan struct{}
	wg      sync.WaitGroup
	closing sync.Once
}

// NewInMemoryIdempotencyStore creates the store and starts the goroutine
// that sweeps out expired claims.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		claims: make(map[string]time.Time),
		done:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.sweepExpired()
	return s
}

// MarkProcessed claims the event ID for ttl. It reports true when the claim
// is new and false when a live claim already exists. An expired claim is
// taken over as if it were absent.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expiry, ok := s.claims[eventID]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	s.claims[eventID] = time.Now().Add(ttl)
	return true, nil
}

// IsProcessed reports whether a live claim exists for the event ID.
func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiry, ok := s.claims[eventID]
	return ok && time.Now().Before(expiry), nil
}

// Close stops the sweep goroutine. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closing.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) sweepExpired() {
	defer s.wg.Done()

	ticker := time.NewTicker(idempotencySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			now := time.Now()
			for eventID, expiry := range s.claims {
				if now.After(expiry) {
					delete(s.claims, eventID)
				}
			}
			s.mu.Unlock()
		}
	}
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
