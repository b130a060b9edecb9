package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sophialabs/sigtrace/internal/infrastructure/ports"
)

var _ ports.RateLimiter = (*ClientLimiterStore)(nil)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// ClientLimiterStore provides per-client token-bucket limiters for analysis
// submissions. All clients share one rate/burst configuration; each key
// (typically the client address) gets its own bucket.
type ClientLimiterStore struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	ttl      time.Duration
	stop     chan struct{}
}

// NewClientLimiterStore creates a store with the given per-key rate and
// burst, and a TTL for inactive limiters. It starts a background goroutine
// that evicts stale entries every TTL interval. Call Stop to terminate it.
func NewClientLimiterStore(r float64, burst int, ttl time.Duration) *ClientLimiterStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	s := &ClientLimiterStore{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(r),
		burst:    burst,
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	go s.evictLoop()
	return s
}

// Stop terminates the background eviction goroutine.
func (s *ClientLimiterStore) Stop() {
	close(s.stop)
}

func (s *ClientLimiterStore) evictLoop() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Evict()
		case <-s.stop:
			return
		}
	}
}

// Allow checks if a submission for the given key is within limits.
func (s *ClientLimiterStore) Allow(_ context.Context, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(s.rate, s.burst)}
		s.limiters[key] = entry
	}

	entry.lastUsed = time.Now()
	return entry.limiter.Allow()
}

// Evict removes inactive entries older than the TTL.
func (s *ClientLimiterStore) Evict() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	for key, entry := range s.limiters {
		if entry.lastUsed.Before(cutoff) {
			delete(s.limiters, key)
		}
	}
}

// Len returns the number of active limiters.
func (s *ClientLimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}
