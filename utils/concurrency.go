package utils

import (
	"context"
	"sync"
	"time"
)

// Throttle spaces successive calls to Wait by at least a fixed interval.
type Throttle struct {
	interval time.Duration
	mu       sync.Mutex
	last     time.Time
}

// NewThrottle creates a Throttle enforcing rateLimitMs between calls.
func NewThrottle(rateLimitMs int) *Throttle {
	return &Throttle{interval: time.Duration(rateLimitMs) * time.Millisecond}
}

// Wait blocks until the interval since the previous call has elapsed or ctx
// is done. The first call never blocks.
func (t *Throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.last.IsZero() {
		if remaining := t.interval - time.Since(t.last); remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	t.last = time.Now()
	return nil
}

// IDSet is a thread-safe set for tracking seen listing ids.
type IDSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewIDSet creates an empty IDSet.
func NewIDSet() *IDSet {
	return &IDSet{seen: make(map[string]struct{})}
}

// Add returns true if the id was newly added, false if already present.
func (s *IDSet) Add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[id]; exists {
		return false
	}
	s.seen[id] = struct{}{}
	return true
}

// Contains returns true if the id has already been seen.
func (s *IDSet) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[id]
	return exists
}

// Size returns the number of unique ids tracked.
func (s *IDSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
