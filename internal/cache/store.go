// Package cache provides a keyed store whose entries expire after a fixed TTL.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Store is a keyed TTL store safe for concurrent use.
//
// Concurrent misses on the same key may invoke the loader more than once.
// Loaders are expected to be pure functions of their key, so the last
// write wins without changing the observable result.
type Store[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	ttl     time.Duration
	now     func() time.Time

	lastPurge time.Time

	// OnLookup, when set, is called with true on a hit and false on a miss.
	OnLookup func(hit bool)
}

// New creates a store. A non-positive ttl disables expiry.
func New[K comparable, V any](ttl time.Duration) *Store[K, V] {
	return &Store[K, V]{
		entries: make(map[K]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the time source (for testing).
func (s *Store[K, V]) WithClock(now func() time.Time) *Store[K, V] {
	s.now = now
	return s
}

func (s *Store[K, V]) fresh(e entry[V]) bool {
	return s.ttl <= 0 || s.now().Sub(e.storedAt) < s.ttl
}

// Get returns the value for key if present and not expired.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	hit := ok && s.fresh(e)
	if s.OnLookup != nil {
		s.OnLookup(hit)
	}
	if !hit {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, resetting its age. At most once per TTL it
// also drops expired entries.
func (s *Store[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if s.ttl > 0 && now.Sub(s.lastPurge) >= s.ttl {
		s.purgeLocked()
		s.lastPurge = now
	}
	s.entries[key] = entry[V]{value: value, storedAt: now}
}

// GetOrLoad returns the cached value or calls load and caches its result.
// Errors are returned without caching.
func (s *Store[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	if v, ok := s.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	s.Set(key, v)
	return v, nil
}

// Delete removes key.
func (s *Store[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Purge drops expired entries and returns how many were removed.
func (s *Store[K, V]) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purgeLocked()
}

func (s *Store[K, V]) purgeLocked() int {
	removed := 0
	for k, e := range s.entries {
		if !s.fresh(e) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, including expired ones not yet purged.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
