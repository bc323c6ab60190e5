// Package ratelimit provides per-client rate limiting for the MCP endpoint.
// The OAuth discovery and flow endpoints are deliberately not limited.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config defines the rate limiting configuration.
type Config struct {
	RPS             float64       // Requests per second per client
	Burst           int           // Burst size per client
	CleanupInterval time.Duration // How often to clean up idle limiters
}

// DefaultConfig provides sensible defaults for a single-user adapter.
var DefaultConfig = Config{
	RPS:             50,
	Burst:           100,
	CleanupInterval: time.Hour,
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// Limiter manages per-client token buckets keyed by an opaque client key
// (typically the remote address).
type Limiter struct {
	entries map[string]*limiterEntry
	mu      sync.Mutex
	config  Config

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewLimiter creates a limiter and starts its background cleanup goroutine.
func NewLimiter(config Config) *Limiter {
	l := &Limiter{
		entries: make(map[string]*limiterEntry),
		config:  config,
		stopCh:  make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// Allow reports whether a request from the given client key is within limits.
func (l *Limiter) Allow(key string) bool {
	return l.Get(key).Allow()
}

// Get returns the token bucket for the given client, creating one if needed.
func (l *Limiter) Get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if ok {
		entry.lastUsed = time.Now()
		return entry.limiter
	}

	limiter := rate.NewLimiter(rate.Limit(l.config.RPS), l.config.Burst)
	l.entries[key] = &limiterEntry{
		limiter:  limiter,
		lastUsed: time.Now(),
	}
	return limiter
}

// Cleanup removes buckets idle for longer than the cleanup interval.
func (l *Limiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-l.config.CleanupInterval)
	for key, entry := range l.entries {
		if entry.lastUsed.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}

func (l *Limiter) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Cleanup()
		case <-l.stopCh:
			return
		}
	}
}

// Stop stops the cleanup goroutine and waits for it to finish.
func (l *Limiter) Stop() {
	close(l.stopCh)
	l.wg.Wait()
}

// Len returns the number of tracked clients, for tests and monitoring.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
