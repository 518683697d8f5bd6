package rowguard

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRefreshThresholdSeconds is how long before expiry a credential
// counts as stale.
const DefaultRefreshThresholdSeconds = 60

// RefreshGuard decides when a credential is stale and serializes its
// regeneration so that N concurrent callers collapse into one refresh.
//
// The fast path reads the expiry atomically and takes no lock. Stale callers
// contend on the mutex and re-check under it; whoever wins runs the refresh
// callback once, the rest observe the fresh expiry and return. A failed
// refresh leaves the expiry untouched, so the failure reaches every caller
// that saw the stale state and the next call retries instead of treating the
// failure as fresh.
type RefreshGuard struct {
	mu        sync.Mutex
	expiresAt atomic.Int64

	validitySeconds  int64
	thresholdSeconds int64
	refresh          func() error

	now func() int64
}

// NewRefreshGuard wires a guard around a refresh callback. The callback
// regenerates the credential (mint plus header patch); on success the guard
// records now+validitySeconds as the new expiry.
func NewRefreshGuard(validitySeconds, thresholdSeconds int, refresh func() error) *RefreshGuard {
	if thresholdSeconds <= 0 {
		thresholdSeconds = DefaultRefreshThresholdSeconds
	}
	return &RefreshGuard{
		validitySeconds:  int64(validitySeconds),
		thresholdSeconds: int64(thresholdSeconds),
		refresh:          refresh,
		now:              func() int64 { return time.Now().Unix() },
	}
}

// SetExpiry records the expiry of an externally minted credential (the
// initial mint at construction time).
func (g *RefreshGuard) SetExpiry(epochSeconds int64) {
	g.expiresAt.Store(epochSeconds)
}

// ExpiresAt returns the current expiry in epoch seconds.
func (g *RefreshGuard) ExpiresAt() int64 {
	return g.expiresAt.Load()
}

// Stale reports whether the credential's remaining validity has fallen at or
// below the refresh threshold.
func (g *RefreshGuard) Stale() bool {
	return g.stale(g.now())
}

func (g *RefreshGuard) stale(now int64) bool {
	return now+g.thresholdSeconds >= g.expiresAt.Load()
}

// EnsureValid returns immediately while the credential is fresh. Otherwise
// it acquires the lock, re-checks staleness (another caller may have
// refreshed while this one waited), and runs the refresh callback only if
// still needed.
func (g *RefreshGuard) EnsureValid() error {
	if !g.stale(g.now()) {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if !g.stale(now) {
		return nil
	}
	if err := g.refresh(); err != nil {
		return err
	}
	g.expiresAt.Store(now + g.validitySeconds)
	return nil
}
