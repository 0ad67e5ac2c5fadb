// internal/storefront/registry.go
package storefront

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type entry struct {
	mu       sync.Mutex
	sf       *Storefront
	loaded   bool
	lastUsed time.Time
}

// Registry owns one Storefront per owner id and runs at most one operation
// per owner at a time
type Registry struct {
	mu      sync.Mutex
	deps    Deps
	entries map[string]*entry
	now     func() time.Time
}

// NewRegistry creates an empty registry
func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:    deps,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// With runs fn against the owner's storefront while holding the owner's lock.
// The storefront is loaded from storage on first use.
func (r *Registry) With(ctx context.Context, id string, fn func(*Storefront) error) error {
	e := r.acquire(id)
	defer e.mu.Unlock()

	if !e.loaded {
		if err := e.sf.Load(ctx); err != nil {
			return fmt.Errorf("failed to load visitor state: %w", err)
		}
		e.loaded = true
	}
	e.lastUsed = r.now()

	return fn(e.sf)
}

// acquire returns the owner's entry with its lock held
func (r *Registry) acquire(id string) *entry {
	for {
		r.mu.Lock()
		e, ok := r.entries[id]
		if !ok {
			e = &entry{sf: New(id, r.deps), lastUsed: r.now()}
			r.entries[id] = e
		}
		r.mu.Unlock()

		e.mu.Lock()

		// Evict may have dropped e while we waited for its lock
		r.mu.Lock()
		current := r.entries[id]
		r.mu.Unlock()
		if current == e {
			return e
		}
		e.mu.Unlock()
	}
}

// Evict drops storefronts idle for longer than idle. Their state stays in
// storage and is loaded again on next use. Busy entries are skipped.
func (r *Registry) Evict(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	evicted := 0
	for id, e := range r.entries {
		if !e.mu.TryLock() {
			continue
		}
		if e.lastUsed.Before(cutoff) {
			delete(r.entries, id)
			evicted++
		}
		e.mu.Unlock()
	}
	return evicted
}

// Len returns the number of live storefronts
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// RunJanitor evicts idle storefronts every interval until ctx is done
func (r *Registry) RunJanitor(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(idle); n > 0 && r.deps.Log != nil {
				r.deps.Log.WithField("evicted", n).Debug("Evicted idle visitors")
			}
		}
	}
}
