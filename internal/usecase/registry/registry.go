// Package registry caches dataset handles by identifier. Opening a dataset
// loads registration and mapping state lazily, so handles are reused for a
// fixed TTL instead of being rebuilt per request.
package registry

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/statwatch/datasets/internal/usecase/dataset"
)

// DefaultTTL is how long a cached dataset handle stays valid.
const DefaultTTL = 120 * time.Minute

// Opener constructs dataset handles. Open fails with domain.ErrNotFound
// when no backing index exists.
type Opener interface {
	Open(ctx context.Context, datasetID string) (*dataset.Dataset, error)
}

type entry struct {
	ds      *dataset.Dataset
	expires time.Time
}

// Registry is a TTL cache of dataset handles with single-flight
// construction per key. Expiry is passive: an expired entry is rebuilt on
// next access, no background sweep runs. Construction failures are never
// cached, so a missing dataset can appear later without poisoning its key.
type Registry struct {
	opener Opener
	ttl    time.Duration
	now    func() time.Time

	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]entry
}

// New creates a registry. A non-positive ttl falls back to DefaultTTL.
func New(opener Opener, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		opener:  opener,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// WithClock replaces the time source, for tests.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Get returns the cached dataset handle for id, constructing it when the
// cache misses or the entry expired. Concurrent callers for the same key
// share one construction; different keys proceed independently.
func (r *Registry) Get(ctx context.Context, id string) (*dataset.Dataset, error) {
	id = strings.ToLower(strings.TrimSpace(id))

	if ds, ok := r.cached(id); ok {
		return ds, nil
	}

	v, err, _ := r.group.Do(id, func() (any, error) {
		// A concurrent winner may have populated the entry between the
		// cache check and joining the flight.
		if ds, ok := r.cached(id); ok {
			return ds, nil
		}

		ds, err := r.opener.Open(ctx, id)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.entries[id] = entry{ds: ds, expires: r.now().Add(r.ttl)}
		r.mu.Unlock()
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dataset.Dataset), nil
}

// Invalidate drops the cached handle for id, forcing reconstruction on
// next access. Used after registration changes.
func (r *Registry) Invalidate(id string) {
	id = strings.ToLower(strings.TrimSpace(id))
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

func (r *Registry) cached(id string) (*dataset.Dataset, bool) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok || r.now().After(e.expires) {
		return nil, false
	}
	return e.ds, true
}
