package agent

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Registry maps session ids to their orchestrator, creating one on first use.
// At most one orchestrator per session id is registered at any time.
type Registry struct {
	cache *cache.Cache
	locks *KeyedMutex
	deps  Dependencies
}

// NewRegistry builds a registry whose entries are dropped ttl after creation.
// Dropping an entry loses nothing; the next Resolve rebuilds it from deps.
func NewRegistry(deps Dependencies, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &Registry{
		cache: cache.New(ttl, 10*time.Minute),
		locks: NewKeyedMutex(),
		deps:  deps,
	}
}

// Resolve returns the registered orchestrator for sessionID or registers a new
// one. When two callers race, the loser's instance is dropped and both get
// the winner's.
func (r *Registry) Resolve(sessionID string) *Orchestrator {
	for {
		if x, found := r.cache.Get(sessionID); found {
			return x.(*Orchestrator)
		}

		o := newOrchestrator(sessionID, r.deps, r.locks)
		if err := r.cache.Add(sessionID, o, cache.DefaultExpiration); err == nil {
			return o
		}
		// someone else registered first; the winner may have expired already
	}
}

// Release forgets the session's orchestrator. History is not touched.
func (r *Registry) Release(sessionID string) {
	r.cache.Delete(sessionID)
}

// Lookup reports whether an orchestrator is currently registered.
func (r *Registry) Lookup(sessionID string) (*Orchestrator, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*Orchestrator), true
	}
	return nil, false
}

func (r *Registry) Len() int {
	return r.cache.ItemCount()
}
