package cart

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxSessions bounds the number of live stores in a registry.
	DefaultMaxSessions = 10000
	// DefaultSessionIdle is how long an untouched store stays live.
	DefaultSessionIdle = time.Hour
)

// Registry hands out one Store per storefront session, all sharing a
// persister. Stores are created lazily and hydrated on first use.
//
// Live stores are held in a bounded LRU with an idle expiry. Every mutation
// is persisted, so a dropped store loses nothing: the next Get for its
// session hydrates a fresh one from the persister.
type Registry struct {
	mu        sync.Mutex
	namespace string
	persister Persister
	stores    *expirable.LRU[string, *Store]
	logger    zerolog.Logger
}

// NewRegistry creates a registry whose stores are keyed under namespace,
// using DefaultMaxSessions and DefaultSessionIdle.
func NewRegistry(namespace string, persister Persister, logger zerolog.Logger) *Registry {
	return NewBoundedRegistry(namespace, persister, DefaultMaxSessions, DefaultSessionIdle, logger)
}

// NewBoundedRegistry creates a registry holding at most maxSessions live
// stores, each dropped after idle without a Get. An idle of zero or less
// disables expiry.
func NewBoundedRegistry(namespace string, persister Persister, maxSessions int, idle time.Duration, logger zerolog.Logger) *Registry {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if maxSessions < 1 {
		maxSessions = DefaultMaxSessions
	}

	r := &Registry{
		namespace: namespace,
		persister: persister,
		logger:    logger,
	}
	r.stores = expirable.NewLRU[string, *Store](maxSessions, r.onEvict, idle)
	return r
}

// Key returns the persistence key for a session. The empty session maps to
// the bare namespace.
func (r *Registry) Key(sessionID string) string {
	if sessionID == "" {
		return r.namespace
	}
	return r.namespace + ":" + sessionID
}

// Get returns the store for sessionID, creating and hydrating it when no
// live store exists. Each call restarts the store's idle timer.
func (r *Registry) Get(ctx context.Context, sessionID string) *Store {
	key := r.Key(sessionID)

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stores.Get(key)
	if !ok {
		s = NewStore(ctx, key, r.persister, r.logger)
	}
	r.stores.Add(key, s)
	return s
}

// Len returns the number of live stores.
func (r *Registry) Len() int {
	return r.stores.Len()
}

func (r *Registry) onEvict(key string, _ *Store) {
	r.logger.Debug().Str("cart", key).Msg("cart store released")
}
