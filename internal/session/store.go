package session

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultMaxSessions bounds how many live conversations the store
	// keeps before the least recently used is evicted.
	DefaultMaxSessions = 1024

	// DefaultTTL expires idle conversations.
	DefaultTTL = 30 * time.Minute
)

// Store hands out per-session Contexts, creating them lazily. Eviction
// is LRU with a TTL so abandoned sessions do not accumulate.
type Store struct {
	mu  sync.Mutex
	lru *expirable.LRU[string, *Context]
}

// StoreOption configures a Store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	maxSessions int
	ttl         time.Duration
}

// WithMaxSessions overrides the session cap.
func WithMaxSessions(n int) StoreOption {
	return func(c *storeConfig) { c.maxSessions = n }
}

// WithTTL overrides the idle expiry.
func WithTTL(d time.Duration) StoreOption {
	return func(c *storeConfig) { c.ttl = d }
}

// NewStore builds a session store with the given options.
func NewStore(opts ...StoreOption) *Store {
	cfg := storeConfig{
		maxSessions: DefaultMaxSessions,
		ttl:         DefaultTTL,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store{
		lru: expirable.NewLRU[string, *Context](cfg.maxSessions, nil, cfg.ttl),
	}
}

// Get returns the context for a session id, creating a fresh one on
// first sight. The returned pointer stays valid even after eviction;
// eviction only means a later Get starts a fresh context.
func (s *Store) Get(sessionID string) *Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx, ok := s.lru.Get(sessionID); ok {
		return ctx
	}
	ctx := &Context{Topic: TopicNone}
	s.lru.Add(sessionID, ctx)
	return ctx
}

// Len reports how many sessions are currently live.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}
