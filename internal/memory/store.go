// Package memory implements per-user fact learning and storage: a
// regex rule table extracts (key, value) facts from utterances, values
// are normalized and deduplicated, and facts are persisted through a
// pluggable Store. The package also holds the conversation transcript
// store used for past-answer recall.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned when a user has no value for a fact key.
var ErrNotFound = errors.New("fact not found")

// ListKeys are the fact keys that hold deduplicated, insertion-ordered
// value lists. Every other key holds exactly one scalar value.
var ListKeys = map[string]struct{}{
	"likes":    {},
	"dislikes": {},
	"skills":   {},
	"tools":    {},
}

// IsListKey reports whether key is list-typed.
func IsListKey(key string) bool {
	_, ok := ListKeys[key]
	return ok
}

// Value is a fact value: either a single scalar or an ordered list.
type Value struct {
	Scalar string   `json:"scalar,omitempty"`
	List   []string `json:"list,omitempty"`
}

// IsList reports whether the value holds a list.
func (v Value) IsList() bool {
	return v.List != nil
}

// String renders the value for replies and summaries.
func (v Value) String() string {
	if v.IsList() {
		return strings.Join(v.List, ", ")
	}
	return v.Scalar
}

// Store is the per-user fact document accessor. Implementations must
// tolerate concurrent calls; read-modify-write serialization is the
// Learner's job.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, user, key string) (Value, error)

	// Set writes the value for key, replacing any previous value.
	Set(ctx context.Context, user, key string, value Value) error

	// Delete removes the key entirely.
	Delete(ctx context.Context, user, key string) error

	// List returns all facts for the user.
	List(ctx context.Context, user string) (map[string]Value, error)
}

// InMemoryStore is a map-backed Store for tests and ephemeral runs.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[string]map[string]Value
}

// NewInMemoryStore creates an empty in-memory fact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{users: make(map[string]map[string]Value)}
}

func (s *InMemoryStore) Get(_ context.Context, user, key string) (Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.users[user][key]
	if !ok {
		return Value{}, ErrNotFound
	}
	if v.IsList() {
		v.List = append([]string(nil), v.List...)
	}
	return v, nil
}

func (s *InMemoryStore) Set(_ context.Context, user, key string, value Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.users[user] == nil {
		s.users[user] = make(map[string]Value)
	}
	if value.IsList() {
		value.List = append([]string(nil), value.List...)
	}
	s.users[user][key] = value
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, user, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users[user], key)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, user string) (map[string]Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Value, len(s.users[user]))
	for k, v := range s.users[user] {
		if v.IsList() {
			v.List = append([]string(nil), v.List...)
		}
		out[k] = v
	}
	return out, nil
}

// sortedKeys returns the fact keys in deterministic order for rendering.
func sortedKeys(facts map[string]Value) []string {
	keys := make([]string, 0, len(facts))
	for k := range facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
