package memory

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/normanking/jarvis/internal/fuzzy"
)

// Action describes what an upsert did to the stored fact.
type Action string

const (
	ActionAdded     Action = "added"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
)

// LearnResult reports the fact a learning pass extracted.
type LearnResult struct {
	Key    string
	Values []string // single element for scalar keys
	Action Action
}

// Value renders the learned value for replies.
func (r *LearnResult) Value() string {
	return strings.Join(r.Values, ", ")
}

// queryThreshold is the minimum partial-similarity for a fact-question
// phrase to be considered a hit.
const queryThreshold = 80

var (
	explicitUpdatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`change my (\w+) to (.+)`),
		regexp.MustCompile(`update my (\w+) to (.+)`),
	}

	onlyLikePattern = regexp.MustCompile(`i only like (.+)`)

	removalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`i dont like (.+) anymore`),
		regexp.MustCompile(`i don't like (.+) anymore`),
		regexp.MustCompile(`remove (.+?)(?: anymore)?$`),
		regexp.MustCompile(`delete (.+?)(?: anymore)?$`),
	}
)

// Learner extracts facts from utterances and applies them to a Store.
// All read-modify-write sequences are serialized per user so concurrent
// requests for the same user cannot lose updates.
type Learner struct {
	store Store
	log   zerolog.Logger

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

// NewLearner creates a Learner over the given store.
func NewLearner(store Store, log zerolog.Logger) *Learner {
	return &Learner{
		store: store,
		log:   log.With().Str("component", "memory").Logger(),
		users: make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex serializing fact writes for one user.
func (l *Learner) userLock(user string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.users[user]
	if !ok {
		m = &sync.Mutex{}
		l.users[user] = m
	}
	return m
}

// Learn runs the ordered rule table against text. The first matching
// rule wins: list-typed captures are split into discrete items and
// upserted individually, scalar captures are normalized and upserted as
// one value. Returns nil when no rule matches.
func (l *Learner) Learn(ctx context.Context, user, text string) (*LearnResult, error) {
	text = strings.TrimSpace(strings.ToLower(text))

	for _, rule := range learnRules {
		m := rule.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		if IsListKey(rule.Key) {
			items := SplitPreferences(m[1])
			if len(items) == 0 {
				return nil, nil
			}
			for _, item := range items {
				if _, err := l.upsert(ctx, user, rule.Key, item); err != nil {
					return nil, err
				}
			}
			return &LearnResult{Key: rule.Key, Values: items, Action: ActionAdded}, nil
		}

		clean := NormalizeValue(m[1])
		if clean == "" {
			return nil, nil
		}
		action, err := l.upsert(ctx, user, rule.Key, clean)
		if err != nil {
			return nil, err
		}
		return &LearnResult{Key: rule.Key, Values: []string{clean}, Action: action}, nil
	}

	return nil, nil
}

// upsert applies one value: insert-if-absent for list keys, overwrite
// for scalar keys.
func (l *Learner) upsert(ctx context.Context, user, key, value string) (Action, error) {
	lock := l.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	current, err := l.store.Get(ctx, user, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("get fact %s: %w", key, err)
	}

	if IsListKey(key) {
		for _, existing := range current.List {
			if existing == value {
				return ActionUnchanged, nil
			}
		}
		next := Value{List: append(current.List, value)}
		if err := l.store.Set(ctx, user, key, next); err != nil {
			return "", fmt.Errorf("set fact %s: %w", key, err)
		}
		return ActionAdded, nil
	}

	if err == nil && current.Scalar == value {
		return ActionUnchanged, nil
	}
	if err := l.store.Set(ctx, user, key, Value{Scalar: value}); err != nil {
		return "", fmt.Errorf("set fact %s: %w", key, err)
	}
	if errors.Is(err, ErrNotFound) {
		return ActionAdded, nil
	}
	return ActionUpdated, nil
}

// DetectExplicitUpdate handles "change/update my <key> to <value>",
// bypassing the rule table and writing directly to the named key.
// Returns nil when the directive is absent.
func (l *Learner) DetectExplicitUpdate(ctx context.Context, user, text string) (*LearnResult, error) {
	text = strings.TrimSpace(strings.ToLower(text))

	for _, p := range explicitUpdatePatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		key := m[1]
		value := NormalizeValue(m[2])
		if value == "" {
			return nil, nil
		}
		action, err := l.upsert(ctx, user, key, value)
		if err != nil {
			return nil, err
		}
		return &LearnResult{Key: key, Values: []string{value}, Action: action}, nil
	}

	return nil, nil
}

// DetectOnlyLike handles "i only like <value>": the entire likes list
// is replaced with the single normalized item. Destructive by design.
func (l *Learner) DetectOnlyLike(ctx context.Context, user, text string) (string, error) {
	m := onlyLikePattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return "", nil
	}

	value := NormalizeValue(m[1])
	if value == "" {
		return "", nil
	}

	lock := l.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	if err := l.store.Set(ctx, user, "likes", Value{List: []string{value}}); err != nil {
		return "", fmt.Errorf("replace likes: %w", err)
	}
	return value, nil
}

// RemovalResult names the list a removal directive matched.
type RemovalResult struct {
	Key   string
	Value string
}

// DetectRemoval handles "remove/delete <value>" and "i don't like
// <value> anymore". The likes list is tried first, then dislikes.
// Returns nil when the directive is absent or the value is on neither
// list; a miss mutates nothing.
func (l *Learner) DetectRemoval(ctx context.Context, user, text string) (*RemovalResult, error) {
	text = strings.TrimSpace(strings.ToLower(text))

	for _, p := range removalPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		value := NormalizeValue(m[1])
		if value == "" {
			return nil, nil
		}

		for _, key := range []string{"likes", "dislikes"} {
			removed, err := l.removeFromList(ctx, user, key, value)
			if err != nil {
				return nil, err
			}
			if removed {
				return &RemovalResult{Key: key, Value: value}, nil
			}
		}
		return nil, nil
	}

	return nil, nil
}

// removeFromList removes value from the list fact; removing the last
// item deletes the key entirely.
func (l *Learner) removeFromList(ctx context.Context, user, key, value string) (bool, error) {
	lock := l.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	current, err := l.store.Get(ctx, user, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get fact %s: %w", key, err)
	}
	if !current.IsList() {
		return false, nil
	}

	kept := make([]string, 0, len(current.List))
	found := false
	for _, item := range current.List {
		if item == value && !found {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return false, nil
	}

	if len(kept) == 0 {
		if err := l.store.Delete(ctx, user, key); err != nil {
			return false, fmt.Errorf("delete fact %s: %w", key, err)
		}
		return true, nil
	}
	if err := l.store.Set(ctx, user, key, Value{List: kept}); err != nil {
		return false, fmt.Errorf("set fact %s: %w", key, err)
	}
	return true, nil
}

// DetectQuery fuzzy-matches text against the canonical fact-question
// phrasings and returns the best fact key, or "" when nothing clears
// the threshold. Strictly-greater comparison keeps the first key on a
// tie.
func DetectQuery(text string) string {
	text = strings.TrimSpace(strings.ToLower(text))

	bestScore := 0
	bestKey := ""
	for _, entry := range queryPhrases {
		for _, phrase := range entry.Phrases {
			score := fuzzy.PartialRatio(text, phrase)
			if score >= queryThreshold && score > bestScore {
				bestScore = score
				bestKey = entry.Key
			}
		}
	}
	return bestKey
}

// Get returns the stored value for key, or ErrNotFound.
func (l *Learner) Get(ctx context.Context, user, key string) (Value, error) {
	return l.store.Get(ctx, user, key)
}

// SetFact normalizes value and upserts it under key.
func (l *Learner) SetFact(ctx context.Context, user, key, value string) (Action, error) {
	clean := NormalizeValue(value)
	if clean == "" {
		return ActionUnchanged, nil
	}
	return l.upsert(ctx, user, key, clean)
}

// SetScalar writes value under key exactly as given, without the
// filler-token and alphabetic-only cleanup of SetFact. Used for values
// that carry punctuation, such as geocoded place names.
func (l *Learner) SetScalar(ctx context.Context, user, key, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	lock := l.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	if err := l.store.Set(ctx, user, key, Value{Scalar: value}); err != nil {
		return fmt.Errorf("set fact %s: %w", key, err)
	}
	return nil
}

// Summary renders all of a user's facts as "key: value; key: value".
// The string is read-only context for prompt building; consumers must
// never parse it back.
func (l *Learner) Summary(ctx context.Context, user string) (string, error) {
	facts, err := l.store.List(ctx, user)
	if err != nil {
		return "", fmt.Errorf("list facts: %w", err)
	}
	if len(facts) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(facts))
	for _, key := range sortedKeys(facts) {
		parts = append(parts, fmt.Sprintf("%s: %s", key, facts[key]))
	}
	return strings.Join(parts, "; "), nil
}
