// Package intent implements confidence-gated fuzzy matching of
// utterances against the registered command corpus.
package intent

import (
	"github.com/normanking/jarvis/internal/corpus"
	"github.com/normanking/jarvis/internal/fuzzy"
	"github.com/normanking/jarvis/internal/nlp"
)

// DefaultThreshold is the minimum composite score for a match to be
// accepted. Below it the matcher reports no intent but still surfaces
// the raw score for confidence reporting on blocked branches.
const DefaultThreshold = 70

// Weights of the composite score. Token-set similarity dominates so
// word order and filler words do not sink otherwise clear commands.
const (
	weightTokenSet = 0.5
	weightPartial  = 0.3
	weightWhole    = 0.2
)

// Matcher scores utterances against a read-only command corpus.
type Matcher struct {
	corpus    corpus.Corpus
	threshold int
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithThreshold overrides the acceptance threshold.
func WithThreshold(threshold int) Option {
	return func(m *Matcher) {
		m.threshold = threshold
	}
}

// NewMatcher creates a Matcher over the given corpus.
func NewMatcher(c corpus.Corpus, opts ...Option) *Matcher {
	m := &Matcher{
		corpus:    c,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match normalizes text and scores it against every registered pattern
// with composite(a, b) = 0.5*tokenSet + 0.3*partial + 0.2*whole.
// The strictly highest-scoring pattern wins; on a tie the earlier
// candidate is kept. The returned intent is empty when the best score
// is below the threshold; the score is returned either way.
func (m *Matcher) Match(text string) (string, int) {
	command := nlp.Normalize(text)

	var bestIntent string
	var bestScore float64

	for _, tag := range m.corpus.Intents() {
		for _, pattern := range m.corpus.Patterns(tag) {
			score := Composite(command, pattern)
			if score > bestScore {
				bestScore = score
				bestIntent = tag
			}
		}
	}

	if int(bestScore) < m.threshold {
		return "", int(bestScore)
	}
	return bestIntent, int(bestScore)
}

// Composite blends the three similarity measures into one 0..100 score.
func Composite(a, b string) float64 {
	return float64(fuzzy.TokenSetRatio(a, b))*weightTokenSet +
		float64(fuzzy.PartialRatio(a, b))*weightPartial +
		float64(fuzzy.Ratio(a, b))*weightWhole
}

// SystemIntents are the corpus tags that trigger side-effecting system
// actions. They are role-gated in the dispatcher.
var SystemIntents = map[string]struct{}{
	"open_chrome":    {},
	"open_vscode":    {},
	"shutdown":       {},
	"restart":        {},
	"volume_up":      {},
	"volume_down":    {},
	"mute_volume":    {},
	"screenshot":     {},
	"cpu_usage":      {},
	"ram_usage":      {},
	"gpu_usage":      {},
	"battery_status": {},
	"disk_space":     {},
	"network_status": {},
	"open_explorer":  {},
	"open_settings":  {},
}

// IsSystem reports whether tag names a system action.
func IsSystem(tag string) bool {
	_, ok := SystemIntents[tag]
	return ok
}
