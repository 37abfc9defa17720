package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/normanking/jarvis/internal/corpus"
)

func TestMatcher_ExactPattern(t *testing.T) {
	m := NewMatcher(corpus.Default())

	tag, score := m.Match("increase volume")
	assert.Equal(t, "volume_up", tag)
	assert.Equal(t, 100, score)
}

func TestMatcher_IdenticalInputBeatsLowerCandidates(t *testing.T) {
	c := corpus.Corpus{
		"volume_up":   {"increase volume"},
		"volume_down": {"decrease volume"},
	}
	m := NewMatcher(c)

	tag, score := m.Match("increase volume")
	assert.Equal(t, "volume_up", tag)
	assert.Equal(t, 100, score)
}

func TestMatcher_NormalizesBeforeScoring(t *testing.T) {
	m := NewMatcher(corpus.Default())

	// Stopwords and punctuation are stripped before scoring, so the
	// polite phrasing still lands on the exact pattern.
	tag, score := m.Match("Please can you tell me the current time?")
	assert.Equal(t, "current_time", tag)
	assert.Equal(t, 100, score)
}

func TestMatcher_Typo(t *testing.T) {
	m := NewMatcher(corpus.Default())

	tag, score := m.Match("open crome")
	assert.Equal(t, "open_chrome", tag)
	assert.GreaterOrEqual(t, score, DefaultThreshold)
}

func TestMatcher_NoMatchSurfacesRawScore(t *testing.T) {
	m := NewMatcher(corpus.Default())

	tag, score := m.Match("write me a poem about the sea")
	assert.Empty(t, tag)
	assert.Less(t, score, DefaultThreshold)
	assert.GreaterOrEqual(t, score, 0)
}

func TestMatcher_CustomThreshold(t *testing.T) {
	m := NewMatcher(corpus.Default(), WithThreshold(101))

	tag, _ := m.Match("increase volume")
	assert.Empty(t, tag)
}

func TestIsSystem(t *testing.T) {
	assert.True(t, IsSystem("volume_up"))
	assert.True(t, IsSystem("shutdown"))
	assert.False(t, IsSystem("current_time"))
	assert.False(t, IsSystem("wake"))
}

func TestIsIdentityQuery(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"what is my name", true},
		{"who am i", true},
		{"do you know my name?", true},
		{"open chrome", false},
		{"what is the weather", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsIdentityQuery(tt.input))
		})
	}
}
