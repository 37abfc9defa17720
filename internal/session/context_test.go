package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwitchLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"now verb", "now in python", "python"},
		{"convert verb", "convert it to java", "java"},
		{"rewrite verb", "rewrite that in golang", "golang"},
		{"language without verb", "i love python", ""},
		{"verb without language", "change the subject", ""},
		{"whole word only", "now in javascripting", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &Context{Topic: TopicNone}
			got := ctx.SwitchLanguage(tt.text)
			assert.Equal(t, tt.want, got)
			if tt.want != "" {
				assert.Equal(t, TopicCoding, ctx.Topic)
				assert.Equal(t, tt.want, ctx.Language)
				assert.False(t, ctx.LanguageLocked)
			}
		})
	}
}

func TestSwitchLanguageClearsLock(t *testing.T) {
	ctx := &Context{Topic: TopicCoding, Language: "java", LanguageLocked: true}

	got := ctx.SwitchLanguage("now in python")

	assert.Equal(t, "python", got)
	assert.False(t, ctx.LanguageLocked)
}

func TestLockLanguage(t *testing.T) {
	ctx := &Context{Topic: TopicNone}

	assert.Equal(t, "", ctx.LockLanguage("give me python code"))
	assert.False(t, ctx.LanguageLocked)

	got := ctx.LockLanguage("all code in python from now")

	assert.Equal(t, "python", got)
	assert.True(t, ctx.LanguageLocked)
	assert.Equal(t, TopicCoding, ctx.Topic)

	// Plural form works too.
	ctx2 := &Context{Topic: TopicNone}
	assert.Equal(t, "java", ctx2.LockLanguage("write all codes in java"))
}

func TestSwitchFocus(t *testing.T) {
	ctx := &Context{Topic: TopicNone}

	assert.Equal(t, "", ctx.SwitchFocus("tell me about the ocean"))
	assert.Equal(t, TopicNone, ctx.Topic)

	got := ctx.SwitchFocus("what about goa")

	assert.Equal(t, "goa", got)
	assert.Equal(t, "goa", ctx.Focus)
	assert.Equal(t, TopicTravel, ctx.Topic)

	// Multi-word destinations match as a phrase.
	assert.Equal(t, "new york", ctx.SwitchFocus("flights to new york"))
	assert.Equal(t, "new york", ctx.Focus)
}

func TestInferTopic(t *testing.T) {
	tests := []struct {
		text string
		want Topic
	}{
		{"there is a bug in my function", TopicCoding},
		{"plan a trip with good hotels", TopicTravel},
		{"which course should i study", TopicLearning},
		{"hello there", TopicNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InferTopic(tt.text), tt.text)
	}
}

func TestIsContinuation(t *testing.T) {
	ctx := &Context{Topic: TopicCoding}

	assert.True(t, ctx.IsContinuation("why though", TopicNone))
	assert.True(t, ctx.IsContinuation("and then what", TopicNone))
	assert.False(t, ctx.IsContinuation("and then what happens next", TopicNone))
	assert.False(t, ctx.IsContinuation("short", TopicTravel))

	idle := &Context{Topic: TopicNone}
	assert.False(t, idle.IsContinuation("why though", TopicNone))
}

func TestStoreGetCreatesLazily(t *testing.T) {
	store := NewStore()

	a := store.Get("alice")
	require.NotNil(t, a)
	assert.Equal(t, TopicNone, a.Topic)

	a.Topic = TopicTravel
	again := store.Get("alice")
	assert.Same(t, a, again)

	b := store.Get("bob")
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, store.Len())
}

func TestStoreEvictsBeyondCap(t *testing.T) {
	store := NewStore(WithMaxSessions(2), WithTTL(time.Minute))

	store.Get("a")
	store.Get("b")
	store.Get("c")

	assert.Equal(t, 2, store.Len())
}
