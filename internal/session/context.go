// Package session holds per-conversation mutable state: the active
// topic, the code language (optionally locked), the travel focus, and
// the in-session transcript buffer. Contexts are created lazily per
// session id and live only for the process lifetime.
package session

import (
	"regexp"
	"strings"
	"sync"
)

// Topic classifies what the conversation is currently about.
type Topic string

const (
	TopicNone     Topic = "none"
	TopicCoding   Topic = "coding"
	TopicTravel   Topic = "travel"
	TopicLearning Topic = "learning"
)

// Turn is one line of the in-session transcript buffer.
type Turn struct {
	Role string // "user" or "jarvis"
	Text string
}

// Context is the mutable state of one conversation. Callers must hold
// the embedded mutex across a full request so two in-flight requests
// never mutate the same session concurrently.
type Context struct {
	sync.Mutex

	Topic          Topic
	Language       string
	LanguageLocked bool
	Focus          string
	Messages       []Turn
}

// languages are the code-language tokens recognized by the switch and
// lock detectors.
var languages = []string{
	"python", "javascript", "typescript", "java", "golang", "go",
	"cpp", "csharp", "c", "rust", "ruby", "php", "kotlin", "swift",
}

// switchVerbs signal an explicit language change request.
var switchVerbs = []string{"change", "convert", "rewrite", "give", "now"}

var lockPhrase = regexp.MustCompile(`\ball codes?\b`)

// destinations is the travel gazetteer for focus switching.
var destinations = []string{
	"goa", "manali", "jaipur", "kerala", "ladakh", "shimla",
	"paris", "london", "tokyo", "dubai", "bali", "singapore",
	"new york", "rome", "barcelona",
}

// codingKeywords / travelKeywords / learningKeywords feed topic
// inference. Buckets are checked in that order; first hit wins.
var (
	codingKeywords = []string{
		"code", "coding", "program", "function", "bug", "compile",
		"script", "api", "loop", "variable", "class", "algorithm",
	}
	travelKeywords = []string{
		"trip", "travel", "flight", "hotel", "visit", "vacation",
		"beach", "itinerary", "destination", "tour",
	}
	learningKeywords = []string{
		"learn", "study", "course", "tutorial", "exam", "practice",
		"revision", "syllabus",
	}
)

// findLanguage returns the first language token present in text.
func findLanguage(text string) string {
	for _, lang := range languages {
		if containsWord(text, lang) {
			return lang
		}
	}
	return ""
}

// containsWord reports whether text contains w as a whole word.
func containsWord(text, w string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], w)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(w)
		leftOK := start == 0 || !isWordChar(text[start-1])
		rightOK := end == len(text) || !isWordChar(text[end])
		if leftOK && rightOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

// SwitchLanguage detects an explicit language change ("now in python",
// "convert it to java"). On a hit it sets topic=coding, updates the
// language, and clears any existing lock. Returns the language or "".
func (c *Context) SwitchLanguage(text string) string {
	text = strings.ToLower(text)

	lang := findLanguage(text)
	if lang == "" {
		return ""
	}

	for _, verb := range switchVerbs {
		if containsWord(text, verb) {
			c.Topic = TopicCoding
			c.Language = lang
			c.LanguageLocked = false
			return lang
		}
	}
	return ""
}

// LockLanguage detects "all code in <language>" and pins the session
// to that language until SwitchLanguage fires again.
func (c *Context) LockLanguage(text string) string {
	text = strings.ToLower(text)

	if !lockPhrase.MatchString(text) {
		return ""
	}
	lang := findLanguage(text)
	if lang == "" {
		return ""
	}

	c.Topic = TopicCoding
	c.Language = lang
	c.LanguageLocked = true
	return lang
}

// SwitchFocus looks the text up in the destination gazetteer. On a hit
// it remembers the destination as the session focus and moves the
// topic to travel. Returns the destination or "".
func (c *Context) SwitchFocus(text string) string {
	text = strings.ToLower(text)

	for _, dest := range destinations {
		if containsWord(text, dest) {
			c.Focus = dest
			c.Topic = TopicTravel
			return dest
		}
	}
	return ""
}

// InferTopic classifies text into a topic bucket without mutating the
// context. Returns TopicNone when no bucket matches.
func InferTopic(text string) Topic {
	text = strings.ToLower(text)

	for _, kw := range codingKeywords {
		if containsWord(text, kw) {
			return TopicCoding
		}
	}
	for _, kw := range travelKeywords {
		if containsWord(text, kw) {
			return TopicTravel
		}
	}
	for _, kw := range learningKeywords {
		if containsWord(text, kw) {
			return TopicLearning
		}
	}
	return TopicNone
}

// IsContinuation reports whether a short utterance with no newly
// detected topic should continue the current topic/focus instead of
// resetting it.
func (c *Context) IsContinuation(text string, detected Topic) bool {
	if c.Topic == "" || c.Topic == TopicNone {
		return false
	}
	if detected != TopicNone {
		return false
	}
	return len(strings.Fields(text)) <= 3
}

// Append adds a turn to the in-session transcript buffer.
func (c *Context) Append(role, text string) {
	c.Messages = append(c.Messages, Turn{Role: role, Text: text})
}
