// Package brain bridges the dispatcher to a language model backend.
// It owns the assistant persona, folds known user facts and recent
// conversation into the prompt, and shields callers from backend
// failures with fixed fallback replies.
package brain

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/normanking/jarvis/internal/llm"
	"github.com/normanking/jarvis/internal/session"
)

// Persona is the system prompt sent with every request.
const Persona = "You are Jarvis, a calm and intelligent AI assistant. Reply briefly and clearly."

// Fixed replies for the three failure classes. Callers depend on these
// exact strings to recognize a failed fallback.
const (
	ReplyNotConfigured = "My AI brain is not configured."
	ReplyBackendError  = "I encountered an issue accessing my AI intelligence."
	ReplyUnusable      = "I need a moment to think about that."
)

// maxHistoryTurns bounds how much session transcript rides along in
// the prompt.
const maxHistoryTurns = 10

// badReplyMarkers disqualify a model reply from being surfaced.
var badReplyMarkers = []string{
	"i am not sure",
	"please clarify",
}

// Bridge asks the configured model for a reply.
type Bridge struct {
	provider llm.Provider
	timeout  time.Duration
	log      zerolog.Logger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithTimeout overrides the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(b *Bridge) { b.timeout = d }
}

// New builds a bridge over the given provider. A nil provider yields a
// bridge that always answers ReplyNotConfigured.
func New(provider llm.Provider, log zerolog.Logger, opts ...Option) *Bridge {
	b := &Bridge{
		provider: provider,
		timeout:  10 * time.Second,
		log:      log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Configured reports whether a usable provider is wired in.
func (b *Bridge) Configured() bool {
	return b.provider != nil && b.provider.Available()
}

// Ask sends the user's text to the model with persona, active task
// context, fact summary, and recent turns. It never returns an error:
// failures come back as one of the fixed replies.
func (b *Bridge) Ask(ctx context.Context, userText, taskContext, factSummary string, history []session.Turn) string {
	if !b.Configured() {
		return ReplyNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	req := &llm.ChatRequest{
		SystemPrompt: b.systemPrompt(taskContext, factSummary),
		Messages:     promptMessages(userText, history),
	}

	resp, err := b.provider.Chat(ctx, req)
	if err != nil {
		b.log.Warn().Err(err).Str("provider", b.provider.Name()).Msg("AI backend request failed")
		return ReplyBackendError
	}

	reply := strings.TrimSpace(resp.Content)
	if !usable(reply) {
		b.log.Debug().Str("reply", reply).Msg("discarding unusable AI reply")
		return ReplyUnusable
	}
	return reply
}

func (b *Bridge) systemPrompt(taskContext, factSummary string) string {
	prompt := Persona
	if taskContext != "" {
		prompt += "\n" + taskContext
	}
	if factSummary != "" {
		prompt += "\nKnown facts about the user: " + factSummary
	}
	return prompt
}

// promptMessages turns the trailing session transcript plus the current
// utterance into a chat message list.
func promptMessages(userText string, history []session.Turn) []llm.Message {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	msgs := make([]llm.Message, 0, len(history)+1)
	for _, turn := range history {
		role := "user"
		if turn.Role != "user" {
			role = "assistant"
		}
		msgs = append(msgs, llm.Message{Role: role, Content: turn.Text})
	}
	return append(msgs, llm.Message{Role: "user", Content: userText})
}

// usable rejects empty, too-short, or evasive model output.
func usable(reply string) bool {
	if utf8.RuneCountInString(reply) < 4 {
		return false
	}
	lower := strings.ToLower(reply)
	for _, marker := range badReplyMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}
