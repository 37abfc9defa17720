// Package dispatch decides what a free-text utterance means. It runs
// a strict ordered cascade of classifiers — wake phrase, fact
// directives, system intents, media and location requests, contextual
// continuation — and returns exactly one structured response. A stage
// either answers and short-circuits or falls through, possibly after a
// side effect on session state; collaborator failures inside a stage
// count as "no match" and never abort the cascade.
package dispatch

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/jarvis/internal/intent"
	"github.com/normanking/jarvis/internal/memory"
	"github.com/normanking/jarvis/internal/services"
	"github.com/normanking/jarvis/internal/session"
)

// Role is the caller's authentication level.
type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
)

// Request is one utterance plus its caller identity.
type Request struct {
	Text       string
	Role       Role
	UserID     string // empty for anonymous callers
	SessionID  string // empty disables session continuity
	Restricted bool
}

// Response is the single structured answer for a request.
type Response struct {
	Reply      string `json:"reply"`
	Intent     string `json:"intent"`
	Confidence int    `json:"confidence"`
}

// Intent tags carried on responses.
const (
	IntentWake            = "wake"
	IntentIdentity        = "user_identity"
	IntentNameUpdate      = "name_update"
	IntentFactUpdate      = "fact_update"
	IntentFactRemoval     = "fact_removal"
	IntentFactRecall      = "fact_recall"
	IntentMemoryRecall    = "memory_recall"
	IntentGuestRestricted = "guest_restricted"
	IntentLanguageSwitch  = "language_switch"
	IntentLanguageLock    = "language_lock"
	IntentLocationSet     = "location_set"
	IntentTime            = "time"
	IntentCurrentTime     = "current_time"
	IntentCurrentDate     = "current_date"
	IntentExit            = "exit"
	IntentSearchWeb       = "search_web"
	IntentPlayVideo       = "play_video"
	IntentSearchMaps      = "search_maps"
	IntentDistance        = "distance"
	IntentReasoning       = "context_reasoning"
	IntentContextAI       = "context_ai"
	IntentFallback        = "ai_fallback"
	IntentRestricted      = "restricted"
)

// Fixed replies.
const (
	ReplyWake         = "Yes. How can I help you?"
	ReplyGuestLimited = "Guest access limited. Please sign in."
	ReplyEmpty        = "I did not hear anything."
	ReplyRestricted   = "This session is restricted. Please sign in for that."
	ReplyPanic        = "I need a moment to think about that."
)

// wakePhrases answer with confidence 100 on exact match.
var wakePhrases = map[string]bool{
	"hi":         true,
	"hey":        true,
	"hello":      true,
	"hey jarvis": true,
	"jarvis":     true,
}

// Collaborator interfaces. Concrete implementations live in the
// system, services, and brain packages; tests substitute fakes.
type (
	// SystemExecutor performs host actions for system intents.
	SystemExecutor interface {
		Execute(ctx context.Context, intent string) (string, bool)
	}

	// MediaOpener launches search/video/map destinations.
	MediaOpener interface {
		Open(ctx context.Context, intent, query string) (string, bool)
	}

	// WeatherService answers free-text weather questions.
	WeatherService interface {
		Current(ctx context.Context, query string) (string, error)
	}

	// TimeService answers "time in <place>" questions.
	TimeService interface {
		TimeIn(ctx context.Context, place string) (string, error)
	}

	// Locator resolves the caller's own position.
	Locator interface {
		Current(ctx context.Context) (services.Place, error)
	}

	// Navigator answers driving-distance questions.
	Navigator interface {
		Distance(ctx context.Context, source, destination string) (string, error)
	}

	// Geocoder resolves place names.
	Geocoder interface {
		Geocode(ctx context.Context, place string) (services.Place, error)
	}

	// Brain is the generative fallback. It never fails: degraded
	// backends come back as fixed replies.
	Brain interface {
		Ask(ctx context.Context, userText, taskContext, factSummary string, history []session.Turn) string
	}
)

// Config wires a Dispatcher's collaborators.
type Config struct {
	Matcher     *intent.Matcher
	Learner     *memory.Learner
	Transcripts memory.TranscriptStore
	Sessions    *session.Store
	Brain       Brain
	System      SystemExecutor
	Media       MediaOpener
	Weather     WeatherService
	Clock       TimeService
	Nav         Navigator
	Locator     Locator
	Geo         Geocoder
	Logger      zerolog.Logger

	// CallTimeout bounds each collaborator call within a stage.
	CallTimeout time.Duration
}

// Dispatcher runs the precedence cascade.
type Dispatcher struct {
	cfg    Config
	stages []stage
}

type stage struct {
	name string
	fn   func(ctx context.Context, t *turn) *Response
}

// turn is the per-request working state shared across stages.
type turn struct {
	req  Request
	raw  string // trimmed, lowercased utterance
	sess *session.Context
}

// New builds a dispatcher. All collaborators are optional; a missing
// one simply makes its stages fall through.
func New(cfg Config) *Dispatcher {
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = 5 * time.Second
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewStore()
	}

	d := &Dispatcher{cfg: cfg}
	d.stages = []stage{
		{"language", d.stageLanguage},
		{"focus", d.stageFocus},
		{"name_update", d.stageNameUpdate},
		{"identity", d.stageIdentity},
		{"fact_update", d.stageFactUpdate},
		{"only_like", d.stageOnlyLike},
		{"fact_removal", d.stageFactRemoval},
		{"wake", d.stageWake},
		{"system_intent", d.stageSystemIntent},
		{"fact_recall", d.stageFactRecall},
		{"location_set", d.stageLocationSet},
		{"time_place", d.stageTimePlace},
		{"media", d.stageMedia},
		{"silent_learning", d.stageSilentLearning},
		{"reasoning", d.stageReasoning},
		{"context_ai", d.stageContextAI},
	}
	return d
}

// Dispatch classifies one utterance and returns exactly one response.
// It never panics outward; a stage panic degrades to the fixed
// fallback reply.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			d.cfg.Logger.Error().Interface("panic", r).Str("text", req.Text).
				Msg("dispatch panicked")
			resp = Response{Reply: ReplyPanic, Intent: IntentFallback, Confidence: 0}
		}
	}()

	t := &turn{
		req: req,
		raw: strings.ToLower(strings.TrimSpace(req.Text)),
	}

	if req.Restricted {
		return d.restrictedGate(ctx, t)
	}

	if t.raw == "" {
		return Response{Reply: ReplyEmpty, Intent: "", Confidence: 0}
	}

	if req.SessionID != "" {
		t.sess = d.cfg.Sessions.Get(req.SessionID)
	} else {
		t.sess = &session.Context{Topic: session.TopicNone}
	}
	t.sess.Lock()
	defer t.sess.Unlock()

	for _, s := range d.stages {
		if r := s.fn(ctx, t); r != nil {
			d.finish(ctx, t, *r)
			return *r
		}
	}

	r := d.stageFallback(ctx, t)
	d.finish(ctx, t, r)
	return r
}

// restrictedGate blocks identity, system, and media intents outright
// and sends everything else to the AI with no durable memory.
func (d *Dispatcher) restrictedGate(ctx context.Context, t *turn) Response {
	if t.raw == "" {
		return Response{Reply: ReplyEmpty, Intent: "", Confidence: 0}
	}

	blocked := intent.IsIdentityQuery(t.raw)
	if !blocked && d.cfg.Matcher != nil {
		if tag, _ := d.cfg.Matcher.Match(t.raw); intent.IsSystem(tag) {
			blocked = true
		}
	}
	if !blocked {
		if tag, _ := extractSearchQuery(t.raw); tag != "" && hasCommandVerb(t.raw) {
			blocked = true
		}
	}
	if blocked {
		return Response{Reply: ReplyRestricted, Intent: IntentRestricted, Confidence: 0}
	}

	reply := d.ask(ctx, t.req.Text, "", "", nil)
	return Response{Reply: reply, Intent: IntentFallback, Confidence: 0}
}

// finish records the exchange: in-session transcript always, durable
// history only for identified users.
func (d *Dispatcher) finish(ctx context.Context, t *turn, resp Response) {
	t.sess.Append("user", t.req.Text)
	t.sess.Append("jarvis", resp.Reply)

	if t.req.UserID == "" || d.cfg.Transcripts == nil {
		return
	}
	cctx, cancel := d.bounded(ctx)
	defer cancel()
	if err := d.cfg.Transcripts.Append(cctx, t.req.SessionID, t.req.UserID, "user", t.req.Text); err != nil {
		d.cfg.Logger.Warn().Err(err).Msg("persist user message failed")
		return
	}
	if err := d.cfg.Transcripts.Append(cctx, t.req.SessionID, t.req.UserID, "jarvis", resp.Reply); err != nil {
		d.cfg.Logger.Warn().Err(err).Msg("persist reply failed")
	}
}

// bounded derives the per-collaborator-call context.
func (d *Dispatcher) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.cfg.CallTimeout)
}

// ask calls the brain, tolerating a nil one.
func (d *Dispatcher) ask(ctx context.Context, text, taskContext, facts string, history []session.Turn) string {
	if d.cfg.Brain == nil {
		return "My AI brain is not configured."
	}
	return d.cfg.Brain.Ask(ctx, text, taskContext, facts, history)
}
