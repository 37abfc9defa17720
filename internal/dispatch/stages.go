package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/normanking/jarvis/internal/intent"
	"github.com/normanking/jarvis/internal/memory"
	"github.com/normanking/jarvis/internal/services"
	"github.com/normanking/jarvis/internal/session"
)

// Keyword triggers for the cheap-reasoning stage.
var (
	weatherKeywords = map[string]bool{"hot": true, "cold": true, "temperature": true, "weather": true}
	cpuKeywords     = map[string]bool{"slow": true, "lag": true, "loud": true, "fan": true, "noise": true, "hang": true, "performance": true}
)

// stageLanguage handles "all code in python" locks and "now in java"
// switches. Lock is checked first so a lock phrase containing a switch
// verb still pins the language.
func (d *Dispatcher) stageLanguage(_ context.Context, t *turn) *Response {
	if lang := t.sess.LockLanguage(t.raw); lang != "" {
		return &Response{
			Reply:      fmt.Sprintf("Understood. All code will be in %s from now on.", titleWord(lang)),
			Intent:     IntentLanguageLock,
			Confidence: 100,
		}
	}
	if lang := t.sess.SwitchLanguage(t.raw); lang != "" {
		return &Response{
			Reply:      fmt.Sprintf("Switching to %s.", titleWord(lang)),
			Intent:     IntentLanguageSwitch,
			Confidence: 100,
		}
	}
	return nil
}

// stageFocus remembers a mentioned destination and refreshes the
// session topic. Side effect only; the cascade continues so a later
// stage can actually answer.
func (d *Dispatcher) stageFocus(_ context.Context, t *turn) *Response {
	t.sess.SwitchFocus(t.raw)
	if topic := session.InferTopic(t.raw); topic != session.TopicNone {
		t.sess.Topic = topic
	}
	return nil
}

// stageNameUpdate handles "my name is X".
func (d *Dispatcher) stageNameUpdate(ctx context.Context, t *turn) *Response {
	m := nameUpdatePattern.FindStringSubmatch(t.raw)
	if m == nil {
		return nil
	}
	name := memory.NormalizeValue(m[1])
	if name == "" {
		return nil
	}

	if t.req.UserID != "" && d.cfg.Learner != nil {
		cctx, cancel := d.bounded(ctx)
		defer cancel()
		if _, err := d.cfg.Learner.SetFact(cctx, t.req.UserID, "name", name); err != nil {
			d.cfg.Logger.Warn().Err(err).Msg("store name failed")
			return nil
		}
		return &Response{
			Reply:      fmt.Sprintf("Nice to meet you, %s. I will remember that.", name),
			Intent:     IntentNameUpdate,
			Confidence: 100,
		}
	}
	return &Response{
		Reply:      fmt.Sprintf("Nice to meet you, %s.", name),
		Intent:     IntentNameUpdate,
		Confidence: 100,
	}
}

// stageIdentity answers "who am i" style questions.
func (d *Dispatcher) stageIdentity(ctx context.Context, t *turn) *Response {
	if !intent.IsIdentityQuery(t.raw) {
		return nil
	}
	resp := &Response{Intent: IntentIdentity, Confidence: 100}

	if t.req.UserID == "" {
		resp.Reply = "You are currently using guest access."
		return resp
	}
	if d.cfg.Learner == nil {
		resp.Reply = "I don't know your name yet."
		return resp
	}

	cctx, cancel := d.bounded(ctx)
	defer cancel()
	val, err := d.cfg.Learner.Get(cctx, t.req.UserID, "name")
	if err != nil {
		resp.Reply = "I don't know your name yet."
		return resp
	}
	resp.Reply = fmt.Sprintf("You are %s.", val.String())
	return resp
}

// stageFactUpdate handles "change/update my K to V".
func (d *Dispatcher) stageFactUpdate(ctx context.Context, t *turn) *Response {
	if t.req.UserID == "" || d.cfg.Learner == nil {
		return nil
	}
	cctx, cancel := d.bounded(ctx)
	defer cancel()
	res, err := d.cfg.Learner.DetectExplicitUpdate(cctx, t.req.UserID, t.raw)
	if err != nil {
		d.cfg.Logger.Warn().Err(err).Msg("explicit fact update failed")
		return nil
	}
	if res == nil {
		return nil
	}
	return &Response{
		Reply:      fmt.Sprintf("Updated your %s to %s.", keyLabel(res.Key), res.Value()),
		Intent:     IntentFactUpdate,
		Confidence: 100,
	}
}

// stageOnlyLike handles the destructive "i only like X" directive.
func (d *Dispatcher) stageOnlyLike(ctx context.Context, t *turn) *Response {
	if t.req.UserID == "" || d.cfg.Learner == nil {
		return nil
	}
	cctx, cancel := d.bounded(ctx)
	defer cancel()
	value, err := d.cfg.Learner.DetectOnlyLike(cctx, t.req.UserID, t.raw)
	if err != nil {
		d.cfg.Logger.Warn().Err(err).Msg("only-like replace failed")
		return nil
	}
	if value == "" {
		return nil
	}
	return &Response{
		Reply:      fmt.Sprintf("Noted. You only like %s.", value),
		Intent:     IntentFactUpdate,
		Confidence: 100,
	}
}

// stageFactRemoval handles removal directives; an absent value falls
// through untouched.
func (d *Dispatcher) stageFactRemoval(ctx context.Context, t *turn) *Response {
	if t.req.UserID == "" || d.cfg.Learner == nil {
		return nil
	}
	cctx, cancel := d.bounded(ctx)
	defer cancel()
	res, err := d.cfg.Learner.DetectRemoval(cctx, t.req.UserID, t.raw)
	if err != nil {
		d.cfg.Logger.Warn().Err(err).Msg("fact removal failed")
		return nil
	}
	if res == nil {
		return nil
	}
	return &Response{
		Reply:      fmt.Sprintf("Okay, I removed %s from your %s.", res.Value, keyLabel(res.Key)),
		Intent:     IntentFactRemoval,
		Confidence: 100,
	}
}

// stageWake answers greeting phrases by exact membership.
func (d *Dispatcher) stageWake(_ context.Context, t *turn) *Response {
	if !wakePhrases[t.raw] {
		return nil
	}
	return &Response{Reply: ReplyWake, Intent: IntentWake, Confidence: 100}
}

// stageSystemIntent resolves the utterance against the command corpus.
// System actions are role-gated; clock/date intents answer locally.
func (d *Dispatcher) stageSystemIntent(ctx context.Context, t *turn) *Response {
	if d.cfg.Matcher == nil {
		return nil
	}
	tag, score := d.cfg.Matcher.Match(t.raw)
	if tag == "" {
		return nil
	}

	if intent.IsSystem(tag) {
		if t.req.Role != RoleUser {
			return &Response{Reply: ReplyGuestLimited, Intent: IntentGuestRestricted, Confidence: score}
		}
		if d.cfg.System == nil {
			return nil
		}
		cctx, cancel := d.bounded(ctx)
		defer cancel()
		reply, handled := d.cfg.System.Execute(cctx, tag)
		if !handled {
			return nil
		}
		return &Response{Reply: reply, Intent: tag, Confidence: score}
	}

	switch tag {
	case IntentCurrentTime:
		return &Response{
			Reply:      time.Now().Format("The time is 3:04 PM."),
			Intent:     tag,
			Confidence: score,
		}
	case IntentCurrentDate:
		return &Response{
			Reply:      time.Now().Format("Today is January 02, 2006."),
			Intent:     tag,
			Confidence: score,
		}
	case IntentExit:
		return &Response{Reply: "Shutting down. Goodbye.", Intent: tag, Confidence: score}
	}
	return nil
}

// stageFactRecall answers "what do i like" style questions from stored
// facts, then falls back to confidence-scored recall of past answers.
func (d *Dispatcher) stageFactRecall(ctx context.Context, t *turn) *Response {
	if t.req.UserID == "" {
		return nil
	}

	if key := memory.DetectQuery(t.raw); key != "" && d.cfg.Learner != nil {
		cctx, cancel := d.bounded(ctx)
		defer cancel()
		val, err := d.cfg.Learner.Get(cctx, t.req.UserID, key)
		if err == nil {
			verb := "is"
			if val.IsList() {
				verb = "are"
			}
			return &Response{
				Reply:      fmt.Sprintf("Your %s %s %s.", keyLabel(key), verb, val.String()),
				Intent:     IntentFactRecall,
				Confidence: 100,
			}
		}
		if !errors.Is(err, memory.ErrNotFound) {
			d.cfg.Logger.Warn().Err(err).Str("key", key).Msg("fact recall failed")
		}
	}

	if d.cfg.Transcripts == nil {
		return nil
	}
	cctx, cancel := d.bounded(ctx)
	defer cancel()
	messages, err := d.cfg.Transcripts.Load(cctx, t.req.UserID)
	if err != nil {
		d.cfg.Logger.Warn().Err(err).Msg("transcript load failed")
		return nil
	}
	if answer, score := memory.FindPastAnswer(messages, t.raw, memory.RecallThreshold); answer != "" {
		return &Response{Reply: answer, Intent: IntentMemoryRecall, Confidence: score}
	}
	return nil
}

// stageLocationSet handles "set my location to X". Role-gated: the
// default location is a durable per-user fact.
func (d *Dispatcher) stageLocationSet(ctx context.Context, t *turn) *Response {
	place := extractLocationSet(t.raw)
	if place == "" {
		return nil
	}
	if t.req.Role != RoleUser || t.req.UserID == "" {
		return &Response{Reply: ReplyGuestLimited, Intent: IntentGuestRestricted, Confidence: 100}
	}

	cctx, cancel := d.bounded(ctx)
	defer cancel()

	name := place
	if d.cfg.Geo != nil {
		if resolved, err := d.cfg.Geo.Geocode(cctx, place); err == nil {
			name = resolved.Name
		}
	}
	if d.cfg.Learner != nil {
		// Persist exactly what the confirmation names so later map
		// queries seed the same place the user was told about.
		if err := d.cfg.Learner.SetScalar(cctx, t.req.UserID, "default_location", name); err != nil {
			d.cfg.Logger.Warn().Err(err).Msg("store default location failed")
			return nil
		}
	}
	return &Response{
		Reply:      fmt.Sprintf("Location set to %s.", name),
		Intent:     IntentLocationSet,
		Confidence: 100,
	}
}

// stageTimePlace answers "time in <place>".
func (d *Dispatcher) stageTimePlace(ctx context.Context, t *turn) *Response {
	place := extractTimePlace(t.raw)
	if place == "" || d.cfg.Clock == nil {
		return nil
	}
	cctx, cancel := d.bounded(ctx)
	defer cancel()
	reply, err := d.cfg.Clock.TimeIn(cctx, place)
	if err != nil {
		d.cfg.Logger.Warn().Err(err).Str("place", place).Msg("time lookup failed")
		return nil
	}
	return &Response{Reply: reply, Intent: IntentTime, Confidence: 100}
}

// stageMedia handles search/video/map requests. Extraction only fires
// when the utterance leads with a command verb, so conversational text
// that mentions "play" mid-sentence falls through. Location keywords
// force a map search seeded with the saved default location.
func (d *Dispatcher) stageMedia(ctx context.Context, t *turn) *Response {
	if !hasCommandVerb(t.raw) {
		return nil
	}
	tag, query := extractSearchQuery(t.raw)
	if tag == "" {
		return nil
	}

	if hasLocationKeyword(t.raw) {
		tag = IntentSearchMaps
		if t.req.UserID != "" && d.cfg.Learner != nil {
			cctx, cancel := d.bounded(ctx)
			if val, err := d.cfg.Learner.Get(cctx, t.req.UserID, "default_location"); err == nil {
				query = strings.TrimSpace(query + " " + val.String())
			}
			cancel()
		}
	}

	if t.req.Role != RoleUser {
		return &Response{Reply: ReplyGuestLimited, Intent: IntentGuestRestricted, Confidence: 100}
	}
	if query == "" {
		return &Response{Reply: "What should I search for?", Intent: tag, Confidence: 100}
	}
	if d.cfg.Media == nil {
		return nil
	}

	cctx, cancel := d.bounded(ctx)
	defer cancel()
	reply, handled := d.cfg.Media.Open(cctx, tag, query)
	if !handled {
		return nil
	}
	return &Response{Reply: reply, Intent: tag, Confidence: 100}
}

// stageSilentLearning never answers. It runs after the system/media
// checks so command phrasing is not mistaken for a fact, and mines the
// utterance for facts about an identified user.
func (d *Dispatcher) stageSilentLearning(ctx context.Context, t *turn) *Response {
	if t.req.UserID == "" || d.cfg.Learner == nil {
		return nil
	}
	cctx, cancel := d.bounded(ctx)
	defer cancel()
	res, err := d.cfg.Learner.Learn(cctx, t.req.UserID, t.raw)
	if err != nil {
		d.cfg.Logger.Warn().Err(err).Msg("silent learning failed")
		return nil
	}
	if res != nil {
		d.cfg.Logger.Debug().Str("user", t.req.UserID).Str("key", res.Key).
			Str("action", string(res.Action)).Msg("learned fact")
	}
	return nil
}

// stageReasoning assembles a composite answer from local collaborators
// for weather and machine-health complaints, without the AI.
func (d *Dispatcher) stageReasoning(ctx context.Context, t *turn) *Response {
	if src, dst, ok := extractDistance(t.raw); ok && d.cfg.Nav != nil {
		cctx, cancel := d.bounded(ctx)
		reply, err := d.cfg.Nav.Distance(cctx, src, dst)
		cancel()
		if err == nil && reply != "" {
			return &Response{Reply: reply, Intent: IntentDistance, Confidence: 90}
		}
		if err != nil && !errors.Is(err, services.ErrNotConfigured) {
			d.cfg.Logger.Warn().Err(err).Msg("distance lookup failed")
		}
	}

	var parts []string

	if containsKeyword(t.raw, weatherKeywords) && d.cfg.Weather != nil {
		if part := d.localWeather(ctx, t.raw); part != "" {
			parts = append(parts, part)
		}
	}
	if containsKeyword(t.raw, cpuKeywords) && d.cfg.System != nil {
		cctx, cancel := d.bounded(ctx)
		if reply, handled := d.cfg.System.Execute(cctx, "cpu_usage"); handled {
			parts = append(parts, reply)
		}
		cancel()
	}

	if len(parts) == 0 {
		return nil
	}
	return &Response{Reply: strings.Join(parts, " "), Intent: IntentReasoning, Confidence: 90}
}

// localWeather answers from the utterance's own place when it names
// one, otherwise from the caller's IP location.
func (d *Dispatcher) localWeather(ctx context.Context, raw string) string {
	cctx, cancel := d.bounded(ctx)
	defer cancel()

	reply, err := d.cfg.Weather.Current(cctx, raw)
	if err == nil && reply != "Please tell me a city name." {
		return reply
	}
	if err != nil && !errors.Is(err, services.ErrNotConfigured) {
		d.cfg.Logger.Warn().Err(err).Msg("weather lookup failed")
	}
	if d.cfg.Locator == nil {
		return ""
	}

	here, err := d.cfg.Locator.Current(cctx)
	if err != nil {
		return ""
	}
	reply, err = d.cfg.Weather.Current(cctx, here.Name)
	if err != nil {
		return ""
	}
	return reply
}

// stageContextAI continues an active topic through the AI with
// topic/language constraints embedded in the instruction block.
func (d *Dispatcher) stageContextAI(ctx context.Context, t *turn) *Response {
	if t.sess.Topic == "" || t.sess.Topic == session.TopicNone {
		return nil
	}
	detected := session.InferTopic(t.raw)
	if detected != t.sess.Topic && !t.sess.IsContinuation(t.raw, detected) {
		return nil
	}

	reply := d.ask(ctx, t.req.Text, taskContext(t.sess), d.factSummary(ctx, t), t.sess.Messages)
	return &Response{Reply: reply, Intent: IntentContextAI, Confidence: 85}
}

// stageFallback is the terminal stage: everything unclassified goes to
// the AI with whatever context exists. Confidence is always 0 here.
func (d *Dispatcher) stageFallback(ctx context.Context, t *turn) Response {
	reply := d.ask(ctx, t.req.Text, taskContext(t.sess), d.factSummary(ctx, t), t.sess.Messages)
	return Response{Reply: reply, Intent: IntentFallback, Confidence: 0}
}

// taskContext renders the session's topic/language/focus constraints
// for the AI instruction block.
func taskContext(sess *session.Context) string {
	var parts []string
	if sess.Topic != "" && sess.Topic != session.TopicNone {
		parts = append(parts, fmt.Sprintf("Current topic: %s.", sess.Topic))
	}
	if sess.Language != "" {
		if sess.LanguageLocked {
			parts = append(parts, fmt.Sprintf("All code must be written in %s until told otherwise.", titleWord(sess.Language)))
		} else {
			parts = append(parts, fmt.Sprintf("Write code in %s.", titleWord(sess.Language)))
		}
	}
	if sess.Focus != "" {
		parts = append(parts, fmt.Sprintf("The user is focused on %s.", titleWord(sess.Focus)))
	}
	return strings.Join(parts, " ")
}

// factSummary loads the user's stored facts for prompt context.
func (d *Dispatcher) factSummary(ctx context.Context, t *turn) string {
	if t.req.UserID == "" || d.cfg.Learner == nil {
		return ""
	}
	cctx, cancel := d.bounded(ctx)
	defer cancel()
	summary, err := d.cfg.Learner.Summary(cctx, t.req.UserID)
	if err != nil {
		d.cfg.Logger.Warn().Err(err).Msg("fact summary failed")
		return ""
	}
	return summary
}

func containsKeyword(text string, set map[string]bool) bool {
	for _, w := range strings.Fields(text) {
		if set[w] {
			return true
		}
	}
	return false
}

// keyLabel renders a fact key for speech ("preferred_job_location" →
// "preferred job location").
func keyLabel(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
