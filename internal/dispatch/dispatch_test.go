package dispatch

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/jarvis/internal/corpus"
	"github.com/normanking/jarvis/internal/intent"
	"github.com/normanking/jarvis/internal/memory"
	"github.com/normanking/jarvis/internal/services"
	"github.com/normanking/jarvis/internal/session"
)

type fakeBrain struct {
	reply     string
	lastText  string
	lastTask  string
	lastFacts string
	calls     int
}

func (f *fakeBrain) Ask(_ context.Context, text, task, facts string, _ []session.Turn) string {
	f.calls++
	f.lastText, f.lastTask, f.lastFacts = text, task, facts
	if f.reply == "" {
		return "Let me think."
	}
	return f.reply
}

type fakeSystem struct{ lastIntent string }

func (f *fakeSystem) Execute(_ context.Context, tag string) (string, bool) {
	f.lastIntent = tag
	switch tag {
	case "volume_up":
		return "Increasing volume.", true
	case "cpu_usage":
		return "CPU usage is 12.0 percent.", true
	case "open_chrome":
		return "Opening Google Chrome.", true
	}
	return "", false
}

type fakeMedia struct {
	lastIntent string
	lastQuery  string
}

func (f *fakeMedia) Open(_ context.Context, tag, query string) (string, bool) {
	f.lastIntent, f.lastQuery = tag, query
	switch tag {
	case IntentPlayVideo:
		return "Playing " + query + " on YouTube.", true
	case IntentSearchMaps:
		return "Showing " + query + " on the map.", true
	case IntentSearchWeb:
		return "Searching the web for " + query + ".", true
	}
	return "", false
}

type fakeWeather struct{}

func (fakeWeather) Current(_ context.Context, query string) (string, error) {
	if strings.Contains(strings.ToLower(query), "pune") {
		return "The current weather in Pune, India is Sunny.", nil
	}
	return "Please tell me a city name.", nil
}

type fakeClock struct{}

func (fakeClock) TimeIn(_ context.Context, place string) (string, error) {
	return "The current time in Bengaluru, India is 09:30.", nil
}

type fakeLocator struct{}

func (fakeLocator) Current(_ context.Context) (services.Place, error) {
	return services.Place{Name: "Pune", Lat: 18.52, Lon: 73.85}, nil
}

type fakeGeo struct{}

func (fakeGeo) Geocode(_ context.Context, place string) (services.Place, error) {
	return services.Place{Name: "Pune, India", Lat: 18.52, Lon: 73.85}, nil
}

type fakeNav struct{}

func (fakeNav) Distance(_ context.Context, source, destination string) (string, error) {
	if source == "" {
		source = "Pune, India"
	}
	return "The distance from " + source + " to " + destination + " is about 148 kilometers. Estimated travel time is 165 minutes.", nil
}

type harness struct {
	d      *Dispatcher
	brain  *fakeBrain
	system *fakeSystem
	media  *fakeMedia
	store  *memory.InMemoryStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.NewInMemoryStore()
	h := &harness{
		brain:  &fakeBrain{},
		system: &fakeSystem{},
		media:  &fakeMedia{},
		store:  store,
	}
	h.d = New(Config{
		Matcher:     intent.NewMatcher(corpus.Default()),
		Learner:     memory.NewLearner(store, zerolog.Nop()),
		Transcripts: memory.NewInMemoryTranscripts(),
		Sessions:    session.NewStore(),
		Brain:       h.brain,
		System:      h.system,
		Media:       h.media,
		Weather:     fakeWeather{},
		Clock:       fakeClock{},
		Nav:         fakeNav{},
		Locator:     fakeLocator{},
		Geo:         fakeGeo{},
		Logger:      zerolog.Nop(),
		CallTimeout: time.Second,
	})
	return h
}

func (h *harness) user(text string) Response {
	return h.d.Dispatch(context.Background(), Request{
		Text: text, Role: RoleUser, UserID: "asha", SessionID: "s1",
	})
}

func (h *harness) guest(text string) Response {
	return h.d.Dispatch(context.Background(), Request{Text: text, Role: RoleGuest})
}

func TestWakePhrases(t *testing.T) {
	h := newHarness(t)
	for _, phrase := range []string{"hi", "hey", "hello", "hey jarvis", "jarvis"} {
		resp := h.guest(phrase)
		assert.Equal(t, ReplyWake, resp.Reply, phrase)
		assert.Equal(t, IntentWake, resp.Intent, phrase)
		assert.Equal(t, 100, resp.Confidence, phrase)
	}
}

func TestEmptyUtterance(t *testing.T) {
	h := newHarness(t)
	resp := h.guest("   ")
	assert.Equal(t, ReplyEmpty, resp.Reply)
	assert.Equal(t, 0, resp.Confidence)
}

func TestNameUpdateThenIdentity(t *testing.T) {
	h := newHarness(t)

	resp := h.user("my name is Asha")
	assert.Contains(t, resp.Reply, "Asha")
	assert.Equal(t, IntentNameUpdate, resp.Intent)
	assert.Equal(t, 100, resp.Confidence)

	resp = h.user("what is my name")
	assert.Equal(t, "You are Asha.", resp.Reply)
	assert.Equal(t, IntentIdentity, resp.Intent)
}

func TestIdentityForGuest(t *testing.T) {
	h := newHarness(t)
	resp := h.guest("who am i")
	assert.Equal(t, "You are currently using guest access.", resp.Reply)
	assert.Equal(t, IntentIdentity, resp.Intent)
}

func TestExplicitFactUpdate(t *testing.T) {
	h := newHarness(t)

	resp := h.user("change my role to dog")
	assert.Equal(t, "Updated your role to Dog.", resp.Reply)
	assert.Equal(t, IntentFactUpdate, resp.Intent)
	assert.Equal(t, 100, resp.Confidence)

	val, err := h.store.Get(context.Background(), "asha", "role")
	require.NoError(t, err)
	assert.Equal(t, "Dog", val.String())
}

func TestOnlyLikeCollapsesList(t *testing.T) {
	h := newHarness(t)
	h.user("i like pizza and momos")

	resp := h.user("i only like biryani")
	assert.Equal(t, IntentFactUpdate, resp.Intent)

	val, err := h.store.Get(context.Background(), "asha", "likes")
	require.NoError(t, err)
	assert.Equal(t, []string{"Biryani"}, val.List)
}

func TestRemovalMissFallsThrough(t *testing.T) {
	h := newHarness(t)
	resp := h.user("i dont like sushi anymore")
	// Nothing stored, so removal misses and the fallback answers.
	assert.Equal(t, IntentFallback, resp.Intent)
	assert.Equal(t, 0, resp.Confidence)
}

func TestGuestSystemIntent(t *testing.T) {
	h := newHarness(t)
	resp := h.guest("increase volume")
	assert.Equal(t, ReplyGuestLimited, resp.Reply)
	assert.Equal(t, IntentGuestRestricted, resp.Intent)
	assert.GreaterOrEqual(t, resp.Confidence, 70)
}

func TestUserSystemIntent(t *testing.T) {
	h := newHarness(t)
	resp := h.user("increase volume")
	assert.Equal(t, "Increasing volume.", resp.Reply)
	assert.Equal(t, "volume_up", resp.Intent)
	assert.Equal(t, "volume_up", h.system.lastIntent)
}

func TestFactRecall(t *testing.T) {
	h := newHarness(t)
	h.user("i like pizza")

	resp := h.user("what do i like")
	assert.Equal(t, "Your likes are Pizza.", resp.Reply)
	assert.Equal(t, IntentFactRecall, resp.Intent)
}

func TestLocationSet(t *testing.T) {
	h := newHarness(t)

	resp := h.user("set my location to pune")
	assert.Equal(t, "Location set to Pune, India.", resp.Reply)
	assert.Equal(t, IntentLocationSet, resp.Intent)

	// The saved fact must match the place named in the confirmation.
	val, err := h.store.Get(context.Background(), "asha", "default_location")
	require.NoError(t, err)
	assert.Equal(t, "Pune, India", val.String())
}

func TestLocationSetGuest(t *testing.T) {
	h := newHarness(t)
	resp := h.guest("set my location to pune")
	assert.Equal(t, ReplyGuestLimited, resp.Reply)
	assert.Equal(t, IntentGuestRestricted, resp.Intent)
}

func TestTimeByPlace(t *testing.T) {
	h := newHarness(t)
	resp := h.user("what is the time in bangalore")
	assert.Equal(t, "The current time in Bengaluru, India is 09:30.", resp.Reply)
	assert.Equal(t, IntentTime, resp.Intent)
}

func TestMediaPlayVideo(t *testing.T) {
	h := newHarness(t)
	resp := h.user("play despacito")
	assert.Equal(t, "Playing despacito on YouTube.", resp.Reply)
	assert.Equal(t, IntentPlayVideo, resp.Intent)
	assert.Equal(t, "despacito", h.media.lastQuery)
}

func TestMediaGuestGated(t *testing.T) {
	h := newHarness(t)
	resp := h.guest("play despacito")
	assert.Equal(t, ReplyGuestLimited, resp.Reply)
	assert.Equal(t, IntentGuestRestricted, resp.Intent)
}

func TestMediaVerbGate(t *testing.T) {
	h := newHarness(t)
	// "play" mid-sentence must not launch anything.
	resp := h.user("i want to play cricket someday")
	assert.NotEqual(t, IntentPlayVideo, resp.Intent)
	assert.Empty(t, h.media.lastIntent)
}

func TestMediaLocationOverride(t *testing.T) {
	h := newHarness(t)
	h.user("set my location to pune")

	resp := h.user("find restaurants nearby")
	assert.Equal(t, IntentSearchMaps, resp.Intent)
	assert.Contains(t, h.media.lastQuery, "restaurants")
	assert.Contains(t, h.media.lastQuery, "Pune, India")
}

func TestCheapReasoningCPU(t *testing.T) {
	h := newHarness(t)
	resp := h.user("why is my laptop so slow")
	assert.Equal(t, "CPU usage is 12.0 percent.", resp.Reply)
	assert.Equal(t, IntentReasoning, resp.Intent)
	assert.Equal(t, 90, resp.Confidence)
}

func TestCheapReasoningWeatherFromIP(t *testing.T) {
	h := newHarness(t)
	resp := h.user("it feels so hot")
	assert.Contains(t, resp.Reply, "Pune")
	assert.Equal(t, IntentReasoning, resp.Intent)
}

func TestExitIntent(t *testing.T) {
	h := newHarness(t)
	resp := h.guest("exit")
	assert.Equal(t, "Shutting down. Goodbye.", resp.Reply)
	assert.Equal(t, IntentExit, resp.Intent)
}

func TestDistanceQuestion(t *testing.T) {
	h := newHarness(t)
	resp := h.user("what is the distance from pune to mumbai")
	assert.Contains(t, resp.Reply, "The distance from pune to mumbai")
	assert.Equal(t, IntentDistance, resp.Intent)
	assert.Equal(t, 90, resp.Confidence)
}

func TestDistanceFromOwnLocation(t *testing.T) {
	h := newHarness(t)
	resp := h.user("how far is mumbai")
	assert.Contains(t, resp.Reply, "The distance from Pune, India to mumbai")
	assert.Equal(t, IntentDistance, resp.Intent)
}

func TestSilentLearning(t *testing.T) {
	h := newHarness(t)
	resp := h.user("i know java and python")
	// No classifier answers; the fallback replies, but skills persist.
	assert.Equal(t, IntentFallback, resp.Intent)

	val, err := h.store.Get(context.Background(), "asha", "skills")
	require.NoError(t, err)
	assert.Equal(t, []string{"Java", "Python"}, val.List)
}

func TestFallbackConfidenceZero(t *testing.T) {
	h := newHarness(t)
	resp := h.user("tell me something interesting")
	assert.Equal(t, IntentFallback, resp.Intent)
	assert.Equal(t, 0, resp.Confidence)
	assert.Equal(t, "Let me think.", resp.Reply)
}

func TestLanguageLockFlowsIntoPrompt(t *testing.T) {
	h := newHarness(t)

	resp := h.user("write all code in python from now")
	assert.Equal(t, IntentLanguageLock, resp.Intent)

	resp = h.user("how do i reverse a list in code")
	assert.Equal(t, IntentContextAI, resp.Intent)
	assert.Contains(t, h.brain.lastTask, "Python")
	assert.Contains(t, h.brain.lastTask, "until told otherwise")
}

func TestLanguageSwitchClearsLock(t *testing.T) {
	h := newHarness(t)
	h.user("write all code in python from now")

	resp := h.user("now in java")
	assert.Equal(t, IntentLanguageSwitch, resp.Intent)

	h.user("show me a bubble sort program")
	assert.Contains(t, h.brain.lastTask, "Java")
	assert.NotContains(t, h.brain.lastTask, "until told otherwise")
}

func TestContinuationKeepsTopic(t *testing.T) {
	h := newHarness(t)
	h.user("there is a bug in my program")

	resp := h.user("why though")
	assert.Equal(t, IntentContextAI, resp.Intent)
	assert.Contains(t, h.brain.lastTask, "coding")
}

func TestRestrictedGate(t *testing.T) {
	h := newHarness(t)
	restricted := func(text string) Response {
		return h.d.Dispatch(context.Background(), Request{
			Text: text, Role: RoleUser, UserID: "asha", Restricted: true,
		})
	}

	resp := restricted("who am i")
	assert.Equal(t, ReplyRestricted, resp.Reply)
	assert.Equal(t, IntentRestricted, resp.Intent)

	resp = restricted("increase volume")
	assert.Equal(t, ReplyRestricted, resp.Reply)

	resp = restricted("play despacito")
	assert.Equal(t, ReplyRestricted, resp.Reply)

	resp = restricted("tell me a story")
	assert.Equal(t, IntentFallback, resp.Intent)
	assert.Equal(t, "Let me think.", resp.Reply)
}

func TestFactsFlowIntoFallbackPrompt(t *testing.T) {
	h := newHarness(t)
	h.user("my name is Asha")

	h.user("tell me something interesting")
	assert.Contains(t, h.brain.lastFacts, "name: Asha")
}

func TestDispatchNeverPanics(t *testing.T) {
	d := New(Config{Logger: zerolog.Nop()}) // no collaborators at all
	resp := d.Dispatch(context.Background(), Request{Text: "hello there", Role: RoleGuest})
	assert.NotEmpty(t, resp.Reply)
}
