package system

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
)

// MediaOpener launches browser destinations for web search, video,
// and map intents.
type MediaOpener struct {
	log zerolog.Logger
	run commandRunner
}

// MediaOption configures a MediaOpener.
type MediaOption func(*MediaOpener)

// WithMediaRunner replaces the process spawner.
func WithMediaRunner(r commandRunner) MediaOption {
	return func(m *MediaOpener) { m.run = r }
}

// NewMediaOpener builds a browser-based media opener.
func NewMediaOpener(log zerolog.Logger, opts ...MediaOption) *MediaOpener {
	m := &MediaOpener{log: log, run: spawn}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open launches the destination for a media intent and returns the
// spoken confirmation. Unknown intents report handled=false.
func (m *MediaOpener) Open(ctx context.Context, intent, query string) (string, bool) {
	q := url.QueryEscape(query)

	var target, reply string
	switch intent {
	case "search_web":
		target = "https://www.google.com/search?q=" + q
		reply = fmt.Sprintf("Searching the web for %s.", query)
	case "play_video":
		target = "https://www.youtube.com/results?search_query=" + q
		reply = fmt.Sprintf("Playing %s on YouTube.", query)
	case "search_maps":
		target = "https://www.google.com/maps/search/" + q
		reply = fmt.Sprintf("Showing %s on the map.", query)
	default:
		return "", false
	}

	if err := m.run(ctx, "xdg-open", target); err != nil {
		m.log.Warn().Err(err).Str("intent", intent).Msg("browser launch failed")
	}
	return reply, true
}
