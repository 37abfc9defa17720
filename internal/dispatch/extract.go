package dispatch

import (
	"regexp"
	"strings"

	"github.com/normanking/jarvis/internal/nlp"
)

// locationSetPatterns recognize "set my location to X" and its casual
// and assignment-style variants, tried in order.
var locationSetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`set location to (.+)`),
	regexp.MustCompile(`set my location to (.+)`),
	regexp.MustCompile(`change location to (.+)`),
	regexp.MustCompile(`update location to (.+)`),
	regexp.MustCompile(`location to (.+)`),
	regexp.MustCompile(`my location is (.+)`),
	regexp.MustCompile(`shift location to (.+)`),
	regexp.MustCompile(`location = (.+)`),
	regexp.MustCompile(`location: (.+)`),
}

// extractLocationSet returns the place from a location-set directive,
// or "".
func extractLocationSet(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, p := range locationSetPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// timePlacePatterns recognize "time in <place>" phrasings.
var timePlacePatterns = []*regexp.Regexp{
	regexp.MustCompile(`time in (.+)`),
	regexp.MustCompile(`time at (.+)`),
	regexp.MustCompile(`time of (.+)`),
}

// extractTimePlace returns the place from a time question, or "".
func extractTimePlace(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, p := range timePlacePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// distancePatterns recognize driving-distance questions. srcIdx and
// dstIdx name which capture group holds each endpoint; srcIdx 0 means
// the caller's own location.
var distancePatterns = []struct {
	re     *regexp.Regexp
	srcIdx int
	dstIdx int
}{
	{regexp.MustCompile(`how far is (.+) from (.+)`), 2, 1},
	{regexp.MustCompile(`distance from (.+) to (.+)`), 1, 2},
	{regexp.MustCompile(`distance between (.+) and (.+)`), 1, 2},
	{regexp.MustCompile(`how far is (.+)`), 0, 1},
	{regexp.MustCompile(`distance to (.+)`), 0, 1},
}

// extractDistance returns (source, destination, ok) for a distance
// question. Source is "" when the caller means their own location.
func extractDistance(text string) (string, string, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, p := range distancePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		src := ""
		if p.srcIdx > 0 {
			src = strings.TrimSpace(m[p.srcIdx])
		}
		return src, strings.TrimSpace(m[p.dstIdx]), true
	}
	return "", "", false
}

// Phrase sets for media intent detection. Map phrases are checked
// first so "search on maps" lands on maps, not web search.
var (
	mapPhrases   = []string{"google maps", "maps", "map"}
	webPhrases   = []string{"search", "find", "google"}
	videoPhrases = []string{"play", "watch", "youtube"}
)

// fillerWords are dropped from the remaining query text.
var fillerWords = map[string]bool{
	"for": true, "on": true, "in": true, "of": true, "the": true,
}

// commandVerbs gate media extraction: conversational text that merely
// mentions "play" mid-sentence must not launch anything.
var commandVerbs = map[string]bool{
	"open": true, "play": true, "watch": true, "search": true,
	"find": true, "show": true, "google": true,
}

// hasCommandVerb reports whether the utterance starts with a media
// command verb.
func hasCommandVerb(text string) bool {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return false
	}
	return commandVerbs[fields[0]]
}

// locationKeywords force map search and pull in the user's saved
// default location.
var locationKeywords = map[string]bool{
	"restaurant": true, "restaurants": true,
	"cafe": true, "cafes": true,
	"coffee": true, "hotel": true, "hotels": true,
	"mall": true, "malls": true,
	"theatre": true, "cinema": true,
	"airport": true, "airports": true,
	"station": true, "stations": true,
	"bus": true, "train": true, "railway": true, "metro": true,
	"hospital": true, "hospitals": true,
	"atm": true, "bank": true,
	"petrol": true, "gas": true,
	"near": true, "nearby": true, "around": true,
}

// hasLocationKeyword reports whether any token is place-seeking.
func hasLocationKeyword(text string) bool {
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if locationKeywords[w] {
			return true
		}
	}
	return false
}

// extractSearchQuery classifies a media utterance and strips the
// command phrasing out of the query. Returns ("", "") when no media
// phrase is present; a recognized intent with nothing left to search
// returns (intent, "").
func extractSearchQuery(text string) (string, string) {
	text = nlp.Normalize(text)
	if text == "" {
		return "", ""
	}

	var tag string
	switch {
	case containsAny(text, mapPhrases):
		tag = IntentSearchMaps
	case containsAny(text, videoPhrases):
		tag = IntentPlayVideo
	case containsAny(text, webPhrases):
		tag = IntentSearchWeb
	default:
		return "", ""
	}

	for _, phrase := range append(append(append([]string{}, mapPhrases...), webPhrases...), videoPhrases...) {
		text = strings.ReplaceAll(text, phrase, "")
	}

	var words []string
	for _, w := range strings.Fields(text) {
		if fillerWords[w] || commandVerbs[w] {
			continue
		}
		words = append(words, w)
	}
	return tag, strings.Join(words, " ")
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// nameUpdatePattern drives the dedicated name stage.
var nameUpdatePattern = regexp.MustCompile(`\bmy name is (.+)`)
