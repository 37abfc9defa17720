package memory

import (
	"regexp"
	"strings"
)

// casualWords are filler tokens stripped from fact values before
// storage. Keeping slang out of stored values makes dedup and recall
// behave the same no matter how casually the user phrased the fact.
var casualWords = map[string]struct{}{
	// polite fillers
	"please": {}, "pls": {}, "plz": {}, "kindly": {},

	// conversation fillers
	"just": {}, "only": {}, "actually": {}, "basically": {}, "literally": {},
	"maybe": {}, "probably": {}, "really": {}, "very": {}, "quite": {},
	"somewhat": {}, "sort": {}, "sorta": {}, "kinda": {},

	// casual slang
	"bro": {}, "bruh": {}, "dude": {}, "buddy": {}, "pal": {}, "mate": {},
	"man": {}, "yo": {}, "hey": {}, "hi": {}, "hello": {},

	// hesitation noise
	"uh": {}, "um": {}, "umm": {}, "hmm": {}, "huh": {}, "ah": {}, "oh": {},
	"ok": {}, "okay": {}, "okey": {},

	// reactions
	"lol": {}, "lmao": {}, "rofl": {}, "haha": {}, "hehe": {}, "heh": {},
	"wow": {}, "oops": {},

	// confirmation words
	"yes": {}, "yeah": {}, "yep": {}, "ya": {}, "nah": {}, "nope": {}, "no": {},

	// regional fillers
	"yaar": {}, "bhai": {}, "brother": {}, "sir": {}, "madam": {},
	"ji": {}, "haan": {}, "nahi": {}, "acha": {}, "accha": {}, "theek": {},

	// time fillers
	"today": {}, "now": {}, "currently": {}, "right": {}, "rightnow": {},

	// junk connectors
	"so": {}, "then": {}, "like": {}, "as": {}, "well": {},

	// assistant addressing
	"jarvis": {}, "assistant": {}, "ai": {},
}

// compoundTails are trailing words joined onto the previous token so
// multi-word terms like "chicken biryani" survive preference splitting.
var compoundTails = map[string]struct{}{
	"biryani": {},
	"rice":    {},
	"curry":   {},
}

var (
	andSeparator  = regexp.MustCompile(`\band\b`)
	withSeparator = regexp.MustCompile(`\bwith\b`)
)

// NormalizeValue cleans a captured fact value: casual words are
// dropped, non-alphabetic tokens are discarded (unless the whole value
// is a number), and the result is title-cased.
func NormalizeValue(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))

	if value != "" && isDigits(value) {
		return value
	}

	var words []string
	for _, w := range strings.Fields(value) {
		if _, casual := casualWords[w]; casual {
			continue
		}
		if !isAlpha(w) {
			continue
		}
		words = append(words, w)
	}

	return titleCase(strings.Join(words, " "))
}

// SplitPreferences breaks a multi-value capture ("java python and vs
// code") into discrete normalized items. Conjunctions become commas,
// compound food terms are rejoined, and duplicates are removed while
// preserving first-seen order.
func SplitPreferences(text string) []string {
	text = strings.TrimSpace(strings.ToLower(text))
	text = andSeparator.ReplaceAllString(text, ",")
	text = withSeparator.ReplaceAllString(text, ",")

	var items []string
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var buffer []string
		for _, w := range strings.Fields(part) {
			if _, tail := compoundTails[w]; tail && len(buffer) > 0 {
				buffer[len(buffer)-1] += " " + w
			} else {
				buffer = append(buffer, w)
			}
		}
		items = append(items, buffer...)
	}

	var cleaned []string
	seen := make(map[string]struct{})
	for _, item := range items {
		item = NormalizeValue(item)
		if len(item) < 2 {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		cleaned = append(cleaned, item)
	}

	return cleaned
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return s != ""
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
