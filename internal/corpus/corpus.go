// Package corpus holds the registered command patterns the fuzzy intent
// matcher scores against. The corpus is loaded once at startup and is
// read-only afterwards.
package corpus

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Corpus maps an intent tag to its canonical phrasings.
type Corpus map[string][]string

// Load reads a corpus from a YAML file of the form:
//
//	volume_up:
//	  - increase volume
//	  - volume up
//
// Intents with no patterns are rejected so a typo in the file cannot
// silently disable an intent.
func Load(path string) (Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}

	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse corpus file: %w", err)
	}

	for intent, patterns := range c {
		if len(patterns) == 0 {
			return nil, fmt.Errorf("corpus intent %q has no patterns", intent)
		}
	}

	return c, nil
}

// Intents returns the intent tags in sorted order.
func (c Corpus) Intents() []string {
	tags := make([]string, 0, len(c))
	for tag := range c {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Patterns returns the phrasings registered for an intent.
func (c Corpus) Patterns(intent string) []string {
	return c[intent]
}
