package intent

import (
	"github.com/normanking/jarvis/internal/fuzzy"
	"github.com/normanking/jarvis/internal/nlp"
)

// identityPhrases are the canonical ways users ask who they are.
var identityPhrases = []string{
	"what is my name",
	"tell me my name",
	"who am i",
	"do you know my name",
	"say my name",
}

// IsIdentityQuery reports whether text asks for the user's own identity.
// Identity uses a heavier token-set weight than command matching since
// these phrases are short and word order varies freely.
func IsIdentityQuery(text string) bool {
	norm := nlp.Normalize(text)
	for _, phrase := range identityPhrases {
		score := float64(fuzzy.TokenSetRatio(norm, phrase))*0.6 +
			float64(fuzzy.PartialRatio(norm, phrase))*0.4
		if score >= DefaultThreshold {
			return true
		}
	}
	return false
}
