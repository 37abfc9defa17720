package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "OPEN CHROME", "open chrome"},
		{"strips punctuation", "what's the weather?!", "whats weather"},
		{"drops stopwords", "please can you tell me the time", "time"},
		{"collapses whitespace", "open   chrome\n now", "open chrome now"},
		{"keeps digits", "set volume to 50", "set volume to 50"},
		{"empty input", "", ""},
		{"only stopwords", "please tell me", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	in := "Please open Google Chrome now!"
	once := Normalize(in)
	assert.Equal(t, once, Normalize(once))
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"open", "chrome"}, Tokens("Open Chrome!"))
	assert.Nil(t, Tokens("please"))
	assert.Nil(t, Tokens(""))
}
