package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLocationSet(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"set my location to pune", "pune"},
		{"set location to new york", "new york"},
		{"change location to goa", "goa"},
		{"my location is hyderabad", "hyderabad"},
		{"location: delhi", "delhi"},
		{"tell me about pune", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractLocationSet(tt.text), tt.text)
	}
}

func TestExtractTimePlace(t *testing.T) {
	assert.Equal(t, "bangalore", extractTimePlace("what is the time in bangalore"))
	assert.Equal(t, "tokyo", extractTimePlace("time at tokyo"))
	assert.Equal(t, "", extractTimePlace("what time is it"))
}

func TestExtractDistance(t *testing.T) {
	tests := []struct {
		text    string
		wantSrc string
		wantDst string
		wantOK  bool
	}{
		{"distance from pune to mumbai", "pune", "mumbai", true},
		{"how far is goa from mumbai", "mumbai", "goa", true},
		{"distance between delhi and agra", "delhi", "agra", true},
		{"how far is mumbai", "", "mumbai", true},
		{"distance to the airport", "", "the airport", true},
		{"open chrome", "", "", false},
	}
	for _, tt := range tests {
		src, dst, ok := extractDistance(tt.text)
		assert.Equal(t, tt.wantOK, ok, tt.text)
		assert.Equal(t, tt.wantSrc, src, tt.text)
		assert.Equal(t, tt.wantDst, dst, tt.text)
	}
}

func TestExtractSearchQuery(t *testing.T) {
	tests := []struct {
		text      string
		wantTag   string
		wantQuery string
	}{
		{"search for golang tutorials", IntentSearchWeb, "golang tutorials"},
		{"play despacito", IntentPlayVideo, "despacito"},
		{"show hospitals on google maps", IntentSearchMaps, "hospitals"},
		{"watch lo-fi beats", IntentPlayVideo, "lofi beats"},
		{"how are you today", "", ""},
		{"search", IntentSearchWeb, ""},
	}
	for _, tt := range tests {
		tag, query := extractSearchQuery(tt.text)
		assert.Equal(t, tt.wantTag, tag, tt.text)
		assert.Equal(t, tt.wantQuery, query, tt.text)
	}
}

func TestHasCommandVerb(t *testing.T) {
	assert.True(t, hasCommandVerb("play despacito"))
	assert.True(t, hasCommandVerb("Find restaurants"))
	assert.False(t, hasCommandVerb("i want to play cricket"))
	assert.False(t, hasCommandVerb(""))
}

func TestHasLocationKeyword(t *testing.T) {
	assert.True(t, hasLocationKeyword("find restaurants nearby"))
	assert.True(t, hasLocationKeyword("atm around here"))
	assert.False(t, hasLocationKeyword("play some music"))
}
