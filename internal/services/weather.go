package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/normanking/jarvis/internal/fuzzy"
)

// knownCities feeds fuzzy spelling correction for weather queries.
var knownCities = []string{
	"Hyderabad", "Bangalore", "Chennai", "Delhi", "Mumbai",
	"Pune", "Kolkata", "Ahmedabad", "Jaipur", "Noida",
	"Gurgaon", "Coimbatore", "Vijayawada", "Warangal",
	"Los Angeles", "New York", "San Francisco",
	"Tokyo", "Osaka", "Kyoto",
	"London", "Paris", "Berlin",
}

// countryHints maps country mentions to the form the provider expects.
var countryHints = []struct{ hint, country string }{
	{"united states", "USA"},
	{"usa", "USA"},
	{"america", "USA"},
	{"india", "India"},
	{"japan", "Japan"},
	{"england", "UK"},
	{"uk", "UK"},
}

var weatherFiller = regexp.MustCompile(`\b(weather|temperature|in|right now|today|now|tell me|what is)\b`)

// WeatherClient answers current-weather questions via WeatherAPI.
type WeatherClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// WeatherOption configures a WeatherClient.
type WeatherOption func(*WeatherClient)

// WithWeatherBaseURL overrides the API endpoint.
func WithWeatherBaseURL(u string) WeatherOption {
	return func(w *WeatherClient) { w.baseURL = u }
}

// NewWeatherClient builds a WeatherAPI-backed client.
func NewWeatherClient(apiKey string, opts ...WeatherOption) *WeatherClient {
	w := &WeatherClient{
		baseURL: "https://api.weatherapi.com",
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// normalizeCity fuzzy-corrects a city spelling against the known list.
func normalizeCity(city string) string {
	best, bestScore := city, 0
	for _, known := range knownCities {
		score := fuzzy.Ratio(strings.ToLower(city), strings.ToLower(known))
		if score > bestScore {
			best, bestScore = known, score
		}
	}
	if bestScore >= 70 {
		return best
	}
	return city
}

// extractCityCountry pulls the city and optional country out of a
// free-text weather question.
func extractCityCountry(text string) (string, string) {
	text = strings.ToLower(text)

	country := ""
	for _, h := range countryHints {
		if strings.Contains(text, h.hint) {
			country = h.country
			text = strings.Replace(text, h.hint, "", 1)
			break
		}
	}

	text = weatherFiller.ReplaceAllString(text, "")
	city := strings.TrimSpace(text)
	return titleWords(city), country
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Current answers "weather in <city>" style queries with a spoken
// summary. Unknown cities come back as a reply, not an error.
func (w *WeatherClient) Current(ctx context.Context, query string) (string, error) {
	if w.apiKey == "" {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(query) == "" {
		return "Please tell me a city name.", nil
	}

	city, country := extractCityCountry(query)
	if city == "" {
		return "Please tell me a city name.", nil
	}
	city = normalizeCity(city)

	loc := city
	if country != "" {
		loc = city + ", " + country
	}

	q := url.Values{}
	q.Set("key", w.apiKey)
	q.Set("q", loc)
	q.Set("aqi", "no")

	req, err := http.NewRequestWithContext(ctx, "GET", w.baseURL+"/v1/current.json?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch weather for %q: %w", loc, err)
	}
	defer resp.Body.Close()

	var body struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Location struct {
			Name    string `json:"name"`
			Country string `json:"country"`
		} `json:"location"`
		Current struct {
			TempC     float64 `json:"temp_c"`
			FeelsC    float64 `json:"feelslike_c"`
			Humidity  int     `json:"humidity"`
			WindKph   float64 `json:"wind_kph"`
			Condition struct {
				Text string `json:"text"`
			} `json:"condition"`
		} `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode weather response: %w", err)
	}
	if body.Error != nil {
		return fmt.Sprintf("I couldn't find weather data for %s.", city), nil
	}

	return fmt.Sprintf(
		"The current weather in %s, %s is %s. The temperature is %g°C, feels like %g°C, humidity %d percent, with wind speed %g kilometers per hour.",
		body.Location.Name, body.Location.Country,
		body.Current.Condition.Text,
		body.Current.TempC, body.Current.FeelsC,
		body.Current.Humidity, body.Current.WindKph,
	), nil
}
