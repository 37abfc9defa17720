package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// TimeClient answers "time in <place>" questions by geocoding the
// place and asking TimezoneDB for the zone at those coordinates.
type TimeClient struct {
	baseURL string
	apiKey  string
	geo     *Geocoder
	client  *http.Client
}

// TimeOption configures a TimeClient.
type TimeOption func(*TimeClient)

// WithTimeBaseURL overrides the API endpoint.
func WithTimeBaseURL(u string) TimeOption {
	return func(t *TimeClient) { t.baseURL = u }
}

// NewTimeClient builds a TimezoneDB-backed clock.
func NewTimeClient(apiKey string, geo *Geocoder, opts ...TimeOption) *TimeClient {
	t := &TimeClient{
		baseURL: "http://api.timezonedb.com",
		apiKey:  apiKey,
		geo:     geo,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TimeIn returns the local time at a place as a spoken sentence.
// A place the geocoder cannot resolve comes back as a reply.
func (t *TimeClient) TimeIn(ctx context.Context, place string) (string, error) {
	if t.apiKey == "" {
		return "", ErrNotConfigured
	}

	loc, err := t.geo.Geocode(ctx, place)
	if errors.Is(err, ErrNotFound) {
		return fmt.Sprintf("I couldn't find the time for %s.", place), nil
	}
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("key", t.apiKey)
	q.Set("format", "json")
	q.Set("by", "position")
	q.Set("lat", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(loc.Lon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, "GET", t.baseURL+"/v2.1/get-time-zone?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch time for %q: %w", place, err)
	}
	defer resp.Body.Close()

	var body struct {
		Status    string `json:"status"`
		Timestamp int64  `json:"timestamp"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode timezone response: %w", err)
	}
	if body.Status != "OK" {
		return "I couldn't fetch the time right now.", nil
	}

	// TimezoneDB returns the local epoch already shifted into the
	// zone, so format it as UTC.
	local := time.Unix(body.Timestamp, 0).UTC()
	return fmt.Sprintf("The current time in %s is %s.", loc.Name, local.Format("15:04")), nil
}
