// Package services wraps the external answer providers: geocoding and
// IP location, current weather, local time by place, and driving
// distance. Clients return a spoken-style reply for answerable
// questions and an error only when the provider itself fails; the
// dispatcher turns errors into fixed apology replies.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound means the provider answered but had no result for the
// requested place.
var ErrNotFound = errors.New("place not found")

// ErrNotConfigured means the client has no API key.
var ErrNotConfigured = errors.New("service not configured")

const defaultTimeout = 5 * time.Second

// Place is a resolved location.
type Place struct {
	Name string
	Lat  float64
	Lon  float64
}

// Geocoder resolves place names to coordinates via OpenCage.
type Geocoder struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// GeoOption configures a Geocoder.
type GeoOption func(*Geocoder)

// WithGeoBaseURL overrides the API endpoint.
func WithGeoBaseURL(u string) GeoOption {
	return func(g *Geocoder) { g.baseURL = u }
}

// WithGeoHTTPClient overrides the HTTP client.
func WithGeoHTTPClient(c *http.Client) GeoOption {
	return func(g *Geocoder) { g.client = c }
}

// NewGeocoder builds an OpenCage-backed geocoder.
func NewGeocoder(apiKey string, opts ...GeoOption) *Geocoder {
	g := &Geocoder{
		baseURL: "https://api.opencagedata.com",
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Geocode resolves a free-text place name. Returns ErrNotFound when
// the provider has no match.
func (g *Geocoder) Geocode(ctx context.Context, place string) (Place, error) {
	if g.apiKey == "" {
		return Place{}, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("q", place)
	q.Set("key", g.apiKey)
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, "GET", g.baseURL+"/geocode/v1/json?"+q.Encode(), nil)
	if err != nil {
		return Place{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return Place{}, fmt.Errorf("geocode %q: %w", place, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Place{}, fmt.Errorf("geocode %q: status %d", place, resp.StatusCode)
	}

	var body struct {
		Results []struct {
			Formatted string `json:"formatted"`
			Geometry  struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Place{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(body.Results) == 0 {
		return Place{}, fmt.Errorf("%q: %w", place, ErrNotFound)
	}

	r := body.Results[0]
	return Place{Name: r.Formatted, Lat: r.Geometry.Lat, Lon: r.Geometry.Lng}, nil
}

// IPLocator detects the caller's own city via ipinfo.io.
type IPLocator struct {
	baseURL string
	client  *http.Client
}

// IPOption configures an IPLocator.
type IPOption func(*IPLocator)

// WithIPBaseURL overrides the API endpoint.
func WithIPBaseURL(u string) IPOption {
	return func(l *IPLocator) { l.baseURL = u }
}

// NewIPLocator builds an ipinfo.io-backed locator. No key needed.
func NewIPLocator(opts ...IPOption) *IPLocator {
	l := &IPLocator{
		baseURL: "https://ipinfo.io",
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Current returns the city and coordinates for the caller's IP.
func (l *IPLocator) Current(ctx context.Context) (Place, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", l.baseURL+"/json", nil)
	if err != nil {
		return Place{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return Place{}, fmt.Errorf("locate by IP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Place{}, fmt.Errorf("locate by IP: status %d", resp.StatusCode)
	}

	var body struct {
		City string `json:"city"`
		Loc  string `json:"loc"` // "lat,lon"
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Place{}, fmt.Errorf("decode IP location: %w", err)
	}
	if body.City == "" || body.Loc == "" {
		return Place{}, ErrNotFound
	}

	parts := strings.SplitN(body.Loc, ",", 2)
	if len(parts) != 2 {
		return Place{}, fmt.Errorf("malformed loc field %q", body.Loc)
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Place{}, fmt.Errorf("parse latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Place{}, fmt.Errorf("parse longitude: %w", err)
	}

	return Place{Name: body.City, Lat: lat, Lon: lon}, nil
}
