package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
)

// selfSources are the source phrases that mean "where I am now".
var selfSources = map[string]bool{
	"":                 true,
	"my location":      true,
	"current location": true,
	"here":             true,
}

// MapsClient answers driving-distance questions via OpenRouteService.
type MapsClient struct {
	baseURL string
	apiKey  string
	geo     *Geocoder
	locator *IPLocator
	client  *http.Client
}

// MapsOption configures a MapsClient.
type MapsOption func(*MapsClient)

// WithMapsBaseURL overrides the API endpoint.
func WithMapsBaseURL(u string) MapsOption {
	return func(m *MapsClient) { m.baseURL = u }
}

// NewMapsClient builds an OpenRouteService-backed distance client.
func NewMapsClient(apiKey string, geo *Geocoder, locator *IPLocator, opts ...MapsOption) *MapsClient {
	m := &MapsClient{
		baseURL: "https://api.openrouteservice.org",
		apiKey:  apiKey,
		geo:     geo,
		locator: locator,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Distance returns the driving distance and time between two places as
// a spoken sentence. An empty or "my location" source resolves via IP.
func (m *MapsClient) Distance(ctx context.Context, source, destination string) (string, error) {
	if m.apiKey == "" {
		return "", ErrNotConfigured
	}
	if destination == "" {
		return "Please tell me the destination.", nil
	}

	var src Place
	if selfSources[source] {
		cur, err := m.locator.Current(ctx)
		if errors.Is(err, ErrNotFound) {
			return "I couldn't detect your current location.", nil
		}
		if err != nil {
			return "", err
		}
		src = cur
	} else {
		loc, err := m.geo.Geocode(ctx, source)
		if errors.Is(err, ErrNotFound) {
			return fmt.Sprintf("I couldn't find %s.", source), nil
		}
		if err != nil {
			return "", err
		}
		src = loc
	}

	dst, err := m.geo.Geocode(ctx, destination)
	if errors.Is(err, ErrNotFound) {
		return fmt.Sprintf("I couldn't find %s.", destination), nil
	}
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("api_key", m.apiKey)
	q.Set("start", coord(src))
	q.Set("end", coord(dst))

	req, err := http.NewRequestWithContext(ctx, "GET", m.baseURL+"/v2/directions/driving-car?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch route: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Features []struct {
			Properties struct {
				Summary struct {
					Distance float64 `json:"distance"` // meters
					Duration float64 `json:"duration"` // seconds
				} `json:"summary"`
			} `json:"properties"`
		} `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode route response: %w", err)
	}
	if len(body.Features) == 0 {
		return "", fmt.Errorf("no route from %s to %s", src.Name, dst.Name)
	}

	sum := body.Features[0].Properties.Summary
	km := math.Round(sum.Distance/1000*100) / 100
	mins := int(math.Round(sum.Duration / 60))

	return fmt.Sprintf(
		"The distance from %s to %s is about %g kilometers. Estimated travel time is %d minutes.",
		src.Name, dst.Name, km, mins,
	), nil
}

// coord formats a place as "lon,lat" the way OpenRouteService expects.
func coord(p Place) string {
	return strconv.FormatFloat(p.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
}
