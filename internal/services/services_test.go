package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geocoderFor(t *testing.T, results map[string]Place) *Geocoder {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		p, ok := results[q]
		if !ok {
			w.Write([]byte(`{"results":[]}`))
			return
		}
		w.Write([]byte(`{"results":[{"formatted":"` + p.Name + `","geometry":{"lat":` +
			floatLit(p.Lat) + `,"lng":` + floatLit(p.Lon) + `}}]}`))
	}))
	t.Cleanup(srv.Close)
	return NewGeocoder("k", WithGeoBaseURL(srv.URL))
}

func floatLit(f float64) string {
	switch f {
	case 12.97:
		return "12.97"
	case 77.59:
		return "77.59"
	case 15.49:
		return "15.49"
	case 73.82:
		return "73.82"
	default:
		return "0"
	}
}

func TestGeocode(t *testing.T) {
	geo := geocoderFor(t, map[string]Place{
		"bangalore": {Name: "Bengaluru, India", Lat: 12.97, Lon: 77.59},
	})

	p, err := geo.Geocode(context.Background(), "bangalore")
	require.NoError(t, err)
	assert.Equal(t, "Bengaluru, India", p.Name)
	assert.Equal(t, 12.97, p.Lat)

	_, err = geo.Geocode(context.Background(), "atlantis")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGeocodeNotConfigured(t *testing.T) {
	geo := NewGeocoder("")
	_, err := geo.Geocode(context.Background(), "paris")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestIPLocatorCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"city":"Pune","loc":"18.52,73.85"}`))
	}))
	defer srv.Close()

	loc := NewIPLocator(WithIPBaseURL(srv.URL))
	p, err := loc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Pune", p.Name)
	assert.Equal(t, 18.52, p.Lat)
	assert.Equal(t, 73.85, p.Lon)
}

func TestExtractCityCountry(t *testing.T) {
	city, country := extractCityCountry("weather in los angles usa right now")
	assert.Equal(t, "Los Angles", city)
	assert.Equal(t, "USA", country)

	city, country = extractCityCountry("temperature in tokyo")
	assert.Equal(t, "Tokyo", city)
	assert.Equal(t, "", country)
}

func TestNormalizeCity(t *testing.T) {
	assert.Equal(t, "Los Angeles", normalizeCity("Los Angles"))
	assert.Equal(t, "Bangalore", normalizeCity("bangalor"))
	// Too far from anything known stays as typed.
	assert.Equal(t, "Xyzzy", normalizeCity("Xyzzy"))
}

func TestWeatherCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/current.json", r.URL.Path)
		w.Write([]byte(`{
			"location":{"name":"Tokyo","country":"Japan"},
			"current":{"temp_c":21.5,"feelslike_c":22,"humidity":60,"wind_kph":10,
				"condition":{"text":"Partly cloudy"}}
		}`))
	}))
	defer srv.Close()

	wc := NewWeatherClient("k", WithWeatherBaseURL(srv.URL))
	got, err := wc.Current(context.Background(), "weather in tokyo")
	require.NoError(t, err)
	assert.Contains(t, got, "Tokyo, Japan")
	assert.Contains(t, got, "Partly cloudy")
	assert.Contains(t, got, "21.5°C")
}

func TestWeatherUnknownCity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"No matching location found."}}`))
	}))
	defer srv.Close()

	wc := NewWeatherClient("k", WithWeatherBaseURL(srv.URL))
	got, err := wc.Current(context.Background(), "weather in xyzzy")
	require.NoError(t, err)
	assert.Contains(t, got, "I couldn't find weather data for")
}

func TestWeatherEmptyQuery(t *testing.T) {
	wc := NewWeatherClient("k")
	got, err := wc.Current(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, "Please tell me a city name.", got)
}

func TestTimeIn(t *testing.T) {
	geo := geocoderFor(t, map[string]Place{
		"bangalore": {Name: "Bengaluru, India", Lat: 12.97, Lon: 77.59},
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "position", r.URL.Query().Get("by"))
		// 2024-01-01 09:30 local, pre-shifted by the provider.
		w.Write([]byte(`{"status":"OK","timestamp":1704101400}`))
	}))
	defer srv.Close()

	tc := NewTimeClient("k", geo, WithTimeBaseURL(srv.URL))
	got, err := tc.TimeIn(context.Background(), "bangalore")
	require.NoError(t, err)
	assert.Equal(t, "The current time in Bengaluru, India is 09:30.", got)
}

func TestTimeInUnknownPlace(t *testing.T) {
	geo := geocoderFor(t, nil)
	tc := NewTimeClient("k", geo)

	got, err := tc.TimeIn(context.Background(), "atlantis")
	require.NoError(t, err)
	assert.Equal(t, "I couldn't find the time for atlantis.", got)
}

func TestDistance(t *testing.T) {
	geo := geocoderFor(t, map[string]Place{
		"bangalore": {Name: "Bengaluru", Lat: 12.97, Lon: 77.59},
		"goa":       {Name: "Goa", Lat: 15.49, Lon: 73.82},
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features":[{"properties":{"summary":{"distance":558600,"duration":33000}}}]}`))
	}))
	defer srv.Close()

	mc := NewMapsClient("k", geo, NewIPLocator(), WithMapsBaseURL(srv.URL))
	got, err := mc.Distance(context.Background(), "bangalore", "goa")
	require.NoError(t, err)
	assert.Equal(t, "The distance from Bengaluru to Goa is about 558.6 kilometers. Estimated travel time is 550 minutes.", got)
}

func TestDistanceFromCurrentLocation(t *testing.T) {
	geo := geocoderFor(t, map[string]Place{
		"goa": {Name: "Goa", Lat: 15.49, Lon: 73.82},
	})
	ipSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"city":"Pune","loc":"18.52,73.85"}`))
	}))
	defer ipSrv.Close()
	routeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features":[{"properties":{"summary":{"distance":450000,"duration":27000}}}]}`))
	}))
	defer routeSrv.Close()

	mc := NewMapsClient("k", geo, NewIPLocator(WithIPBaseURL(ipSrv.URL)), WithMapsBaseURL(routeSrv.URL))
	got, err := mc.Distance(context.Background(), "my location", "goa")
	require.NoError(t, err)
	assert.Contains(t, got, "from Pune to Goa")
}

func TestDistanceMissingDestination(t *testing.T) {
	mc := NewMapsClient("k", NewGeocoder("k"), NewIPLocator())
	got, err := mc.Distance(context.Background(), "pune", "")
	require.NoError(t, err)
	assert.Equal(t, "Please tell me the destination.", got)
}
