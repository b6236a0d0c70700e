package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeocodeSingleMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "12 Oak Street", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"51.5074","lon":"-0.1278"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, true)
	results, err := c.Geocode(context.Background(), "12 Oak Street")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 51.5074, results[0].Latitude)
	assert.Equal(t, -0.1278, results[0].Longitude)
}

func TestGeocodeZeroResultsIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, true)
	results, err := c.Geocode(context.Background(), "nowhere at all")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGeocodeServerErrorIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, true)
	_, err := c.Geocode(context.Background(), "12 Oak Street")
	assert.Error(t, err)
}

func TestGeocodeSkipsMalformedRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"lat":"not-a-number","lon":"2.0"},{"lat":"1.0","lon":"2.0"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, true)
	results, err := c.Geocode(context.Background(), "12 Oak Street")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1.0, results[0].Latitude)
}

func TestGeocodePermissionDeniedSkipsNetwork(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL, false)
	_, err := c.Geocode(context.Background(), "12 Oak Street")
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.False(t, hit)
}
