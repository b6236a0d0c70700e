// Package geocode resolves free-text addresses into coordinates through a
// Nominatim-compatible HTTP service. The service may legitimately return
// zero results for an unresolvable address; that is not an error here.
// What to record in that case is the caller's decision — the editor uses
// the documented placeholder pair below.
package geocode

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

// SentinelLatitude and SentinelLongitude form the placeholder pair recorded
// when an address cannot be resolved. It is a known marker, not a real
// location; anything reading coordinates should treat it as "unresolved".
const (
	SentinelLatitude  = 90.0
	SentinelLongitude = 135.0
)

// ErrPermissionDenied is returned when geocoding is requested while the
// location permission switch is off. Callers surface it with a specific
// message and leave coordinates unchanged.
var ErrPermissionDenied = errors.New("location permission denied")

// Result is a single resolved coordinate pair.
type Result struct {
	Latitude  float64
	Longitude float64
}

// Client is a thin HTTP client for the geocoding service.
type Client struct {
	baseURL string
	allowed bool
	http    *http.Client
}

// NewClient builds a client for the service at baseURL. The allowed flag
// is the process-wide stand-in for the device location permission: when
// false every Geocode call fails with ErrPermissionDenied without touching
// the network.
func NewClient(baseURL string, allowed bool) *Client {
	return &Client{
		baseURL: baseURL,
		allowed: allowed,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// nominatimRow mirrors the wire format: coordinates arrive as strings.
type nominatimRow struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode issues one request for the given address and returns zero or
// more results. Zero results with a nil error means the address is
// unresolvable as far as the service is concerned.
func (c *Client) Geocode(ctx context.Context, address string) ([]Result, error) {
	if !c.allowed {
		return nil, ErrPermissionDenied
	}
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var rows []nominatimRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(rows))
	for _, row := range rows {
		lat, latErr := strconv.ParseFloat(row.Lat, 64)
		lon, lonErr := strconv.ParseFloat(row.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		out = append(out, Result{Latitude: lat, Longitude: lon})
	}
	return out, nil
}
