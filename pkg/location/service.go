package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tourmap/models"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "tourmap/1.0"
)

// Candidate is one entry of a Nominatim search response.
type Candidate struct {
	PlaceID     int64   `json:"place_id"`
	OsmType     string  `json:"osm_type"`
	OsmID       int64   `json:"osm_id"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Class       string  `json:"class"`
	Type        string  `json:"type"`
	Importance  float64 `json:"importance"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
}

// NominatimResponse is shaped for the API response
type NominatimResponse []Candidate

// Client geocodes free-text queries against a Nominatim instance.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent sets the User-Agent header. Nominatim's usage policy rejects
// requests without an identifying agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns the candidates for query. An empty result is not an error.
func (c *Client) Search(ctx context.Context, query string) (NominatimResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("nominatim: unexpected status: %s", resp.Status)
	}

	var results NominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode nominatim payload: %w", err)
	}
	return results, nil
}

// Geocode resolves query to the coordinate of its first candidate. The
// boolean is false when Nominatim returned no candidates.
func (c *Client) Geocode(ctx context.Context, query string) (models.Coordinate, bool, error) {
	results, err := c.Search(ctx, query)
	if err != nil {
		return models.Coordinate{}, false, err
	}
	if len(results) == 0 {
		return models.Coordinate{}, false, nil
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return models.Coordinate{}, false, fmt.Errorf("invalid latitude %q for %s: %w", first.Lat, query, err)
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return models.Coordinate{}, false, fmt.Errorf("invalid longitude %q for %s: %w", first.Lon, query, err)
	}
	return models.Coordinate{Lat: lat, Lon: lon}, true, nil
}
