package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Response is the body of GET /api/suggestions.
type Response struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// HTTPFetcher reads suggestions from the service's suggestions endpoint.
type HTTPFetcher struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPFetcher(baseURL string, hc *http.Client) *HTTPFetcher {
	if hc == nil {
		hc = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPFetcher{baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc}
}

func (f *HTTPFetcher) Suggestions(ctx context.Context, query string) ([]Suggestion, error) {
	reqURL := fmt.Sprintf("%s/api/suggestions?q=%s", f.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("suggestions: unexpected status %d", resp.StatusCode)
	}

	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}
	return body.Suggestions, nil
}
