// Package events implements the Event Ingestor (spec.md §4.1): it pulls
// recent English-language news items for a country from the configured
// news-events feed and stores them deduplicated.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Article is one entry of the upstream feed's articles[] response, shaped
// per spec.md §6 ("Upstream: news events").
type Article struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Domain   string `json:"domain"`
	Language string `json:"language"`
	SeenDate string `json:"seendate"` // YYYYMMDDThhmmssZ
}

type feedResponse struct {
	Articles []Article `json:"articles"`
}

// Client fetches articles from the news-events feed over HTTPS.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a Client against baseURL, using httpClient for requests.
// apiKey is appended as a query parameter when non-empty (spec.md §6
// NEWS_EVENTS_API_KEY is optional).
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, apiKey: apiKey, httpClient: httpClient}
}

// FetchArticles queries the feed for countryCode over the last daysBack
// days, capped at maxRecords, matching the exact query shape of spec.md §6:
// query="country:<ISO> sourcelang:eng", mode=artlist, timespan=<N>d,
// maxrecords=<M>, format=json.
func (c *Client) FetchArticles(ctx context.Context, countryCode string, daysBack, maxRecords int) ([]Article, error) {
	q := url.Values{}
	q.Set("query", fmt.Sprintf("country:%s sourcelang:eng", countryCode))
	q.Set("mode", "artlist")
	q.Set("timespan", fmt.Sprintf("%dd", daysBack))
	q.Set("maxrecords", fmt.Sprintf("%d", maxRecords))
	q.Set("format", "json")
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("events: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamTransient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamMalformed, resp.StatusCode)
	}

	var body feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamMalformed, err)
	}
	return body.Articles, nil
}
