package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"Blockbuster/model"
)

// WebProvider supplies supplementary, URL-carrying search results from a
// general web search.
type WebProvider interface {
	Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error)
}

// BraveProvider queries the Brave Search API.
type BraveProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewBraveProvider creates a provider. Returns nil when no API key is
// configured; the aggregator treats a nil provider as disabled.
func NewBraveProvider(apiKey string) *BraveProvider {
	if apiKey == "" {
		return nil
	}
	return &BraveProvider{
		baseURL: "https://api.search.brave.com/res/v1/web/search",
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetBaseURL overrides the API endpoint (used by tests).
func (p *BraveProvider) SetBaseURL(u string) { p.baseURL = u }

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
			Thumbnail   struct {
				Src string `json:"src"`
			} `json:"thumbnail"`
		} `json:"results"`
	} `json:"web"`
}

// Search runs one web search and maps hits into SearchResults. Every result
// carries a non-empty URL, marking it as externally sourced.
func (p *BraveProvider) Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("web search returned status %d", resp.StatusCode)
	}

	var parsed braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode web search response: %w", err)
	}

	results := make([]model.SearchResult, 0, len(parsed.Web.Results))
	for _, hit := range parsed.Web.Results {
		if hit.URL == "" {
			continue
		}
		results = append(results, model.SearchResult{
			Title:       hit.Title,
			URL:         hit.URL,
			Source:      "web",
			Description: hit.Description,
			ImageURL:    hit.Thumbnail.Src,
		})
	}
	return results, nil
}
