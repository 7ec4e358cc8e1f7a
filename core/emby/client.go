// Package emby is a minimal client for the Emby server HTTP API, covering the
// item search this system needs.
package emby

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to one Emby server. Safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	userID     string
	httpClient *http.Client
}

// NewClient creates a client for the given server. userID scopes searches so
// per-user resume positions come back; it may be empty.
func NewClient(baseURL, apiKey, userID string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		userID:  userID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetHTTPClient replaces the underlying HTTP client (used by tests).
func (c *Client) SetHTTPClient(hc *http.Client) { c.httpClient = hc }

// Item is one library item as returned by /Items.
type Item struct {
	ID             string `json:"Id"`
	Name           string `json:"Name"`
	Type           string `json:"Type"` // Movie, Series, Episode
	Overview       string `json:"Overview"`
	ProductionYear int    `json:"ProductionYear"`
	SeriesName     string `json:"SeriesName"`
	SeasonNumber   int    `json:"ParentIndexNumber"`
	EpisodeNumber  int    `json:"IndexNumber"`
	OfficialRating string `json:"OfficialRating"`
	ImageTags      struct {
		Primary string `json:"Primary"`
	} `json:"ImageTags"`
	UserData struct {
		PlaybackPositionTicks int64 `json:"PlaybackPositionTicks"`
	} `json:"UserData"`
}

type itemsResponse struct {
	Items            []Item `json:"Items"`
	TotalRecordCount int    `json:"TotalRecordCount"`
}

// SearchItems runs a recursive library search for movies, series and episodes.
func (c *Client) SearchItems(ctx context.Context, query string, limit int) ([]Item, error) {
	endpoint := c.baseURL + "/Items"
	if c.userID != "" {
		endpoint = c.baseURL + "/Users/" + c.userID + "/Items"
	}

	params := url.Values{}
	params.Set("SearchTerm", query)
	params.Set("IncludeItemTypes", "Movie,Series,Episode")
	params.Set("Recursive", "true")
	params.Set("Fields", "Overview,OfficialRating")
	params.Set("Limit", strconv.Itoa(limit))
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("emby search request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("emby search returned status %d", resp.StatusCode)
	}

	var parsed itemsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode emby search response: %w", err)
	}
	return parsed.Items, nil
}

// PrimaryImageURL builds the poster URL for an item, or "" when the item has
// no primary image.
func (c *Client) PrimaryImageURL(item Item) string {
	if item.ImageTags.Primary == "" {
		return ""
	}
	return fmt.Sprintf("%s/Items/%s/Images/Primary?tag=%s", c.baseURL, item.ID, item.ImageTags.Primary)
}
