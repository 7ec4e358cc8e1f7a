package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBraveProviderDisabledWithoutKey(t *testing.T) {
	assert.Nil(t, NewBraveProvider(""))
}

func TestBraveSearchMapsResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "gray man", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("count"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"web": {
				"results": [
					{
						"title": "The Gray Man | Netflix Official Site",
						"url": "https://www.netflix.com/watch/81444554",
						"description": "Watch now",
						"thumbnail": {"src": "https://img.example.com/t.jpg"}
					},
					{
						"title": "No URL entry",
						"url": ""
					}
				]
			}
		}`))
	}))
	defer ts.Close()

	provider := NewBraveProvider("token")
	provider.SetBaseURL(ts.URL)

	results, err := provider.Search(context.Background(), "gray man", 5)
	require.NoError(t, err)
	require.Len(t, results, 1, "entries without a URL are dropped")

	hit := results[0]
	assert.Equal(t, "The Gray Man | Netflix Official Site", hit.Title)
	assert.Equal(t, "https://www.netflix.com/watch/81444554", hit.URL)
	assert.Equal(t, "web", hit.Source)
	assert.Equal(t, "Watch now", hit.Description)
	assert.Equal(t, "https://img.example.com/t.jpg", hit.ImageURL)
	assert.Nil(t, hit.Content)
}

func TestBraveSearchErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	provider := NewBraveProvider("token")
	provider.SetBaseURL(ts.URL)

	_, err := provider.Search(context.Background(), "q", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
