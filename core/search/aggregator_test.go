package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"Blockbuster/core/channel"
	"Blockbuster/core/playback"
	"Blockbuster/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPlugin is a searchable channel without manual-search hints. delay
// honors the call context; block does not, modelling a provider that never
// checks it.
type stubPlugin struct {
	id      string
	name    string
	results []model.SearchResult
	err     error
	delay   time.Duration
	block   time.Duration
}

func (s *stubPlugin) ChannelID() string   { return s.id }
func (s *stubPlugin) ChannelName() string { return s.name }

func (s *stubPlugin) BuildCommand(model.Content) (playback.Command, error) {
	return nil, errors.New("not playable")
}

func (s *stubPlugin) Search(ctx context.Context, _ string, _ int) ([]model.SearchResult, error) {
	if s.block > 0 {
		time.Sleep(s.block)
	}
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	return s.results, s.err
}

type stubWeb struct {
	results []model.SearchResult
	err     error
}

func (s *stubWeb) Search(context.Context, string, int) ([]model.SearchResult, error) {
	return s.results, s.err
}

func native(channelID, contentID, title string) model.SearchResult {
	return model.SearchResult{
		Title:   title,
		Content: &model.Content{ChannelID: channelID, ContentID: contentID, Title: title},
		Source:  "stub",
	}
}

func TestSearchMergesInRegistrationOrder(t *testing.T) {
	// the slower plugin finishes last but still lands first in the output
	a := &stubPlugin{id: "1", name: "A", delay: 10 * time.Millisecond,
		results: []model.SearchResult{native("1", "a1", "Alpha")}}
	b := &stubPlugin{id: "2", name: "B",
		results: []model.SearchResult{native("2", "b1", "Beta")}}
	web := &stubWeb{results: []model.SearchResult{
		{Title: "Gamma", URL: "https://example.com/gamma", Source: "web"},
	}}

	agg := NewAggregator(channel.NewRegistry(a, b), web, time.Second)
	results, err := agg.Search(context.Background(), "q", 10, "")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "Alpha", results[0].Title)
	assert.Equal(t, "Beta", results[1].Title)
	assert.Equal(t, "Gamma", results[2].Title)
}

func TestDedupePrefersResultWithoutURL(t *testing.T) {
	urlless := native("12", "81444554", "The Gray Man")
	urlful := model.SearchResult{
		Title:   "The Gray Man | Netflix",
		URL:     "https://www.netflix.com/watch/81444554",
		Content: &model.Content{ChannelID: "12", ContentID: "81444554"},
		Source:  "web",
	}

	// the channel-sourced result survives regardless of encounter order
	out := dedupe([]model.SearchResult{urlless, urlful})
	require.Len(t, out, 1)
	assert.Empty(t, out[0].URL)
	assert.Equal(t, "The Gray Man", out[0].Title)

	out = dedupe([]model.SearchResult{urlful, urlless})
	require.Len(t, out, 1)
	assert.Empty(t, out[0].URL)
	assert.Equal(t, "The Gray Man", out[0].Title)
}

func TestSearchDedupAcrossSources(t *testing.T) {
	// a library hit and a web hit for the same title collapse to the
	// library hit once the web URL is recognized
	lib := &stubPlugin{id: "44191", name: "Emby",
		results: []model.SearchResult{native("12", "81444554", "The Gray Man")}}
	web := &stubWeb{results: []model.SearchResult{
		{Title: "Watch The Gray Man", URL: "https://www.netflix.com/watch/81444554", Source: "web"},
	}}

	agg := NewAggregator(channel.NewRegistry(lib, channel.NewNetflix()), web, time.Second)
	results, err := agg.Search(context.Background(), "gray man", 10, "")
	require.NoError(t, err)

	var real []model.SearchResult
	for _, r := range results {
		if r.Source != "manual" {
			real = append(real, r)
		}
	}
	require.Len(t, real, 1)
	assert.Empty(t, real[0].URL)
	assert.Equal(t, "The Gray Man", real[0].Title)
}

func TestSearchLimitBoundsRealResults(t *testing.T) {
	many := make([]model.SearchResult, 5)
	for i := range many {
		many[i] = native("1", string(rune('a'+i)), "Title")
	}
	p := &stubPlugin{id: "1", name: "A", results: many}

	agg := NewAggregator(channel.NewRegistry(p), nil, time.Second)
	results, err := agg.Search(context.Background(), "q", 3, "")
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchAppendsManualFallback(t *testing.T) {
	p := &stubPlugin{id: "1", name: "A",
		results: []model.SearchResult{native("1", "a1", "Alpha")}}

	agg := NewAggregator(channel.NewRegistry(p, channel.NewNetflix(), channel.NewPrimeVideo()), nil, time.Second)
	results, err := agg.Search(context.Background(), "q", 10, "")
	require.NoError(t, err)
	require.Len(t, results, 2)

	fallback := results[len(results)-1]
	assert.Equal(t, "manual", fallback.Source)
	assert.Nil(t, fallback.Content)
	assert.Contains(t, fallback.Description, "netflix.com/watch")
	assert.Contains(t, fallback.Description, "/gp/video/detail/")
}

func TestSearchNoFallbackWithoutResults(t *testing.T) {
	agg := NewAggregator(channel.NewRegistry(channel.NewNetflix()), nil, time.Second)
	results, err := agg.Search(context.Background(), "q", 10, "")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchFallbackExemptFromLimit(t *testing.T) {
	many := make([]model.SearchResult, 4)
	for i := range many {
		many[i] = native("1", string(rune('a'+i)), "Title")
	}
	p := &stubPlugin{id: "1", name: "A", results: many}

	agg := NewAggregator(channel.NewRegistry(p, channel.NewNetflix()), nil, time.Second)
	results, err := agg.Search(context.Background(), "q", 2, "")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "manual", results[2].Source)
}

func TestSearchScopedToCatalogPluginSkipsFallback(t *testing.T) {
	p := &stubPlugin{id: "44191", name: "Emby",
		results: []model.SearchResult{native("44191", "541", "Die Hard")}}

	agg := NewAggregator(channel.NewRegistry(p, channel.NewNetflix()), nil, time.Second)
	results, err := agg.Search(context.Background(), "die hard", 10, "emby")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Die Hard", results[0].Title)
}

func TestSearchUnknownPluginName(t *testing.T) {
	agg := NewAggregator(channel.NewRegistry(), nil, time.Second)
	_, err := agg.Search(context.Background(), "q", 10, "vudu")
	require.ErrorIs(t, err, ErrUnknownPlugin)
}

func TestSearchFailingPluginDoesNotAbort(t *testing.T) {
	bad := &stubPlugin{id: "1", name: "A", err: errors.New("upstream down")}
	good := &stubPlugin{id: "2", name: "B",
		results: []model.SearchResult{native("2", "b1", "Beta")}}

	agg := NewAggregator(channel.NewRegistry(bad, good), nil, time.Second)
	results, err := agg.Search(context.Background(), "q", 10, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Beta", results[0].Title)
}

func TestSearchSlowPluginTimesOut(t *testing.T) {
	slow := &stubPlugin{id: "1", name: "A", delay: 5 * time.Second,
		results: []model.SearchResult{native("1", "a1", "Never")}}
	fast := &stubPlugin{id: "2", name: "B",
		results: []model.SearchResult{native("2", "b1", "Beta")}}

	agg := NewAggregator(channel.NewRegistry(slow, fast), nil, 50*time.Millisecond)
	start := time.Now()
	results, err := agg.Search(context.Background(), "q", 10, "")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, results, 1)
	assert.Equal(t, "Beta", results[0].Title)
}

func TestSearchHangingPluginDoesNotBlockResponse(t *testing.T) {
	hanging := &stubPlugin{id: "1", name: "A", block: 3 * time.Second,
		results: []model.SearchResult{native("1", "a1", "Never")}}
	fast := &stubPlugin{id: "2", name: "B",
		results: []model.SearchResult{native("2", "b1", "Beta")}}

	agg := NewAggregator(channel.NewRegistry(hanging, fast), nil, 50*time.Millisecond)
	start := time.Now()
	results, err := agg.Search(context.Background(), "q", 10, "")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond,
		"response must not block beyond the per-plugin timeout")
	require.Len(t, results, 1)
	assert.Equal(t, "Beta", results[0].Title)
}

func TestSearchPromotesRecognizedWebHits(t *testing.T) {
	web := &stubWeb{results: []model.SearchResult{
		{Title: "The Gray Man | Netflix Official Site", URL: "https://www.netflix.com/watch/81444554", Source: "web"},
		{Title: "The Gray Man review", URL: "https://example.com/reviews/gray-man", Source: "web"},
	}}

	agg := NewAggregator(channel.NewRegistry(channel.NewNetflix()), web, time.Second)
	results, err := agg.Search(context.Background(), "gray man", 10, "")
	require.NoError(t, err)

	var real []model.SearchResult
	for _, r := range results {
		if r.Source != "manual" {
			real = append(real, r)
		}
	}
	require.Len(t, real, 2)

	// the netflix hit became playable, the review did not
	require.NotNil(t, real[0].Content)
	assert.Equal(t, "12", real[0].Content.ChannelID)
	assert.Equal(t, "81444554", real[0].Content.ContentID)
	assert.NotEmpty(t, real[0].URL, "promotion keeps the URL")
	assert.Nil(t, real[1].Content)
}

func TestSearchCancelledContext(t *testing.T) {
	slow := &stubPlugin{id: "1", name: "A", delay: 5 * time.Second}
	agg := NewAggregator(channel.NewRegistry(slow), nil, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := agg.Search(ctx, "q", 10, "")
	require.ErrorIs(t, err, context.Canceled)
}
