// Package search fans a query out to every channel plugin plus a web-search
// provider, then merges, deduplicates and bounds the combined result set.
package search

import (
	"context"
	"errors"
	"strings"
	"time"

	"Blockbuster/core/channel"
	"Blockbuster/logger"
	"Blockbuster/model"
)

// ErrUnknownPlugin means a search was scoped to a plugin name that is not
// registered.
var ErrUnknownPlugin = errors.New("unknown search plugin")

// DefaultLimit bounds the result count when the caller does not supply one.
const DefaultLimit = 20

// Aggregator coordinates concurrent plugin searches. One slow or failing
// plugin never blocks the others: each call gets its own timeout and failures
// only shrink the result set.
type Aggregator struct {
	registry *channel.Registry
	web      WebProvider // may be nil (typed nil must not be passed)
	timeout  time.Duration
}

// NewAggregator builds an aggregator. web may be nil to disable web search.
func NewAggregator(registry *channel.Registry, web WebProvider, timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Aggregator{registry: registry, web: web, timeout: timeout}
}

// Search runs a query. pluginName optionally scopes the fan-out to one plugin;
// an unknown name yields ErrUnknownPlugin. limit caps the number of real
// results before any synthetic entry is appended; limit <= 0 means
// DefaultLimit.
func (a *Aggregator) Search(ctx context.Context, query string, limit int, pluginName string) ([]model.SearchResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	plugins := a.registry.All()
	channelFamilyTargeted := true
	if pluginName != "" {
		p, ok := a.registry.ByName(pluginName)
		if !ok {
			return nil, ErrUnknownPlugin
		}
		plugins = []channel.Plugin{p}
		_, channelFamilyTargeted = p.(channel.ManualSearcher)
	}

	// Fan out. Results land in per-source slots so the merged order is
	// deterministic (registration order, then web) regardless of which
	// goroutine finishes first.
	type job struct {
		slot int
		name string
		call func(context.Context) ([]model.SearchResult, error)
	}
	var jobs []job
	for i, p := range plugins {
		searcher, ok := p.(channel.Searcher)
		if !ok {
			continue
		}
		jobs = append(jobs, job{slot: i, name: p.ChannelName(), call: func(c context.Context) ([]model.SearchResult, error) {
			return searcher.Search(c, query, limit)
		}})
	}
	if a.web != nil {
		jobs = append(jobs, job{slot: len(plugins), name: "web", call: func(c context.Context) ([]model.SearchResult, error) {
			return a.web.Search(c, query, limit)
		}})
	}

	type outcome struct {
		results []model.SearchResult
		err     error
	}
	slots := make([][]model.SearchResult, len(plugins)+1)
	done := make(chan struct{}, len(jobs))
	for _, j := range jobs {
		go func(j job) {
			callCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()
			// The call runs in its own goroutine so a provider that ignores
			// its context cannot hold up the response past the deadline. An
			// abandoned call writes into the buffered channel and its
			// goroutine exits on its own; the slot just stays empty.
			res := make(chan outcome, 1)
			go func() {
				results, err := j.call(callCtx)
				res <- outcome{results: results, err: err}
			}()
			select {
			case o := <-res:
				if o.err != nil {
					logger.Warn("search provider failed",
						logger.String("provider", j.name),
						logger.ErrorField(o.err))
				} else {
					slots[j.slot] = o.results
				}
			case <-callCtx.Done():
				logger.Warn("search provider abandoned at deadline",
					logger.String("provider", j.name))
			}
			done <- struct{}{}
		}(j)
	}

	for i := 0; i < len(jobs); i++ {
		select {
		case <-done:
		case <-ctx.Done():
			// Not-yet-completed calls are discarded; done is buffered so
			// their goroutines still exit.
			return nil, ctx.Err()
		}
	}

	var collected []model.SearchResult
	for _, slot := range slots {
		collected = append(collected, slot...)
	}

	collected = a.promoteWebHits(collected)
	merged := dedupe(collected)
	if len(merged) > limit {
		merged = merged[:limit]
	}

	if channelFamilyTargeted && len(merged) > 0 {
		if fallback, ok := a.manualFallback(); ok {
			merged = append(merged, fallback)
		}
	}
	return merged, nil
}

// promoteWebHits runs every URL extractor over web-sourced results so a hit on
// a known channel URL becomes typed content. The URL is kept, so a native
// result for the same item still wins deduplication.
func (a *Aggregator) promoteWebHits(results []model.SearchResult) []model.SearchResult {
	for i, r := range results {
		if r.URL == "" || r.Content != nil {
			continue
		}
		for _, p := range a.registry.All() {
			extractor, ok := p.(channel.URLExtractor)
			if !ok {
				continue
			}
			if content := extractor.ExtractFromURL(r.URL, r.Title, r.Description); content != nil {
				results[i].Content = content
				break
			}
		}
	}
	return results
}

// dedupe collapses results sharing a dedup key. A result without a URL
// (channel-sourced) beats one with a URL (web-sourced); ties keep the first
// encountered. Surviving entries stay in first-encounter order.
func dedupe(results []model.SearchResult) []model.SearchResult {
	index := make(map[string]int, len(results))
	var out []model.SearchResult
	for _, r := range results {
		key := r.DedupKey()
		if at, seen := index[key]; seen {
			if out[at].URL != "" && r.URL == "" {
				out[at] = r
			}
			continue
		}
		index[key] = len(out)
		out = append(out, r)
	}
	return out
}

// manualFallback synthesizes the "search manually" entry from every
// channel-based plugin's hint.
func (a *Aggregator) manualFallback() (model.SearchResult, bool) {
	var hints []string
	for _, p := range a.registry.All() {
		if ms, ok := p.(channel.ManualSearcher); ok {
			if hint := ms.ManualSearchHint(); hint != "" {
				hints = append(hints, hint)
			}
		}
	}
	if len(hints) == 0 {
		return model.SearchResult{}, false
	}
	return model.SearchResult{
		Title:       "Not finding it? Search inside the channel",
		Source:      "manual",
		Description: strings.Join(hints, "\n"),
	}, true
}
