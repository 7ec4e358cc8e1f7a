// Package channel maps stored content to concrete device automation. Each
// streaming channel gets one plugin; the registry is built once at startup and
// never mutated afterwards.
package channel

import (
	"context"
	"strings"

	"Blockbuster/core/playback"
	"Blockbuster/model"
)

// Plugin is the contract every channel implements. BuildCommand must be pure:
// no network I/O, no randomness, no clock reads. The same content always
// yields an identical command. Plugins may additionally implement Searcher
// and/or URLExtractor.
type Plugin interface {
	// ChannelID is the Roku app id, constant for the plugin's lifetime.
	ChannelID() string
	// ChannelName is the human-readable channel name.
	ChannelName() string
	// BuildCommand turns stored content into a playback command.
	BuildCommand(content model.Content) (playback.Command, error)
}

// Searcher is the optional native-search capability. Plugins without a public
// search API simply do not implement it.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error)
}

// URLExtractor is the optional capability to parse a user-pasted browser URL
// into content without calling any API. A nil result means no match; it is
// never an error. Title and description are optional disambiguation hints.
type URLExtractor interface {
	ExtractFromURL(rawURL, title, description string) *model.Content
}

// ManualSearcher marks plugins whose content lives behind a device channel
// rather than a hosted catalog. The hint tells users how to find a content id
// by hand; the search aggregator folds these into its fallback entry.
type ManualSearcher interface {
	ManualSearchHint() string
}

// Registry is an immutable channel-id → plugin mapping. Build it once with
// NewRegistry and share it; there is no way to mutate it afterwards.
type Registry struct {
	byID  map[string]Plugin
	order []Plugin
}

// NewRegistry builds a registry from the given plugins. Later plugins with a
// duplicate channel id are ignored.
func NewRegistry(plugins ...Plugin) *Registry {
	r := &Registry{byID: make(map[string]Plugin, len(plugins))}
	for _, p := range plugins {
		if _, exists := r.byID[p.ChannelID()]; exists {
			continue
		}
		r.byID[p.ChannelID()] = p
		r.order = append(r.order, p)
	}
	return r
}

// Get returns the plugin for a channel id.
func (r *Registry) Get(channelID string) (Plugin, bool) {
	p, ok := r.byID[channelID]
	return p, ok
}

// ByName returns the plugin whose name or id matches, case-insensitively for
// names.
func (r *Registry) ByName(name string) (Plugin, bool) {
	if p, ok := r.byID[name]; ok {
		return p, true
	}
	for _, p := range r.order {
		if strings.EqualFold(p.ChannelName(), name) {
			return p, true
		}
	}
	return nil, false
}

// All returns the plugins in registration order. Callers must not modify the
// returned slice.
func (r *Registry) All() []Plugin {
	return r.order
}
