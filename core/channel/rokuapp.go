package channel

import (
	"fmt"
	"regexp"
	"strings"

	"Blockbuster/core/playback"
	"Blockbuster/model"
)

// urlPattern maps one browser-URL shape to a content id. mediaType may be
// overridden per pattern. requireMarker, when set, demands that a supplied
// title/description hint contain the marker before the match is accepted;
// a bare pasted URL with no hint is trusted as-is.
type urlPattern struct {
	re            *regexp.Regexp
	mediaType     string
	requireMarker string
}

// appDef is the data table row for one channel that has to be driven by
// simulated key presses. Adding a channel is one row plus nothing else.
type appDef struct {
	id            string
	name          string
	postLaunchKey playback.Key
	manualHint    string
	patterns      []urlPattern
}

// RokuApp is a channel without a public search API. Playback is an open-loop
// three-step sequence: launch with content parameters, wait for the channel to
// boot, then press one channel-specific key.
type RokuApp struct {
	def appDef
}

func (p *RokuApp) ChannelID() string   { return p.def.id }
func (p *RokuApp) ChannelName() string { return p.def.name }

// BuildCommand is pure; the same content always yields an identical sequence.
func (p *RokuApp) BuildCommand(content model.Content) (playback.Command, error) {
	if content.ContentID == "" {
		return nil, fmt.Errorf("content id is required for channel %s", p.def.id)
	}
	mediaType := strings.ToLower(content.MediaType)
	if mediaType == "" {
		mediaType = "movie"
	}
	return playback.ActionSequence{Actions: []playback.Action{
		playback.Launch{
			ChannelID: p.def.id,
			Params:    fmt.Sprintf("contentId=%s&mediaType=%s", content.ContentID, mediaType),
		},
		playback.Wait{Milliseconds: 2000},
		playback.Press{Key: p.def.postLaunchKey, Count: 1},
	}}, nil
}

// ManualSearchHint marks the plugin as channel-based for the aggregator's
// fallback entry.
func (p *RokuApp) ManualSearchHint() string { return p.def.manualHint }

// ExtractFromURL parses a pasted browser URL against the channel's pattern
// table. It never fails; no match is a nil result.
func (p *RokuApp) ExtractFromURL(rawURL, title, description string) *model.Content {
	for _, pat := range p.def.patterns {
		m := pat.re.FindStringSubmatch(rawURL)
		if m == nil {
			continue
		}
		if pat.requireMarker != "" {
			hint := strings.ToLower(title + " " + description)
			if strings.TrimSpace(hint) != "" && !strings.Contains(hint, pat.requireMarker) {
				continue
			}
		}
		return &model.Content{
			ChannelID: p.def.id,
			ContentID: m[len(m)-1],
			MediaType: pat.mediaType,
			Title:     title,
		}
	}
	return nil
}

// ContentURL is the inverse of the channel's first URL pattern, used when
// writing tags from search results that only carry a content id.
func (p *RokuApp) ContentURL(contentID string) string {
	switch p.def.id {
	case NetflixChannelID:
		return "https://www.netflix.com/watch/" + contentID
	case PrimeVideoChannelID:
		return "https://www.amazon.com/gp/video/detail/" + contentID
	case DisneyPlusChannelID:
		return "https://www.disneyplus.com/play/" + contentID
	}
	return ""
}

// Stable Roku app ids for the built-in channels.
const (
	NetflixChannelID    = "12"
	PrimeVideoChannelID = "13"
	DisneyPlusChannelID = "291097"
)

// NewNetflix builds the Netflix channel. The post-launch key starts playback;
// Netflix lands on the title page with the play control focused.
func NewNetflix() *RokuApp {
	return &RokuApp{def: appDef{
		id:            NetflixChannelID,
		name:          "Netflix",
		postLaunchKey: playback.KeyPlay,
		manualHint:    "Netflix: open the title in a browser and copy the netflix.com/watch/… URL.",
		patterns: []urlPattern{
			{re: regexp.MustCompile(`^https?://(?:www\.)?netflix\.com/(?:[a-z]{2}(?:-[a-z]{2})?/)?watch/(\d+)`), mediaType: "movie"},
			{re: regexp.MustCompile(`^https?://(?:www\.)?netflix\.com/(?:[a-z]{2}(?:-[a-z]{2})?/)?title/(\d+)`), mediaType: "movie"},
		},
	}}
}

// NewPrimeVideo builds the Prime Video channel. The amazon.com domain also
// sells physical goods, so a supplied title/description hint must mention
// "prime video" before a detail URL is accepted.
func NewPrimeVideo() *RokuApp {
	return &RokuApp{def: appDef{
		id:            PrimeVideoChannelID,
		name:          "Prime Video",
		postLaunchKey: playback.KeySelect,
		manualHint:    "Prime Video: open the title in a browser and copy the /gp/video/detail/… URL.",
		patterns: []urlPattern{
			{re: regexp.MustCompile(`^https?://(?:www\.)?amazon\.[a-z.]+/gp/video/detail/([A-Z0-9]+)`), mediaType: "movie", requireMarker: "prime video"},
			{re: regexp.MustCompile(`^https?://(?:www\.)?amazon\.[a-z.]+/[^?]*/dp/([A-Z0-9]{10})`), mediaType: "movie", requireMarker: "prime video"},
			{re: regexp.MustCompile(`^https?://(?:www\.)?primevideo\.com/(?:region/[a-z]+/)?detail/([A-Z0-9]+)`), mediaType: "movie"},
		},
	}}
}

// NewDisneyPlus builds the Disney+ channel. The post-launch key confirms the
// profile picker Disney+ shows on every cold launch.
func NewDisneyPlus() *RokuApp {
	return &RokuApp{def: appDef{
		id:            DisneyPlusChannelID,
		name:          "Disney+",
		postLaunchKey: playback.KeySelect,
		manualHint:    "Disney+: open the title in a browser and copy the disneyplus.com/play/… URL.",
		patterns: []urlPattern{
			{re: regexp.MustCompile(`^https?://(?:www\.)?disneyplus\.com/(?:[a-z]{2}-[a-z]{2}/)?play/([0-9a-fA-F-]{36})`), mediaType: "movie"},
			{re: regexp.MustCompile(`^https?://(?:www\.)?disneyplus\.com/(?:[a-z]{2}-[a-z]{2}/)?(?:movies|series)/[^/]+/([0-9a-zA-Z]{12})`), mediaType: "movie"},
		},
	}}
}
