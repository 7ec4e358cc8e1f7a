package model

// ContentMetadata is the bag of channel-specific fields a library entry may
// carry. Channels ignore fields they do not define.
type ContentMetadata struct {
	ResumePositionTicks int64  `json:"resumePositionTicks,omitempty"` // 100ns units
	SeriesName          string `json:"seriesName,omitempty"`
	SeasonNumber        int    `json:"seasonNumber,omitempty"`
	EpisodeNumber       int    `json:"episodeNumber,omitempty"`
	ImageURL            string `json:"imageUrl,omitempty"`
	OfficialRating      string `json:"officialRating,omitempty"`
	Year                int    `json:"year,omitempty"`
}

// Content identifies one playable piece of content on one channel. It is
// immutable once resolved from storage; ChannelID and ContentID are required
// by the time it reaches the executor.
type Content struct {
	ChannelID string          `json:"channelId"`
	ContentID string          `json:"contentId"`
	MediaType string          `json:"mediaType,omitempty"` // free-form, e.g. "movie", "episode"
	Title     string          `json:"title,omitempty"`
	Metadata  ContentMetadata `json:"metadata,omitempty"`
}

// SearchResult is one hit produced by a search plugin or the web-search
// provider. A non-empty URL marks an externally-sourced result.
type SearchResult struct {
	Title       string   `json:"title"`
	URL         string   `json:"url,omitempty"`
	Content     *Content `json:"content,omitempty"`
	Source      string   `json:"source"`
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

// DedupKey collapses duplicate hits from different sources. Typed results key
// on channel+content id; untyped web hits key on their URL.
func (r SearchResult) DedupKey() string {
	if r.Content != nil && r.Content.ChannelID != "" && r.Content.ContentID != "" {
		return r.Content.ChannelID + ":" + r.Content.ContentID
	}
	if r.URL != "" {
		return "url:" + r.URL
	}
	return "title:" + r.Title
}
