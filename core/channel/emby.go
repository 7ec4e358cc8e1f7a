package channel

import (
	"context"
	"fmt"
	"strings"

	"Blockbuster/core/emby"
	"Blockbuster/core/playback"
	"Blockbuster/logger"
	"Blockbuster/model"
)

// Emby is the media-server channel. The Roku Emby app understands ECP deep
// links, so playback is a single launch call; resume position rides along as
// StartPositionTicks when the stored content carries one.
type Emby struct {
	channelID string
	client    *emby.Client // nil when no server is configured; search is then unavailable
}

// NewEmby builds the Emby channel plugin. channelID is the Roku app id of the
// installed Emby channel. client may be nil; BuildCommand works without it.
func NewEmby(channelID string, client *emby.Client) *Emby {
	return &Emby{channelID: channelID, client: client}
}

func (p *Emby) ChannelID() string   { return p.channelID }
func (p *Emby) ChannelName() string { return "Emby" }

// BuildCommand is pure. Parameter order is significant on the wire and fixed:
// Command, ItemIds, then StartPositionTicks only when resume data is present
// and positive.
func (p *Emby) BuildCommand(content model.Content) (playback.Command, error) {
	if content.ContentID == "" {
		return nil, fmt.Errorf("content id is required for channel %s", p.channelID)
	}
	params := fmt.Sprintf("Command=PlayNow&ItemIds=%s", content.ContentID)
	if ticks := content.Metadata.ResumePositionTicks; ticks > 0 {
		params += fmt.Sprintf("&StartPositionTicks=%d", ticks)
	}
	return playback.DeepLink{ChannelID: p.channelID, Params: params}, nil
}

// Search queries the Emby server's library. Results carry no URL, so they win
// dedup ties against web-sourced hits for the same item.
func (p *Emby) Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	if p.client == nil {
		return nil, nil
	}
	items, err := p.client.SearchItems(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(items))
	for _, item := range items {
		content := &model.Content{
			ChannelID: p.channelID,
			ContentID: item.ID,
			MediaType: mediaTypeFor(item.Type),
			Title:     item.Name,
			Metadata: model.ContentMetadata{
				ResumePositionTicks: item.UserData.PlaybackPositionTicks,
				SeriesName:          item.SeriesName,
				SeasonNumber:        item.SeasonNumber,
				EpisodeNumber:       item.EpisodeNumber,
				ImageURL:            p.client.PrimaryImageURL(item),
				OfficialRating:      item.OfficialRating,
				Year:                item.ProductionYear,
			},
		}
		results = append(results, model.SearchResult{
			Title:       displayTitle(item),
			Content:     content,
			Source:      "emby",
			Description: item.Overview,
			ImageURL:    content.Metadata.ImageURL,
		})
	}
	logger.Debug("emby search finished",
		logger.String("query", query),
		logger.Int("hits", len(results)))
	return results, nil
}

func mediaTypeFor(embyType string) string {
	switch strings.ToLower(embyType) {
	case "episode":
		return "episode"
	case "series":
		return "series"
	default:
		return "movie"
	}
}

func displayTitle(item emby.Item) string {
	if item.SeriesName != "" && item.EpisodeNumber > 0 {
		return fmt.Sprintf("%s S%02dE%02d - %s", item.SeriesName, item.SeasonNumber, item.EpisodeNumber, item.Name)
	}
	if item.ProductionYear > 0 {
		return fmt.Sprintf("%s (%d)", item.Name, item.ProductionYear)
	}
	return item.Name
}
