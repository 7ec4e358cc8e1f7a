package channel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"Blockbuster/core/emby"
	"Blockbuster/core/playback"
	"Blockbuster/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbyBuildCommandWithResume(t *testing.T) {
	plugin := NewEmby("44191", nil)
	content := model.Content{
		ChannelID: "44191",
		ContentID: "541",
		Metadata:  model.ContentMetadata{ResumePositionTicks: 36000000000},
	}

	cmd, err := plugin.BuildCommand(content)
	require.NoError(t, err)
	require.Equal(t, playback.DeepLink{
		ChannelID: "44191",
		Params:    "Command=PlayNow&ItemIds=541&StartPositionTicks=36000000000",
	}, cmd)
}

func TestEmbyBuildCommandOmitsZeroResume(t *testing.T) {
	plugin := NewEmby("44191", nil)

	cmd, err := plugin.BuildCommand(model.Content{ContentID: "541"})
	require.NoError(t, err)
	require.Equal(t, playback.DeepLink{
		ChannelID: "44191",
		Params:    "Command=PlayNow&ItemIds=541",
	}, cmd)
}

func TestEmbyBuildCommandIsDeterministic(t *testing.T) {
	plugin := NewEmby("44191", nil)
	content := model.Content{
		ContentID: "541",
		Metadata:  model.ContentMetadata{ResumePositionTicks: 1200},
	}
	first, err := plugin.BuildCommand(content)
	require.NoError(t, err)
	second, err := plugin.BuildCommand(content)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEmbySearchMapsItems(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Items", r.URL.Path)
		assert.Equal(t, "die hard", r.URL.Query().Get("SearchTerm"))
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"Items": [
				{
					"Id": "541",
					"Name": "Die Hard",
					"Type": "Movie",
					"Overview": "An NYPD officer visits a tower.",
					"ProductionYear": 1988,
					"OfficialRating": "R",
					"ImageTags": {"Primary": "tag1"},
					"UserData": {"PlaybackPositionTicks": 36000000000}
				},
				{
					"Id": "600",
					"Name": "Pilot",
					"Type": "Episode",
					"SeriesName": "Some Show",
					"ParentIndexNumber": 1,
					"IndexNumber": 1,
					"UserData": {"PlaybackPositionTicks": 0}
				}
			],
			"TotalRecordCount": 2
		}`))
	}))
	defer ts.Close()

	client := emby.NewClient(ts.URL, "secret", "")
	plugin := NewEmby("44191", client)

	results, err := plugin.Search(context.Background(), "die hard", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	movie := results[0]
	assert.Equal(t, "Die Hard (1988)", movie.Title)
	assert.Empty(t, movie.URL, "native results carry no URL")
	assert.Equal(t, "emby", movie.Source)
	require.NotNil(t, movie.Content)
	assert.Equal(t, "44191", movie.Content.ChannelID)
	assert.Equal(t, "541", movie.Content.ContentID)
	assert.Equal(t, "movie", movie.Content.MediaType)
	assert.Equal(t, int64(36000000000), movie.Content.Metadata.ResumePositionTicks)
	assert.Contains(t, movie.Content.Metadata.ImageURL, "/Items/541/Images/Primary")
	assert.Equal(t, "44191:541", movie.DedupKey())

	episode := results[1]
	assert.Equal(t, "Some Show S01E01 - Pilot", episode.Title)
	assert.Equal(t, "episode", episode.Content.MediaType)
	assert.Empty(t, episode.Content.Metadata.ImageURL)
}

func TestEmbySearchWithoutClient(t *testing.T) {
	plugin := NewEmby("44191", nil)
	results, err := plugin.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
