package server_test

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	spotifyapi "github.com/zmb3/spotify/v2"
)

func TestDecodeSpotifyModels(t *testing.T) {
	t.Parallel()

	t.Run("CurrentlyPlaying", func(t *testing.T) {
		t.Parallel()

		var playing spotifyapi.CurrentlyPlaying
		require.NoError(t, json.Unmarshal([]byte(`{
			"is_playing": true,
			"item": {
				"name": "Midnight City",
				"external_urls": {"spotify": "https://open.spotify.com/track/1"},
				"album": {"name": "Hurry Up, We're Dreaming", "images": [{"url": "big"}, {"url": "mid"}]},
				"artists": [{"name": "M83", "external_urls": {"spotify": "https://open.spotify.com/artist/m83"}}]
			}
		}`), &playing))

		assert.True(t, playing.Playing)
		require.NotNil(t, playing.Item)
		assert.Equal(t, "Midnight City", playing.Item.Name)
		assert.Equal(t, "https://open.spotify.com/track/1", playing.Item.ExternalURLs["spotify"])
		assert.Equal(t, "Hurry Up, We're Dreaming", playing.Item.Album.Name)
		require.Len(t, playing.Item.Album.Images, 2)
		assert.Equal(t, "mid", playing.Item.Album.Images[1].URL)
		require.Len(t, playing.Item.Artists, 1)
		assert.Equal(t, "M83", playing.Item.Artists[0].Name)
	})

	t.Run("FullTrackPage", func(t *testing.T) {
		t.Parallel()

		var page spotifyapi.FullTrackPage
		require.NoError(t, json.Unmarshal([]byte(`{"items": [
			{"name": "Intro", "album": {"name": "XX", "images": [{"url": "big"}, {"url": "mid"}]}, "artists": [{"name": "The xx"}]},
			{"name": "Crystalised", "album": {"name": "XX", "images": []}, "artists": []}
		], "total": 2}`), &page))

		require.Len(t, page.Tracks, 2)
		assert.Equal(t, "Intro", page.Tracks[0].Name)
		assert.Equal(t, "XX", page.Tracks[0].Album.Name)
		assert.Len(t, page.Tracks[0].Album.Images, 2)
		assert.Equal(t, "The xx", page.Tracks[0].Artists[0].Name)
		assert.Empty(t, page.Tracks[1].Album.Images)
	})

	t.Run("FullArtistPage", func(t *testing.T) {
		t.Parallel()

		var page spotifyapi.FullArtistPage
		require.NoError(t, json.Unmarshal([]byte(`{"items": [
			{"name": "M83", "external_urls": {"spotify": "https://open.spotify.com/artist/m83"}, "images": [{"url": "big"}, {"url": "mid"}]}
		]}`), &page))

		require.Len(t, page.Artists, 1)
		assert.Equal(t, "M83", page.Artists[0].Name)
		assert.Equal(t, "https://open.spotify.com/artist/m83", page.Artists[0].ExternalURLs["spotify"])
		assert.Len(t, page.Artists[0].Images, 2)
	})
}
