package spotify_test

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/spotfolio/spotify"
)

func TestPlayableItems(t *testing.T) {
	t.Parallel()

	items := []spotify.PlaylistItem{
		{AddedAt: "2024-01-01T00:00:00Z", Track: &spotify.PlaylistTrack{ID: "a", Name: "A"}},
		{AddedAt: "2024-01-02T00:00:00Z", Track: nil},
		{AddedAt: "2024-01-03T00:00:00Z", Track: &spotify.PlaylistTrack{ID: "b", Name: "B"}},
		{Track: nil},
	}

	filtered := spotify.PlayableItems(items)
	require.Len(t, filtered, 2)
	assert.Equal(t, "a", filtered[0].Track.ID)
	assert.Equal(t, "b", filtered[1].Track.ID)

	assert.Equal(t, filtered, spotify.PlayableItems(filtered))
	assert.Empty(t, spotify.PlayableItems(nil))
}

func TestPlaylistItemDecodesNullTrack(t *testing.T) {
	t.Parallel()

	var page struct {
		Items []spotify.PlaylistItem `json:"items"`
		Total int                    `json:"total"`
	}
	body := `{
		"items": [
			{"added_at": "2024-05-01T10:00:00Z", "track": null},
			{
				"added_at": "2024-05-02T10:00:00Z",
				"track": {
					"id": "6aOGTQ6hMqe39KUCDy0drM",
					"name": "INOXENTE - Steve Aoki & Dee Mad Remix",
					"uri": "spotify:track:6aOGTQ6hMqe39KUCDy0drM",
					"external_urls": {"spotify": "https://open.spotify.com/track/6aOGTQ6hMqe39KUCDy0drM"},
					"duration_ms": 181000,
					"album": {"name": "INOXENTE", "images": [{"url": "https://i.scdn.co/image/640"}, {"url": "https://i.scdn.co/image/300"}]},
					"artists": [{"name": "Andrekza", "external_urls": {"spotify": "https://open.spotify.com/artist/7K2ZrWY8iteGlM7G4V9B0s"}}]
				}
			}
		],
		"total": 2
	}`
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	require.Len(t, page.Items, 2)
	assert.Nil(t, page.Items[0].Track)

	track := page.Items[1].Track
	require.NotNil(t, track)
	assert.Equal(t, "INOXENTE - Steve Aoki & Dee Mad Remix", track.Name)
	assert.Equal(t, 181000, track.DurationMS)
	require.NotNil(t, track.Album)
	assert.Equal(t, "https://i.scdn.co/image/300", track.Album.Images[1].URL)
	assert.Equal(t, "https://open.spotify.com/artist/7K2ZrWY8iteGlM7G4V9B0s", track.Artists[0].ExternalURLs.Spotify)
}
