package server

import (
	"strings"

	"github.com/samber/lo"

	"github.com/xeptore/spotfolio/spotify"
)

const unknownArtistName = "Unknown Artist"

// formatPlaylist drops items that cannot be linked to and shapes the rest for
// rendering. Item order is kept.
func formatPlaylist(items []spotify.PlaylistItem) []playlistTrack {
	return lo.FilterMap(items, func(item spotify.PlaylistItem, _ int) (playlistTrack, bool) {
		t := item.Track
		if nil == t || t.Name == "" || t.ExternalURLs.Spotify == "" {
			return playlistTrack{}, false //nolint:exhaustruct
		}

		out := playlistTrack{
			ID:            t.ID,
			URI:           t.URI,
			Title:         t.Name,
			SongURL:       t.ExternalURLs.Spotify,
			AlbumImageURL: "",
			Album:         "",
			Artists: lo.Map(t.Artists, func(a spotify.Artist, _ int) artistLink {
				return artistLink{
					Name: lo.Ternary(a.Name != "", a.Name, unknownArtistName),
					URL:  a.ExternalURLs.Spotify,
				}
			}),
			Duration: t.DurationMS,
			AddedAt:  item.AddedAt,
		}
		if album := t.Album; nil != album {
			out.Album = album.Name
			out.AlbumImageURL = playlistImageURL(album.Images)
		}
		return out, true
	})
}

// playlistImageURL prefers the medium sized image, then the largest one.
func playlistImageURL(images []spotify.Image) string {
	for _, i := range []int{1, 0} {
		if i < len(images) && images[i].URL != "" {
			return images[i].URL
		}
	}
	return ""
}

// searchPlaylist keeps tracks whose title, album, or any artist name contains
// query, case-insensitively. A blank query keeps everything.
func searchPlaylist(tracks []playlistTrack, query string) []playlistTrack {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return tracks
	}

	return lo.Filter(tracks, func(t playlistTrack, _ int) bool {
		return strings.Contains(strings.ToLower(t.Title), query) ||
			strings.Contains(strings.ToLower(t.Album), query) ||
			lo.ContainsBy(t.Artists, func(a artistLink) bool {
				return strings.Contains(strings.ToLower(a.Name), query)
			})
	})
}
