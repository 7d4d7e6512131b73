package spotify

import (
	"github.com/samber/lo"
)

// PlaylistFields is the field projection requested for playlist pages. It
// only carries what the playlist page renders.
const PlaylistFields = "items(added_at,track(id,name,uri,external_urls,duration_ms,album(images,name),artists(name,external_urls))),total"

// PlaylistItem is a single playlist entry. Track is nil when the upstream
// reports a removed or otherwise unavailable track.
type PlaylistItem struct {
	AddedAt string         `json:"added_at,omitempty"`
	Track   *PlaylistTrack `json:"track"`
}

type PlaylistTrack struct {
	ID           string       `json:"id,omitempty"`
	Name         string       `json:"name,omitempty"`
	URI          string       `json:"uri,omitempty"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	DurationMS   int          `json:"duration_ms,omitempty"`
	Album        *Album       `json:"album,omitempty"`
	Artists      []Artist     `json:"artists"`
}

type ExternalURLs struct {
	Spotify string `json:"spotify,omitempty"`
}

type Album struct {
	Name   string  `json:"name,omitempty"`
	Images []Image `json:"images"`
}

type Image struct {
	URL string `json:"url,omitempty"`
}

type Artist struct {
	Name         string       `json:"name,omitempty"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// PlayableItems drops items without a track.
func PlayableItems(items []PlaylistItem) []PlaylistItem {
	return lo.Filter(items, func(item PlaylistItem, _ int) bool { return nil != item.Track })
}
