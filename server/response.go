package server

import (
	"time"

	"github.com/xeptore/spotfolio/spotify/fs"
)

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type artistLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type nowPlayingResponse struct {
	IsPlaying     bool         `json:"isPlaying"`
	Title         string       `json:"title,omitempty"`
	SongURL       string       `json:"songUrl,omitempty"`
	Album         string       `json:"album,omitempty"`
	AlbumImageURL string       `json:"albumImageUrl,omitempty"`
	Artists       []artistLink `json:"artists,omitempty"`
}

type topTrack struct {
	Title         string       `json:"title"`
	SongURL       string       `json:"songUrl"`
	AlbumImageURL string       `json:"albumImageUrl"`
	Artists       []artistLink `json:"artists"`
}

type topTracksError struct {
	Error  string     `json:"error"`
	Tracks []topTrack `json:"tracks"`
}

type topArtist struct {
	Name      string `json:"name"`
	ImageURL  string `json:"imageUrl,omitempty"`
	ArtistURL string `json:"artistUrl"`
}

type topArtistsError struct {
	Error   string      `json:"error"`
	Artists []topArtist `json:"artists"`
}

type playlistTrack struct {
	ID            string       `json:"id"`
	URI           string       `json:"uri"`
	Title         string       `json:"title"`
	SongURL       string       `json:"songUrl"`
	AlbumImageURL string       `json:"albumImageUrl"`
	Album         string       `json:"album"`
	Artists       []artistLink `json:"artists"`
	Duration      int          `json:"duration"`
	AddedAt       string       `json:"addedAt"`
}

type playlistResponse struct {
	Tracks        []playlistTrack `json:"tracks"`
	Total         int             `json:"total"`
	OriginalTotal int             `json:"originalTotal"`
	Source        string          `json:"source"`
}

type playlistError struct {
	Error         string          `json:"error"`
	Message       string          `json:"message"`
	Tracks        []playlistTrack `json:"tracks"`
	Total         int             `json:"total"`
	OriginalTotal int             `json:"originalTotal"`
}

type backupCreated struct {
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	TrackCount int       `json:"trackCount"`
	Duration   string    `json:"duration"`
	BackupPath string    `json:"backupPath"`
	SavedAt    time.Time `json:"savedAt"`
}

type backupError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type backupMissing struct {
	Exists     bool   `json:"exists"`
	Message    string `json:"message"`
	BackupPath string `json:"backupPath"`
}

type backupFound struct {
	Exists     bool        `json:"exists"`
	Metadata   fs.Metadata `json:"metadata"`
	TrackCount int         `json:"trackCount"`
	BackupPath string      `json:"backupPath"`
}
