package fs

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/xeptore/spotfolio/log"
	"github.com/xeptore/spotfolio/spotify"
)

const BackupFilename = "playlist-tracks-backup.json"

type Metadata struct {
	SavedAt    time.Time `json:"savedAt"`
	PlaylistID string    `json:"playlistId"`
	TrackCount int       `json:"trackCount"`
}

// PlaylistBackup is the last successfully fetched playlist snapshot.
type PlaylistBackup struct {
	Metadata Metadata               `json:"metadata"`
	Tracks   []spotify.PlaylistItem `json:"tracks"`
}

// Store keeps a single playlist backup file. Save and Load are safe for
// concurrent use.
type Store struct {
	file   JSONFile[PlaylistBackup]
	logger zerolog.Logger
	mux    sync.RWMutex
}

func NewStore(dir string, logger zerolog.Logger) *Store {
	return &Store{
		file:   JSONFile[PlaylistBackup]{Path: filepath.Join(dir, BackupFilename)},
		logger: logger,
		mux:    sync.RWMutex{},
	}
}

func (s *Store) Path() string {
	return s.file.Path
}

// Save overwrites the backup with tracks and returns the written snapshot.
func (s *Store) Save(tracks []spotify.PlaylistItem, playlistID string) (*PlaylistBackup, error) {
	if nil == tracks {
		tracks = []spotify.PlaylistItem{}
	}
	backup := PlaylistBackup{
		Metadata: Metadata{
			SavedAt:    time.Now().UTC(),
			PlaylistID: playlistID,
			TrackCount: len(tracks),
		},
		Tracks: tracks,
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	if err := s.file.Write(backup); nil != err {
		s.logger.Error().Func(log.Flaw(err)).Str("path", s.file.Path).Msg("Failed to save playlist backup")
		return nil, err
	}
	s.logger.
		Info().
		Str("path", s.file.Path).
		Int("tracks", backup.Metadata.TrackCount).
		Msg("Playlist backup saved")

	return &backup, nil
}

// Load returns the stored backup, or nil when it is missing or unreadable.
func (s *Store) Load() *PlaylistBackup {
	s.mux.RLock()
	defer s.mux.RUnlock()

	backup, err := s.file.Read()
	if nil != err {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info().Str("path", s.file.Path).Msg("No playlist backup found")
			return nil
		}
		s.logger.Error().Func(log.Flaw(err)).Str("path", s.file.Path).Msg("Failed to load playlist backup")
		return nil
	}
	if nil == backup.Tracks {
		backup.Tracks = []spotify.PlaylistItem{}
	}

	return backup
}
