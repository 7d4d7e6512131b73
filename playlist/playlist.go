package playlist

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/xeptore/spotfolio/cache"
	"github.com/xeptore/spotfolio/errutil"
	"github.com/xeptore/spotfolio/log"
	"github.com/xeptore/spotfolio/spotify"
	"github.com/xeptore/spotfolio/spotify/fs"
)

type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

type Fetcher interface {
	PlaylistTracks(ctx context.Context, playlistID string) ([]spotify.PlaylistItem, error)
}

type Store interface {
	Save(tracks []spotify.PlaylistItem, playlistID string) (*fs.PlaylistBackup, error)
	Load() *fs.PlaylistBackup
	Path() string
}

// UnavailableError is returned when the live fetch failed and no usable
// backup exists. Cause is the live fetch failure.
type UnavailableError struct {
	Cause error
}

func (e *UnavailableError) Error() string {
	return e.Cause.Error()
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// SaveError is returned by Backup when the playlist was fetched but could not
// be written.
type SaveError struct {
	Cause error
}

func (e *SaveError) Error() string {
	return e.Cause.Error()
}

func (e *SaveError) Unwrap() error {
	return e.Cause
}

type Result struct {
	Items  []spotify.PlaylistItem
	Source Source
}

type Service struct {
	fetcher    Fetcher
	store      Store
	cache      *cache.PlaylistCache
	playlistID string
	ttl        time.Duration
	logger     zerolog.Logger
}

func NewService(fetcher Fetcher, store Store, c *cache.PlaylistCache, playlistID string, ttl time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		fetcher:    fetcher,
		store:      store,
		cache:      c,
		playlistID: playlistID,
		ttl:        ttl,
		logger:     logger,
	}
}

func (s *Service) PlaylistID() string {
	return s.playlistID
}

func (s *Service) BackupPath() string {
	return s.store.Path()
}

// Tracks returns the live playlist items, or the stored backup when the live
// fetch fails. It returns *UnavailableError when neither is available.
func (s *Service) Tracks(ctx context.Context) (*Result, error) {
	items, err := s.cache.Fetch(s.playlistID, s.ttl, func() ([]spotify.PlaylistItem, error) {
		return s.fetcher.PlaylistTracks(ctx, s.playlistID)
	})
	if nil == err {
		return &Result{Items: items, Source: SourceLive}, nil
	}
	if errutil.IsContext(ctx) {
		return nil, ctx.Err()
	}

	s.logger.Error().Func(log.Flaw(err)).Msg("Failed to fetch playlist tracks. Attempting to load backup")
	backup := s.store.Load()
	if nil == backup || len(backup.Tracks) == 0 {
		s.logger.Error().Msg("No usable playlist backup available")
		return nil, &UnavailableError{Cause: err}
	}
	s.logger.
		Warn().
		Int("tracks", len(backup.Tracks)).
		Time("saved_at", backup.Metadata.SavedAt).
		Msg("Serving playlist from backup")

	return &Result{Items: backup.Tracks, Source: SourceFallback}, nil
}

// Backup fetches the playlist bypassing the cache, saves it, and refreshes
// the cache with the fetched items.
func (s *Service) Backup(ctx context.Context) (*fs.PlaylistBackup, error) {
	items, err := s.fetcher.PlaylistTracks(ctx, s.playlistID)
	if nil != err {
		return nil, err
	}

	backup, err := s.store.Save(items, s.playlistID)
	if nil != err {
		return nil, &SaveError{Cause: err}
	}
	s.cache.Set(s.playlistID, s.ttl, items)

	return backup, nil
}

// Status returns the stored backup, or nil when none is usable.
func (s *Service) Status() *fs.PlaylistBackup {
	return s.store.Load()
}
