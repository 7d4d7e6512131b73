package playlist_test

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/spotfolio/cache"
	"github.com/xeptore/spotfolio/playlist"
	"github.com/xeptore/spotfolio/spotify"
	"github.com/xeptore/spotfolio/spotify/fs"
)

type fakeFetcher struct {
	calls atomic.Int32
	items []spotify.PlaylistItem
	err   error
}

func (f *fakeFetcher) PlaylistTracks(_ context.Context, playlistID string) ([]spotify.PlaylistItem, error) {
	f.calls.Add(1)
	if playlistID != "pl1" {
		return nil, errors.New("unexpected playlist id " + playlistID)
	}
	if nil != f.err {
		return nil, f.err
	}
	return f.items, nil
}

func tracks(n int) []spotify.PlaylistItem {
	out := make([]spotify.PlaylistItem, 0, n)
	for i := range n {
		out = append(out, spotify.PlaylistItem{Track: &spotify.PlaylistTrack{ID: strconv.Itoa(i), Name: "Track " + strconv.Itoa(i)}})
	}
	return out
}

func newService(t *testing.T, fetcher playlist.Fetcher, ttl time.Duration) (*playlist.Service, *fs.Store) {
	t.Helper()
	store := fs.NewStore(t.TempDir(), zerolog.Nop())
	return playlist.NewService(fetcher, store, &cache.New().Playlists, "pl1", ttl, zerolog.Nop()), store
}

func TestTracksLive(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{items: tracks(3)}
	svc, _ := newService(t, fetcher, time.Hour)

	for range 2 {
		res, err := svc.Tracks(context.Background())
		require.NoError(t, err)
		assert.Equal(t, playlist.SourceLive, res.Source)
		assert.Len(t, res.Items, 3)
	}
	assert.EqualValues(t, 1, fetcher.calls.Load(), "expected the second read to be served from cache")
}

func TestTracksFallback(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{err: errors.New("failed to fetch page at offset 150: 429 Too Many Requests")}
	svc, store := newService(t, fetcher, time.Hour)
	_, err := store.Save(tracks(500), "pl1")
	require.NoError(t, err)

	res, err := svc.Tracks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, playlist.SourceFallback, res.Source)
	assert.Len(t, res.Items, 500)

	_, err = svc.Tracks(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, fetcher.calls.Load(), "expected failures not to be cached")
}

func TestTracksUnavailable(t *testing.T) {
	t.Parallel()

	fetchErr := errors.New("upstream down")
	svc, _ := newService(t, &fakeFetcher{err: fetchErr}, time.Hour)

	res, err := svc.Tracks(context.Background())
	assert.Nil(t, res)
	var unavailable *playlist.UnavailableError
	require.True(t, errors.As(err, &unavailable))
	require.ErrorIs(t, err, fetchErr)
	assert.Equal(t, "upstream down", err.Error())
}

func TestTracksEmptyBackupIsUnusable(t *testing.T) {
	t.Parallel()

	svc, store := newService(t, &fakeFetcher{err: errors.New("upstream down")}, time.Hour)
	_, err := store.Save(nil, "pl1")
	require.NoError(t, err)

	_, err = svc.Tracks(context.Background())
	var unavailable *playlist.UnavailableError
	assert.True(t, errors.As(err, &unavailable))
}

func TestTracksCanceled(t *testing.T) {
	t.Parallel()

	svc, store := newService(t, &fakeFetcher{err: context.Canceled}, time.Hour)
	_, err := store.Save(tracks(2), "pl1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Tracks(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestBackup(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{items: tracks(7)}
	svc, store := newService(t, fetcher, time.Hour)

	backup, err := svc.Backup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, backup.Metadata.TrackCount)
	assert.Equal(t, svc.PlaylistID(), backup.Metadata.PlaylistID)
	assert.Equal(t, "pl1", svc.PlaylistID())

	status := svc.Status()
	require.NotNil(t, status)
	assert.Len(t, status.Tracks, 7)
	assert.Equal(t, store.Path(), svc.BackupPath())

	res, err := svc.Tracks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, playlist.SourceLive, res.Source)
	assert.EqualValues(t, 1, fetcher.calls.Load(), "expected backup to refresh the cache")
}

func TestBackupFetchFailureKeepsPreviousBackup(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{items: tracks(4)}
	svc, _ := newService(t, fetcher, 0)
	_, err := svc.Backup(context.Background())
	require.NoError(t, err)

	fetcher.err = errors.New("upstream down")
	_, err = svc.Backup(context.Background())
	require.Error(t, err)

	status := svc.Status()
	require.NotNil(t, status)
	assert.Len(t, status.Tracks, 4)
}
