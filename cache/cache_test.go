package cache_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/spotfolio/cache"
	"github.com/xeptore/spotfolio/spotify"
)

func items(ids ...string) []spotify.PlaylistItem {
	out := make([]spotify.PlaylistItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, spotify.PlaylistItem{Track: &spotify.PlaylistTrack{ID: id, Name: id}})
	}
	return out
}

func TestPlaylistCacheFetch(t *testing.T) {
	t.Parallel()

	c := cache.New()
	var calls atomic.Int32
	fetch := func() ([]spotify.PlaylistItem, error) {
		calls.Add(1)
		return items("a", "b"), nil
	}

	for range 3 {
		got, err := c.Playlists.Fetch("pl1", time.Hour, fetch)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestPlaylistCacheFailuresNotCached(t *testing.T) {
	t.Parallel()

	c := cache.New()
	fetchErr := errors.New("upstream failed")
	var calls atomic.Int32

	_, err := c.Playlists.Fetch("pl1", time.Hour, func() ([]spotify.PlaylistItem, error) {
		calls.Add(1)
		return nil, fetchErr
	})
	require.ErrorIs(t, err, fetchErr)

	got, err := c.Playlists.Fetch("pl1", time.Hour, func() ([]spotify.PlaylistItem, error) {
		calls.Add(1)
		return items("a"), nil
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.EqualValues(t, 2, calls.Load())
}

func TestPlaylistCacheDisabled(t *testing.T) {
	t.Parallel()

	c := cache.New()
	var calls atomic.Int32
	fetch := func() ([]spotify.PlaylistItem, error) {
		calls.Add(1)
		return items("a"), nil
	}

	for range 2 {
		_, err := c.Playlists.Fetch("pl1", 0, fetch)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 2, calls.Load())

	c.Playlists.Set("pl1", 0, items("x"))
	_, err := c.Playlists.Fetch("pl1", 0, fetch)
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())
}

func TestPlaylistCacheSet(t *testing.T) {
	t.Parallel()

	c := cache.New()
	c.Playlists.Set("pl1", time.Hour, items("x", "y", "z"))

	got, err := c.Playlists.Fetch("pl1", time.Hour, func() ([]spotify.PlaylistItem, error) {
		t.Fatal("unexpected fetch")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	c.Playlists.Set("pl1", time.Hour, items("a"))
	got, err = c.Playlists.Fetch("pl1", time.Hour, func() ([]spotify.PlaylistItem, error) {
		t.Fatal("unexpected fetch")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPlaylistCacheConcurrentFetch(t *testing.T) {
	t.Parallel()

	c := cache.New()
	var calls atomic.Int32
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.Playlists.Fetch("pl1", time.Hour, func() ([]spotify.PlaylistItem, error) {
				calls.Add(1)
				time.Sleep(10 * time.Millisecond)
				return items("a"), nil
			})
			assert.NoError(t, err)
			assert.Len(t, got, 1)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, calls.Load())
}
