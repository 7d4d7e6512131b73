package fs_test

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/spotfolio/spotify"
	"github.com/xeptore/spotfolio/spotify/fs"
)

func sampleTracks(n int) []spotify.PlaylistItem {
	out := make([]spotify.PlaylistItem, 0, n)
	for i := range n {
		out = append(out, spotify.PlaylistItem{
			AddedAt: "2024-03-01T12:00:00Z",
			Track: &spotify.PlaylistTrack{
				ID:           "id" + strconv.Itoa(i),
				Name:         "Track " + strconv.Itoa(i),
				URI:          "spotify:track:id" + strconv.Itoa(i),
				ExternalURLs: spotify.ExternalURLs{Spotify: "https://open.spotify.com/track/id" + strconv.Itoa(i)},
				DurationMS:   200000 + i,
				Album: &spotify.Album{
					Name:   "Album",
					Images: []spotify.Image{{URL: "https://i.scdn.co/image/640"}, {URL: "https://i.scdn.co/image/300"}},
				},
				Artists: []spotify.Artist{{Name: "Artist", ExternalURLs: spotify.ExternalURLs{Spotify: "https://open.spotify.com/artist/a"}}},
			},
		})
	}
	return out
}

func TestStoreSaveLoad(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "data")
	store := fs.NewStore(dir, zerolog.Nop())
	assert.Equal(t, filepath.Join(dir, fs.BackupFilename), store.Path())

	tracks := sampleTracks(25)
	before := time.Now().UTC()
	saved, err := store.Save(tracks, "pl1")
	require.NoError(t, err)
	assert.Equal(t, 25, saved.Metadata.TrackCount)
	assert.Equal(t, "pl1", saved.Metadata.PlaylistID)
	assert.WithinDuration(t, before, saved.Metadata.SavedAt, time.Minute)

	loaded := store.Load()
	require.NotNil(t, loaded)
	assert.Equal(t, tracks, loaded.Tracks)
	assert.Equal(t, len(loaded.Tracks), loaded.Metadata.TrackCount)
	assert.Equal(t, "pl1", loaded.Metadata.PlaylistID)
	assert.True(t, saved.Metadata.SavedAt.Equal(loaded.Metadata.SavedAt))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "expected temporary files to be cleaned up")
}

func TestStoreFileFormat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := fs.NewStore(dir, zerolog.Nop())
	_, err := store.Save(sampleTracks(2), "pl1")
	require.NoError(t, err)

	b, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "{\n  \"metadata\""), "expected indented document")

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Contains(t, doc, "metadata")
	assert.Contains(t, doc, "tracks")

	var meta map[string]any
	require.NoError(t, json.Unmarshal(doc["metadata"], &meta))
	assert.Contains(t, meta, "savedAt")
	assert.Equal(t, "pl1", meta["playlistId"])
	assert.EqualValues(t, 2, meta["trackCount"])
}

func TestStoreSaveOverwrites(t *testing.T) {
	t.Parallel()

	store := fs.NewStore(t.TempDir(), zerolog.Nop())
	_, err := store.Save(sampleTracks(10), "pl1")
	require.NoError(t, err)
	_, err = store.Save(sampleTracks(3), "pl2")
	require.NoError(t, err)

	loaded := store.Load()
	require.NotNil(t, loaded)
	assert.Len(t, loaded.Tracks, 3)
	assert.Equal(t, "pl2", loaded.Metadata.PlaylistID)
}

func TestStoreSaveEmpty(t *testing.T) {
	t.Parallel()

	store := fs.NewStore(t.TempDir(), zerolog.Nop())
	saved, err := store.Save(nil, "pl1")
	require.NoError(t, err)
	assert.Equal(t, 0, saved.Metadata.TrackCount)

	loaded := store.Load()
	require.NotNil(t, loaded)
	assert.NotNil(t, loaded.Tracks)
	assert.Empty(t, loaded.Tracks)
}

func TestStoreLoadMissing(t *testing.T) {
	t.Parallel()

	store := fs.NewStore(filepath.Join(t.TempDir(), "missing"), zerolog.Nop())
	assert.Nil(t, store.Load())
}

func TestStoreLoadCorrupt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, fs.BackupFilename), []byte(`{"metadata": {`), 0o0644))

	store := fs.NewStore(dir, zerolog.Nop())
	assert.Nil(t, store.Load())
}

func TestStoreConcurrentAccess(t *testing.T) {
	t.Parallel()

	store := fs.NewStore(t.TempDir(), zerolog.Nop())
	_, err := store.Save(sampleTracks(5), "pl1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := store.Save(sampleTracks(5+i), "pl1")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			backup := store.Load()
			if assert.NotNil(t, backup) {
				assert.Equal(t, len(backup.Tracks), backup.Metadata.TrackCount)
			}
		}()
	}
	wg.Wait()
}

func TestJSONFileReadMissing(t *testing.T) {
	t.Parallel()

	f := fs.JSONFile[fs.PlaylistBackup]{Path: filepath.Join(t.TempDir(), "nope.json")}
	_, err := f.Read()
	require.ErrorIs(t, err, os.ErrNotExist)
}
