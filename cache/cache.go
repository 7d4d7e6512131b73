package cache

import (
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"

	"github.com/xeptore/spotfolio/spotify"
)

type Cache struct {
	Playlists PlaylistCache
}

func New() *Cache {
	playlistsCache := ccache.New(
		ccache.Configure[[]spotify.PlaylistItem]().
			MaxSize(10).
			GetsPerPromote(3).
			ItemsToPrune(1),
	)

	return &Cache{
		Playlists: PlaylistCache{
			c:   playlistsCache,
			mux: sync.Mutex{},
		},
	}
}

// PlaylistCache holds fetched playlist items by playlist ID. Fetch failures
// are never stored. Concurrent Fetch calls for a missing key share a single
// upstream fetch.
type PlaylistCache struct {
	c   *ccache.Cache[[]spotify.PlaylistItem]
	mux sync.Mutex
}

// Fetch returns the cached items for k, calling fetch when they are missing
// or expired. A non-positive ttl bypasses the cache.
func (c *PlaylistCache) Fetch(k string, ttl time.Duration, fetch func() ([]spotify.PlaylistItem, error)) ([]spotify.PlaylistItem, error) {
	if ttl <= 0 {
		return fetch()
	}

	c.mux.Lock()
	defer c.mux.Unlock()

	item, err := c.c.Fetch(k, ttl, fetch)
	if nil != err {
		return nil, err
	}
	return item.Value(), nil
}

func (c *PlaylistCache) Set(k string, ttl time.Duration, items []spotify.PlaylistItem) {
	if ttl <= 0 {
		return
	}
	c.c.Set(k, items, ttl)
}
