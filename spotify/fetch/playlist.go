package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/xeptore/flaw/v8"
	"golang.org/x/sync/errgroup"

	"github.com/xeptore/spotfolio/config"
	"github.com/xeptore/spotfolio/errutil"
	"github.com/xeptore/spotfolio/httputil"
	"github.com/xeptore/spotfolio/log"
	"github.com/xeptore/spotfolio/mathutil"
	"github.com/xeptore/spotfolio/must"
	"github.com/xeptore/spotfolio/ratelimit"
	"github.com/xeptore/spotfolio/spotify"
)

const (
	FirstPageLimit = 100
	PageLimit      = 50
)

type playlistPage struct {
	Items []spotify.PlaylistItem `json:"items"`
	Total int                    `json:"total"`
}

// PlaylistTracks fetches every item of the playlist. The first page carries
// the total, the rest are requested concurrently. Any page failure fails the
// whole call. Items without a track are dropped, upstream order is kept.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]spotify.PlaylistItem, error) {
	start := time.Now()

	accessToken, err := c.tokens.AccessToken(ctx)
	if nil != err {
		return nil, err
	}

	first, err := c.playlistPage(ctx, accessToken, playlistID, 0, FirstPageLimit)
	if nil != err {
		return nil, err
	}

	offsets := PageOffsets(first.Total)
	totalPages := mathutil.CeilInts(first.Total, PageLimit)
	if totalPages <= 1 || len(offsets) == 0 {
		items := spotify.PlayableItems(first.Items)
		c.logger.Debug().Int("total", first.Total).Int("tracks", len(items)).Msg("Playlist fits in a single page")
		return items, nil
	}
	c.logger.Debug().Int("total", first.Total).Int("pages", len(offsets)).Msg("Fetching remaining playlist pages in parallel")

	pages := make([][]spotify.PlaylistItem, len(offsets))
	wg, wgCtx := errgroup.WithContext(ctx)
	for i, offset := range offsets {
		wg.Go(func() error {
			page, err := c.playlistPage(wgCtx, accessToken, playlistID, offset, PageLimit)
			if nil != err {
				return err
			}
			pages[i] = page.Items
			return nil
		})
	}
	if err := wg.Wait(); nil != err {
		if errutil.IsContext(ctx) {
			return nil, ctx.Err()
		}
		return nil, err
	}

	items := spotify.PlayableItems(first.Items)
	for _, page := range pages {
		items = append(items, spotify.PlayableItems(page)...)
	}
	c.logger.
		Info().
		Int("tracks", len(items)).
		Int("requests", len(offsets)+1).
		Dur("elapsed", time.Since(start)).
		Msg("Fetched playlist tracks")

	return items, nil
}

// PageOffsets returns the offsets of the pages following the first one.
func PageOffsets(total int) []int {
	var offsets []int
	for offset := FirstPageLimit; offset < total; offset += PageLimit {
		offsets = append(offsets, offset)
	}
	return offsets
}

func (c *Client) playlistPage(ctx context.Context, accessToken, playlistID string, offset, limit int) (res *playlistPage, err error) {
	reqURL, err := url.JoinPath(c.baseURL, "playlists", playlistID, "tracks")
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to create playlist tracks URL: %v", err)).Append(flawP)
	}
	flawP := flaw.P{"url": reqURL, "offset": offset, "limit": limit}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if nil != err {
		if errutil.IsContext(ctx) {
			return nil, ctx.Err()
		}
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to create playlist tracks request: %v", err)).Append(flawP)
	}
	req.Header.Add("Authorization", "Bearer "+accessToken)

	params := make(url.Values, 3)
	params.Add("limit", strconv.Itoa(limit))
	if offset > 0 {
		params.Add("offset", strconv.Itoa(offset))
	}
	params.Add("fields", spotify.PlaylistFields)
	req.URL.RawQuery = params.Encode()
	flawP["request"] = errutil.HTTPRequestFlawPayload(req)

	client := http.Client{Timeout: config.PlaylistPageRequestTimeout} //nolint:exhaustruct
	resp, err := client.Do(req)
	if nil != err {
		switch {
		case errutil.IsContext(ctx):
			return nil, ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			return nil, context.DeadlineExceeded
		default:
			flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
			return nil, flaw.From(fmt.Errorf("failed to send playlist tracks request: %v", err)).Append(flawP)
		}
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			flawP["err_debug_tree"] = errutil.Tree(closeErr).FlawP()
			closeErr = flaw.From(fmt.Errorf("failed to close playlist tracks response body: %v", closeErr)).Append(flawP)
			switch {
			case nil == err:
				err = closeErr
			case errutil.IsFlaw(err):
				err = must.Flaw(err).Join(closeErr)
			default:
				c.logger.Error().Func(log.Flaw(closeErr)).Msg("Failed to close playlist tracks response body")
			}
		}
	}()
	flawP["response"] = errutil.HTTPResponseFlawPayload(resp)

	if code := resp.StatusCode; !isSuccess(code) {
		respBytes, err := httputil.ReadOptionalResponseBody(ctx, resp)
		if nil != err {
			return nil, err
		}
		retryAfter, _ := ratelimit.RetryAfter(resp)
		c.logger.
			Error().
			Int("offset", offset).
			Int("status", code).
			Str("status_text", http.StatusText(code)).
			RawJSON("error", httputil.ErrorBody(respBytes)).
			Str("retry_after", retryAfter).
			Msg("Playlist tracks endpoint error")
		return nil, &APIError{
			Operation:  pageOperation(offset),
			StatusCode: code,
			StatusText: http.StatusText(code),
			Body:       respBytes,
			RetryAfter: retryAfter,
		}
	}

	respBytes, err := httputil.ReadResponseBody(ctx, resp)
	if nil != err {
		return nil, err
	}

	var page playlistPage
	if err := json.Unmarshal(respBytes, &page); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to decode playlist tracks response: %v", err)).Append(flawP)
	}

	return &page, nil
}

func pageOperation(offset int) string {
	if offset == 0 {
		return "failed to fetch playlist tracks"
	}
	return "failed to fetch page at offset " + strconv.Itoa(offset)
}
