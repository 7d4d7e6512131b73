package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/spotfolio/config"
	"github.com/xeptore/spotfolio/errutil"
	"github.com/xeptore/spotfolio/httputil"
	"github.com/xeptore/spotfolio/ratelimit"
)

const (
	DefaultBaseURL = "https://api.spotify.com/v1"

	nowPlayingPath = "/me/player/currently-playing"
	topTracksPath  = "/me/top/tracks"
	topArtistsPath = "/me/top/artists"
	topItemsRange  = "short_term"
	topItemsLimit  = "10"
)

type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// APIError is returned when a Web API endpoint answers with an unexpected
// status code.
type APIError struct {
	Operation  string
	StatusCode int
	StatusText string
	Body       []byte
	RetryAfter string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %d %s - %s", e.Operation, e.StatusCode, e.StatusText, httputil.ErrorBody(e.Body))
	if e.RetryAfter != "" {
		msg += fmt.Sprintf(" (Retry-After: %s)", e.RetryAfter)
	}
	return msg
}

type Client struct {
	tokens  TokenSource
	baseURL string
	logger  zerolog.Logger
}

func NewClient(tokens TokenSource, baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		tokens:  tokens,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// NowPlaying returns the raw currently-playing response. A 204 response means
// nothing is playing. The caller must close the response body.
func (c *Client) NowPlaying(ctx context.Context) (*http.Response, error) {
	return c.get(ctx, "Now playing", nowPlayingPath, nil, config.NowPlayingRequestTimeout)
}

// TopTracks returns the raw top tracks response. The caller must close the
// response body.
func (c *Client) TopTracks(ctx context.Context) (*http.Response, error) {
	return c.get(ctx, "Top tracks", topTracksPath, topItemsQuery(), config.TopItemsRequestTimeout)
}

// TopArtists returns the raw top artists response. The caller must close the
// response body.
func (c *Client) TopArtists(ctx context.Context) (*http.Response, error) {
	return c.get(ctx, "Top artists", topArtistsPath, topItemsQuery(), config.TopItemsRequestTimeout)
}

func topItemsQuery() url.Values {
	q := make(url.Values, 2)
	q.Add("time_range", topItemsRange)
	q.Add("limit", topItemsLimit)
	return q
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, timeout time.Duration) (*http.Response, error) {
	accessToken, err := c.tokens.AccessToken(ctx)
	if nil != err {
		return nil, err
	}

	reqURL, err := url.Parse(c.baseURL + path)
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to parse %s URL: %v", endpoint, err)).Append(flawP)
	}
	if nil != query {
		reqURL.RawQuery = query.Encode()
	}
	flawP := flaw.P{"url": reqURL.String()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if nil != err {
		if errutil.IsContext(ctx) {
			return nil, ctx.Err()
		}
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to create %s request: %v", endpoint, err)).Append(flawP)
	}
	req.Header.Add("Authorization", "Bearer "+accessToken)
	flawP["request"] = errutil.HTTPRequestFlawPayload(req)

	client := http.Client{Timeout: timeout} //nolint:exhaustruct
	resp, err := client.Do(req)
	if nil != err {
		switch {
		case errutil.IsContext(ctx):
			return nil, ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			return nil, context.DeadlineExceeded
		default:
			flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
			return nil, flaw.From(fmt.Errorf("failed to send %s request: %v", endpoint, err)).Append(flawP)
		}
	}

	if code := resp.StatusCode; !isSuccess(code) && code != http.StatusNoContent {
		respBytes, err := httputil.ReadOptionalResponseBody(ctx, resp)
		if closeErr := resp.Body.Close(); nil != closeErr {
			c.logger.Debug().Err(closeErr).Str("endpoint", endpoint).Msg("Failed to close error response body")
		}
		if nil != err {
			return nil, err
		}
		c.logError(endpoint, resp, respBytes)
		resp.Body = io.NopCloser(bytes.NewReader(respBytes))
	}

	return resp, nil
}

func (c *Client) logError(endpoint string, resp *http.Response, respBytes []byte) {
	retryAfter, _ := ratelimit.RetryAfter(resp)
	e := c.logger.
		Error().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Str("status_text", http.StatusText(resp.StatusCode)).
		RawJSON("error", httputil.ErrorBody(respBytes))
	if retryAfter != "" {
		e = e.Str("retry_after", retryAfter)
	}
	if d, ok := ratelimit.RetryAfterDuration(retryAfter, time.Now()); ok {
		e = e.Dur("retry_in", d)
	}
	e.Msg("Spotify API endpoint error")
}

func isSuccess(code int) bool {
	return code >= 200 && code <= 299
}
