package auth

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/xeptore/spotfolio/config"
	"github.com/xeptore/spotfolio/errutil"
	"github.com/xeptore/spotfolio/httputil"
	"github.com/xeptore/spotfolio/log"
	"github.com/xeptore/spotfolio/must"
	"github.com/xeptore/spotfolio/ratelimit"
)

const DefaultTokenURL = spotifyauth.TokenURL

type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// RejectedError is returned when the token endpoint answers with a non-2xx
// status code.
type RejectedError struct {
	StatusCode int
	StatusText string
	Body       []byte
	RetryAfter string
}

func (e *RejectedError) Error() string {
	msg := fmt.Sprintf("failed to get access token: %d %s - %s", e.StatusCode, e.StatusText, httputil.ErrorBody(e.Body))
	if e.RetryAfter != "" {
		msg += fmt.Sprintf(" (Retry-After: %s)", e.RetryAfter)
	}
	return msg
}

type token struct {
	value     string
	expiresAt time.Time
}

type Auth struct {
	creds    Credentials
	tokenURL string
	reuse    bool
	logger   zerolog.Logger

	mux    sync.Mutex
	cached *token
}

// New returns an Auth exchanging creds.RefreshToken at tokenURL. Unless reuse
// is set, every AccessToken call performs a fresh exchange.
func New(creds Credentials, tokenURL string, reuse bool, logger zerolog.Logger) *Auth {
	return &Auth{
		creds:    creds,
		tokenURL: tokenURL,
		reuse:    reuse,
		logger:   logger,
		mux:      sync.Mutex{},
		cached:   nil,
	}
}

func (a *Auth) AccessToken(ctx context.Context) (string, error) {
	if !a.reuse {
		res, err := refreshAccessToken(ctx, a.tokenURL, a.creds, a.logger)
		if nil != err {
			return "", err
		}
		return res.AccessToken, nil
	}

	a.mux.Lock()
	defer a.mux.Unlock()

	if nil != a.cached && time.Now().Before(a.cached.expiresAt) {
		return a.cached.value, nil
	}

	res, err := refreshAccessToken(ctx, a.tokenURL, a.creds, a.logger)
	if nil != err {
		return "", err
	}
	a.cached = &token{
		value:     res.AccessToken,
		expiresAt: time.Now().Add(time.Duration(res.ExpiresIn)*time.Second - config.AccessTokenReuseExpiryLeeway),
	}
	return a.cached.value, nil
}

type RefreshResult struct {
	AccessToken string
	ExpiresIn   int
}

func refreshAccessToken(ctx context.Context, tokenURL string, creds Credentials, logger zerolog.Logger) (res *RefreshResult, err error) {
	flawP := flaw.P{"url": tokenURL}

	reqParams := make(url.Values, 2)
	reqParams.Add("grant_type", "refresh_token")
	reqParams.Add("refresh_token", creds.RefreshToken)
	reqParamsStr := reqParams.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewBufferString(reqParamsStr))
	if nil != err {
		if errutil.IsContext(ctx) {
			return nil, ctx.Err()
		}

		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to create refresh token request: %v", err)).Append(flawP)
	}
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Add("Authorization", "Basic "+base64.StdEncoding.Strict().EncodeToString([]byte(creds.ClientID+":"+creds.ClientSecret)))

	client := http.Client{Timeout: config.AccessTokenRequestTimeout} //nolint:exhaustruct
	resp, err := client.Do(req)
	if nil != err {
		switch {
		case errutil.IsContext(ctx):
			return nil, ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			return nil, context.DeadlineExceeded
		default:
			flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
			return nil, flaw.From(fmt.Errorf("failed to issue refresh token request: %v", err)).Append(flawP)
		}
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			flawP["err_debug_tree"] = errutil.Tree(closeErr).FlawP()
			closeErr = flaw.From(fmt.Errorf("failed to close response body: %v", closeErr)).Append(flawP)
			switch {
			case nil == err:
				err = closeErr
			case errutil.IsContext(ctx):
				err = flaw.From(errors.New("context was ended")).Join(closeErr)
			case errors.Is(err, context.DeadlineExceeded):
				err = flaw.From(errors.New("timeout has reached")).Join(closeErr)
			case errutil.IsFlaw(err):
				err = must.Flaw(err).Join(closeErr)
			default:
				// Keep the typed rejection visible to callers.
				logger.Error().Func(log.Flaw(closeErr)).Msg("Failed to close token endpoint response body")
			}
		}
	}()
	flawP["response"] = errutil.HTTPResponseFlawPayload(resp)

	if code := resp.StatusCode; code < 200 || code > 299 {
		respBytes, err := httputil.ReadOptionalResponseBody(ctx, resp)
		if nil != err {
			return nil, err
		}
		retryAfter, _ := ratelimit.RetryAfter(resp)
		logger.
			Error().
			Int("status", code).
			Str("status_text", http.StatusText(code)).
			RawJSON("error", httputil.ErrorBody(respBytes)).
			Str("retry_after", retryAfter).
			Msg("Token endpoint error")
		return nil, &RejectedError{
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
	var respBody struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(respBytes, &respBody); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to decode token response body: %v", err)).Append(flawP)
	}
	if respBody.AccessToken == "" {
		return nil, flaw.From(errors.New("token response does not contain an access token")).Append(flawP)
	}
	logger.
		Trace().
		Str("access_token", log.RedactString(respBody.AccessToken)).
		Int("expires_in", respBody.ExpiresIn).
		Msg("Access token refreshed")

	return &RefreshResult{
		AccessToken: respBody.AccessToken,
		ExpiresIn:   respBody.ExpiresIn,
	}, nil
}
