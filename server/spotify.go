package server

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	spotifyapi "github.com/zmb3/spotify/v2"

	"github.com/xeptore/spotfolio/constant"
	"github.com/xeptore/spotfolio/httputil"
	"github.com/xeptore/spotfolio/log"
	"github.com/xeptore/spotfolio/ratelimit"
)

const (
	albumImageIndex  = 1
	artistImageIndex = 1

	topTracksFallbackMessage  = "Failed to fetch top tracks"
	topArtistsFallbackMessage = "Failed to fetch top artists"
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, s.logger, http.StatusOK, healthResponse{Status: "ok", Version: constant.Version})
}

// nowPlaying never fails from the caller's point of view. Anything short of a
// decodable currently-playing body is reported as not playing.
func (s *Server) nowPlaying(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With().Str("handler", "now_playing").Logger()
	notPlaying := nowPlayingResponse{IsPlaying: false} //nolint:exhaustruct

	resp, err := s.spotify.NowPlaying(r.Context())
	if nil != err {
		logger.Error().Func(log.Flaw(err)).Msg("Failed to get currently playing track")
		httputil.WriteJSON(w, logger, http.StatusOK, notPlaying)
		return
	}
	defer closeBody(logger, resp)

	if resp.StatusCode == http.StatusNoContent || !isSuccess(resp.StatusCode) {
		httputil.WriteJSON(w, logger, http.StatusOK, notPlaying)
		return
	}

	b, err := readBody(r.Context(), resp)
	if nil != err {
		logger.Error().Func(log.Flaw(err)).Msg("Failed to read currently playing response")
		httputil.WriteJSON(w, logger, http.StatusOK, notPlaying)
		return
	}
	if len(b) == 0 {
		httputil.WriteJSON(w, logger, http.StatusOK, notPlaying)
		return
	}

	var playing spotifyapi.CurrentlyPlaying
	if err := json.Unmarshal(b, &playing); nil != err {
		logger.Error().Err(err).Msg("Failed to decode currently playing response")
		httputil.WriteJSON(w, logger, http.StatusOK, notPlaying)
		return
	}

	out := nowPlayingResponse{IsPlaying: playing.Playing} //nolint:exhaustruct
	if item := playing.Item; nil != item {
		out.Title = item.Name
		out.SongURL = item.ExternalURLs["spotify"]
		out.Album = item.Album.Name
		out.AlbumImageURL = imageURL(item.Album.Images, albumImageIndex)
		out.Artists = artistLinks(item.Artists)
	}
	httputil.WriteJSON(w, logger, http.StatusOK, out)
}

func (s *Server) topTracks(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With().Str("handler", "top_tracks").Logger()

	resp, err := s.spotify.TopTracks(r.Context())
	if nil != err {
		logger.Error().Func(log.Flaw(err)).Msg("Failed to get top tracks")
		httputil.WriteJSON(w, logger, http.StatusInternalServerError, topTracksError{Error: errorMessage(err, topTracksFallbackMessage), Tracks: []topTrack{}})
		return
	}
	defer closeBody(logger, resp)

	b, err := readBody(r.Context(), resp)
	if nil != err {
		logger.Error().Func(log.Flaw(err)).Msg("Failed to read top tracks response")
		httputil.WriteJSON(w, logger, http.StatusInternalServerError, topTracksError{Error: errorMessage(err, topTracksFallbackMessage), Tracks: []topTrack{}})
		return
	}

	if !isSuccess(resp.StatusCode) {
		forwardRetryAfter(w, resp)
		httputil.WriteJSON(w, logger, resp.StatusCode, topTracksError{Error: httputil.ErrorMessageOr(b, topTracksFallbackMessage), Tracks: []topTrack{}})
		return
	}

	var page spotifyapi.FullTrackPage
	if len(b) > 0 {
		if err := json.Unmarshal(b, &page); nil != err {
			logger.Error().Err(err).Msg("Failed to decode top tracks response")
			httputil.WriteJSON(w, logger, http.StatusInternalServerError, topTracksError{Error: "Failed to decode top tracks response", Tracks: []topTrack{}})
			return
		}
	}

	tracks := lo.Map(page.Tracks, func(t spotifyapi.FullTrack, _ int) topTrack {
		return topTrack{
			Title:         t.Name,
			SongURL:       t.ExternalURLs["spotify"],
			AlbumImageURL: imageURL(t.Album.Images, albumImageIndex),
			Artists:       artistLinks(t.Artists),
		}
	})
	httputil.WriteJSON(w, logger, http.StatusOK, tracks)
}

func (s *Server) topArtists(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With().Str("handler", "top_artists").Logger()

	resp, err := s.spotify.TopArtists(r.Context())
	if nil != err {
		logger.Error().Func(log.Flaw(err)).Msg("Failed to get top artists")
		httputil.WriteJSON(w, logger, http.StatusInternalServerError, topArtistsError{Error: errorMessage(err, topArtistsFallbackMessage), Artists: []topArtist{}})
		return
	}
	defer closeBody(logger, resp)

	b, err := readBody(r.Context(), resp)
	if nil != err {
		logger.Error().Func(log.Flaw(err)).Msg("Failed to read top artists response")
		httputil.WriteJSON(w, logger, http.StatusInternalServerError, topArtistsError{Error: errorMessage(err, topArtistsFallbackMessage), Artists: []topArtist{}})
		return
	}

	if !isSuccess(resp.StatusCode) {
		forwardRetryAfter(w, resp)
		httputil.WriteJSON(w, logger, resp.StatusCode, topArtistsError{Error: httputil.ErrorMessageOr(b, topArtistsFallbackMessage), Artists: []topArtist{}})
		return
	}

	var page spotifyapi.FullArtistPage
	if len(b) > 0 {
		if err := json.Unmarshal(b, &page); nil != err {
			logger.Error().Err(err).Msg("Failed to decode top artists response")
			httputil.WriteJSON(w, logger, http.StatusInternalServerError, topArtistsError{Error: "Failed to decode top artists response", Artists: []topArtist{}})
			return
		}
	}

	artists := lo.Map(page.Artists, func(a spotifyapi.FullArtist, _ int) topArtist {
		return topArtist{
			Name:      a.Name,
			ImageURL:  imageURL(a.Images, artistImageIndex),
			ArtistURL: a.ExternalURLs["spotify"],
		}
	})
	httputil.WriteJSON(w, logger, http.StatusOK, artists)
}

func readBody(ctx context.Context, resp *http.Response) ([]byte, error) {
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	return httputil.ReadOptionalResponseBody(ctx, resp)
}

// forwardRetryAfter copies a valid upstream Retry-After header to w as a
// number of seconds.
func forwardRetryAfter(w http.ResponseWriter, resp *http.Response) {
	v, ok := ratelimit.RetryAfter(resp)
	if !ok {
		return
	}
	if d, ok := ratelimit.RetryAfterDuration(v, time.Now()); ok {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(d.Seconds()))))
	}
}

func closeBody(logger zerolog.Logger, resp *http.Response) {
	if err := resp.Body.Close(); nil != err {
		logger.Debug().Err(err).Msg("Failed to close upstream response body")
	}
}

func imageURL(images []spotifyapi.Image, i int) string {
	if i < len(images) {
		return images[i].URL
	}
	return ""
}

func artistLinks(artists []spotifyapi.SimpleArtist) []artistLink {
	return lo.Map(artists, func(a spotifyapi.SimpleArtist, _ int) artistLink {
		return artistLink{Name: a.Name, URL: a.ExternalURLs["spotify"]}
	})
}

func errorMessage(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

func isSuccess(code int) bool {
	return code >= 200 && code <= 299
}
