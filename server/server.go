package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/spotfolio/config"
	"github.com/xeptore/spotfolio/ctxutil"
	"github.com/xeptore/spotfolio/errutil"
	"github.com/xeptore/spotfolio/playlist"
	"github.com/xeptore/spotfolio/spotify/fs"
)

type Spotify interface {
	NowPlaying(ctx context.Context) (*http.Response, error)
	TopTracks(ctx context.Context) (*http.Response, error)
	TopArtists(ctx context.Context) (*http.Response, error)
}

type Playlists interface {
	Tracks(ctx context.Context) (*playlist.Result, error)
	Backup(ctx context.Context) (*fs.PlaylistBackup, error)
	Status() *fs.PlaylistBackup
	BackupPath() string
}

type Server struct {
	spotify      Spotify
	playlists    Playlists
	backupAPIKey string
	logger       zerolog.Logger
	handler      http.Handler
}

// New returns a Server. POST backup requests require backupAPIKey as a bearer
// token unless it is empty.
func New(spotify Spotify, playlists Playlists, backupAPIKey string, logger zerolog.Logger) *Server {
	s := &Server{
		spotify:      spotify,
		playlists:    playlists,
		backupAPIKey: backupAPIKey,
		logger:       logger,
		handler:      nil,
	}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(s.notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowed)

	router.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	api := router.PathPrefix("/api/spotify").Subrouter()
	api.HandleFunc("/now-playing", s.nowPlaying).Methods(http.MethodGet)
	api.HandleFunc("/top-tracks", s.topTracks).Methods(http.MethodGet)
	api.HandleFunc("/top-artists", s.topArtists).Methods(http.MethodGet)
	api.HandleFunc("/playlist", s.playlistTracks).Methods(http.MethodGet)
	api.HandleFunc("/playlist/backup", s.authorizeBackup(s.createBackup)).Methods(http.MethodPost)
	api.HandleFunc("/playlist/backup", s.backupStatus).Methods(http.MethodGet)

	s.handler = withCORS(s.withRequestLog(s.withRecover(router)))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Run listens on addr and serves until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if nil != err {
		if errutil.IsContext(ctx) {
			return ctx.Err()
		}
		flawP := flaw.P{"address": addr, "err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("failed to listen: %v", err)).Append(flawP)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully, giving in-flight requests a grace period to complete.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{ //nolint:exhaustruct
		Handler:           s,
		ReadHeaderTimeout: config.ServerReadHeaderTimeout,
		ReadTimeout:       config.ServerReadTimeout,
		WriteTimeout:      config.ServerWriteTimeout,
		IdleTimeout:       config.ServerIdleTimeout,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Serve(ln)
	}()
	s.logger.Info().Str("address", ln.Addr().String()).Msg("Server started")

	select {
	case err := <-errs:
		flawP := flaw.P{"address": ln.Addr().String(), "err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("server stopped unexpectedly: %v", err)).Append(flawP)
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down server")
	shutdownCtx, cancel := ctxutil.WithDelayedTimeout(ctx, config.ServerShutdownGracePeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("failed to shutdown server gracefully: %v", err)).Append(flawP)
	}
	if err := <-errs; nil != err && !errors.Is(err, http.ErrServerClosed) {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("server stopped with error: %v", err)).Append(flawP)
	}
	s.logger.Info().Msg("Server stopped")

	return nil
}
