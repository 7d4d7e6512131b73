package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/xeptore/spotfolio/httputil"
	"github.com/xeptore/spotfolio/log"
	"github.com/xeptore/spotfolio/playlist"
)

const (
	playlistSourceHeader = "X-Playlist-Source"
	playlistCacheControl = "public, s-maxage=300, stale-while-revalidate=600"
)

func (s *Server) playlistTracks(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With().Str("handler", "playlist").Logger()
	start := time.Now()

	res, err := s.playlists.Tracks(r.Context())
	if nil != err {
		logger.Error().Func(log.Flaw(err)).Msg("Playlist is unavailable")
		msg := "Failed to fetch playlist tracks"
		if unavailable := new(playlist.UnavailableError); errors.As(err, &unavailable) {
			msg = "API request failed and no backup available"
		}
		httputil.WriteJSON(w, logger, http.StatusInternalServerError, playlistError{
			Error:         errorMessage(err, "Failed to fetch playlist tracks from Spotify"),
			Message:       msg,
			Tracks:        []playlistTrack{},
			Total:         0,
			OriginalTotal: 0,
		})
		return
	}

	formatted := formatPlaylist(res.Items)
	found := searchPlaylist(formatted, r.URL.Query().Get("search"))

	w.Header().Set("Cache-Control", playlistCacheControl)
	w.Header().Set(playlistSourceHeader, string(res.Source))
	httputil.WriteJSON(w, logger, http.StatusOK, playlistResponse{
		Tracks:        found,
		Total:         len(found),
		OriginalTotal: len(formatted),
		Source:        string(res.Source),
	})
	logger.
		Debug().
		Str("source", string(res.Source)).
		Int("total", len(found)).
		Int("original_total", len(formatted)).
		Dur("elapsed", time.Since(start)).
		Msg("Playlist served")
}

func (s *Server) createBackup(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With().Str("handler", "create_backup").Logger()
	logger.Info().Msg("Starting backup creation")
	start := time.Now()

	backup, err := s.playlists.Backup(r.Context())
	if nil != err {
		logger.Error().Func(log.Flaw(err)).Msg("Failed to create playlist backup")
		msg := "Could not create backup - API request failed"
		if saveErr := new(playlist.SaveError); errors.As(err, &saveErr) {
			msg = "An unexpected error occurred while creating backup"
		}
		httputil.WriteJSON(w, logger, http.StatusInternalServerError, backupError{
			Error:   errorMessage(err, "Failed to create backup"),
			Message: msg,
		})
		return
	}

	httputil.WriteJSON(w, logger, http.StatusOK, backupCreated{
		Success:    true,
		Message:    "Backup created successfully",
		TrackCount: backup.Metadata.TrackCount,
		Duration:   formatSeconds(time.Since(start)),
		BackupPath: s.playlists.BackupPath(),
		SavedAt:    backup.Metadata.SavedAt,
	})
}

func (s *Server) backupStatus(w http.ResponseWriter, _ *http.Request) {
	logger := s.logger.With().Str("handler", "backup_status").Logger()

	backup := s.playlists.Status()
	if nil == backup {
		httputil.WriteJSON(w, logger, http.StatusOK, backupMissing{
			Exists:     false,
			Message:    "No backup file found",
			BackupPath: s.playlists.BackupPath(),
		})
		return
	}

	httputil.WriteJSON(w, logger, http.StatusOK, backupFound{
		Exists:     true,
		Metadata:   backup.Metadata,
		TrackCount: len(backup.Tracks),
		BackupPath: s.playlists.BackupPath(),
	})
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}
