package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/xeptore/spotfolio/httputil"
	"github.com/xeptore/spotfolio/log"
)

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", playlistSourceHeader)
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.
			Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("Request served")
	})
}

func (s *Server) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); nil != v {
				if v == http.ErrAbortHandler { //nolint:errorlint
					panic(v)
				}
				s.logger.Error().Func(log.Panic(v)).Str("path", r.URL.Path).Msg("Recovered from handler panic")
				httputil.WriteJSON(w, s.logger, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authorizeBackup requires the configured backup API key as a bearer token.
// Requests pass through when no key is configured.
func (s *Server) authorizeBackup(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.backupAPIKey == "" {
			next(w, r)
			return
		}

		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.backupAPIKey)) != 1 {
			s.logger.Warn().Str("remote_addr", r.RemoteAddr).Msg("Rejected unauthorized backup request")
			httputil.WriteJSON(w, s.logger, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
			return
		}
		next(w, r)
	}
}

func (s *Server) notFound(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, s.logger, http.StatusNotFound, errorResponse{Error: "Not found"})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, s.logger, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
}
