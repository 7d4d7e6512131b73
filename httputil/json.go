package httputil

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// WriteJSON writes v as the JSON response body with the given status code.
func WriteJSON(w http.ResponseWriter, logger zerolog.Logger, status int, v any) {
	b, err := json.MarshalWithOption(v, json.DisableHTMLEscape())
	if nil != err {
		logger.Error().Err(err).Msg("Failed to encode response body")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to encode response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(b); nil != err {
		logger.Debug().Err(err).Msg("Failed to write response body")
	}
}
