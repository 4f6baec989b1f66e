package apiutil

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"
)

// RenderHTML buffers the component so a render failure can still answer 500.
func RenderHTML(w http.ResponseWriter, r *http.Request, component templ.Component) bool {
	logger := log.Ctx(r.Context())
	var buf bytes.Buffer
	if err := component.Render(r.Context(), &buf); err != nil {
		logger.Error().Err(err).Msg("Failed to render page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return false
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error().Err(err).Msg("Failed to write response")
	}
	return true
}
