package web

import (
	"net/http"

	"github.com/JonMunkholm/autoprep/internal/core"
	"github.com/JonMunkholm/autoprep/internal/logging"
	"github.com/JonMunkholm/autoprep/internal/web/views"
)

// handleIndex renders the landing page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := views.IndexData{Mode: "local", Target: s.persist.Target()}
	if s.persist.Remote() {
		data.Mode = "backend"
	}
	for _, sm := range core.Samples() {
		data.Samples = append(data.Samples, views.SampleLink{Key: sm.Key, Name: sm.Name})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.Index(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}
