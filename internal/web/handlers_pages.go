package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/CleanCSV/internal/web/templates"
)

func (s *Server) formatOptions() []templates.FormatOption {
	defs := s.service.Formats()
	out := make([]templates.FormatOption, len(defs))
	for i, d := range defs {
		out[i] = templates.FormatOption{Key: d.Key, Label: d.Label}
	}
	return out
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.IndexPage(templates.IndexParams{
		Formats:  s.formatOptions(),
		Sessions: s.service.List(),
	}).Render(r.Context(), w)
}

func (s *Server) handleSessionPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.service.Session(id)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	preview, err := s.service.Preview(id, 0)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.SessionPage(templates.SessionParams{
		Summary:      sess.Summary(),
		Preview:      preview,
		Formats:      s.formatOptions(),
		StoreEnabled: s.service.HasStore(),
		Notice:       r.URL.Query().Get("notice"),
	}).Render(r.Context(), w)
}
