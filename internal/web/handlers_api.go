package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/CleanCSV/internal/core"
)

// FormatResponse describes one registered file format.
type FormatResponse struct {
	Key        string   `json:"key"`
	Label      string   `json:"label"`
	Extensions []string `json:"extensions"`
}

// StatusResponse reports load capacity and open sessions.
type StatusResponse struct {
	Loads    core.LoadLimiterStatus `json:"loads"`
	Sessions int                    `json:"sessions"`
	Store    bool                   `json:"store"`
}

// ExportStoreResponse is returned after writing a dataset to the store.
type ExportStoreResponse struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, StatusResponse{
		Loads:    s.service.LoaderStatus(),
		Sessions: len(s.service.List()),
		Store:    s.service.HasStore(),
	})
}

func (s *Server) handleListFormats(w http.ResponseWriter, r *http.Request) {
	defs := s.service.Formats()
	out := make([]FormatResponse, len(defs))
	for i, d := range defs {
		out[i] = FormatResponse{Key: d.Key, Label: d.Label, Extensions: d.Extensions}
	}
	writeJSON(r.Context(), w, out)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, s.service.List())
}

// handleLoad reads a multipart upload into a new session.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Clean.MaxFileSize+1<<20)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.respondError(w, r, fmt.Errorf("%w: %v", core.ErrFileTooLarge, err), 0)
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %v", core.ErrNoFile, err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, core.ErrNoFile, 0)
		return
	}
	defer file.Close()

	sess, err := s.service.Load(r.Context(), core.LoadRequest{
		FileName: filepath.Base(header.Filename),
		Format:   r.FormValue("format"),
		Encoding: r.FormValue("encoding"),
		Sheet:    r.FormValue("sheet"),
		Replace:  r.FormValue("replace"),
		Body:     file,
	})
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	if wantsHTML(r) {
		http.Redirect(w, r, "/sessions/"+url.PathEscape(sess.ID), http.StatusSeeOther)
		return
	}
	writeJSONStatus(r.Context(), w, http.StatusCreated, sess.Summary())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.Session(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(r.Context(), w, sess.Summary())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Close(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleClean runs the pipeline with options from a JSON body or form
// fields and returns the report.
func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	cfg, err := parseCleaningConfig(w, r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	report, err := s.service.Clean(r.Context(), id, cfg)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	if wantsHTML(r) {
		http.Redirect(w, r, "/sessions/"+url.PathEscape(id), http.StatusSeeOther)
		return
	}
	writeJSON(r.Context(), w, report)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.service.Reset(id); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	sess, err := s.service.Session(id)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(r.Context(), w, sess.Summary())
}

// handlePreview returns the text rendering of the working copy. rows=all
// renders every row.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	rows, err := parseRows(r.URL.Query().Get("rows"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	out, err := s.service.Preview(chi.URLParam(r, "id"), rows)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(out))
}

// handleExport downloads the working copy. The format defaults to the one
// the file was loaded in.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.service.Session(id)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = sess.Format
	}
	def, ok := core.Get(format)
	if !ok {
		s.respondError(w, r, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, format), 0)
		return
	}

	// Encode fully before writing so a failure can still produce an error response.
	var buf bytes.Buffer
	if err := s.service.Export(r.Context(), id, def.Key, &buf); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	w.Header().Set("Content-Type", def.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportName(sess.FileName, def)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w)
}

func (s *Server) handleExportStore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := r.FormValue("table")

	n, err := s.service.ExportToStore(r.Context(), id, name)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	if wantsHTML(r) {
		notice := fmt.Sprintf("Exported %d rows to table %s.", n, name)
		http.Redirect(w, r, "/sessions/"+url.PathEscape(id)+"?notice="+url.QueryEscape(notice), http.StatusSeeOther)
		return
	}
	writeJSON(r.Context(), w, ExportStoreResponse{Table: name, Rows: n})
}

// parseCleaningConfig reads options from a JSON body, or from form fields
// named after the JSON keys (checkboxes send "on").
func parseCleaningConfig(w http.ResponseWriter, r *http.Request) (core.CleaningConfig, error) {
	var cfg core.CleaningConfig

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("invalid cleaning options: %w", err)
		}
		return cfg, nil
	}

	if err := r.ParseForm(); err != nil {
		return cfg, fmt.Errorf("invalid cleaning options: %w", err)
	}
	cfg.DropMissing = formBool(r, "drop_missing")
	cfg.CoerceNumeric = core.CoerceStep{
		Enabled: formBool(r, "coerce_numeric"),
		Column:  r.PostFormValue("coerce_column"),
	}
	cfg.DropDuplicates = formBool(r, "drop_duplicates")
	cfg.FindReplace = core.FindReplaceStep{
		Enabled: formBool(r, "find_replace"),
		Find:    r.PostFormValue("find"),
		Replace: r.PostFormValue("replace"),
	}
	return cfg, nil
}

func formBool(r *http.Request, name string) bool {
	switch strings.ToLower(r.PostFormValue(name)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// parseRows reads the preview length. Empty means the server default.
func parseRows(v string) (int, error) {
	switch v {
	case "":
		return 0, nil
	case "all":
		return -1, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid rows parameter %q", v)
	}
	return n, nil
}

// exportName derives the download name: people.csv saved as xlsx becomes
// people_cleaned.xlsx.
func exportName(fileName string, def core.FormatDefinition) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	if base == "" {
		base = "dataset"
	}
	ext := "." + def.Key
	if len(def.Extensions) > 0 {
		ext = def.Extensions[0]
	}
	return base + "_cleaned" + ext
}
