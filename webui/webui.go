// CLAUDE:SUMMARY HTTP management surface: settings, history, export trigger, embedded options page.
// Package webui exposes the management API and the embedded options
// page over HTTP. It is a thin layer over snap.Service; every handler
// decodes, delegates, and encodes.
package webui

import (
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/tabsnap/export"
	"github.com/hazyhaar/tabsnap/history"
	"github.com/hazyhaar/tabsnap/session"
	"github.com/hazyhaar/tabsnap/settings"
	"github.com/hazyhaar/tabsnap/shield"
	"github.com/hazyhaar/tabsnap/snap"
)

//go:embed static
var staticFS embed.FS

// Server serves the management API.
type Server struct {
	svc    *snap.Service
	logger *slog.Logger
}

// New creates a Server over svc.
func New(svc *snap.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, logger: logger}
}

// Router builds the chi router with the full middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	for _, mw := range shield.DefaultStack() {
		r.Use(mw)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Get("/api/settings", s.handleGetSettings)
	r.Put("/api/settings", s.handlePutSettings)

	r.Get("/api/history", s.handleListHistory)
	r.Delete("/api/history", s.handleDeleteHistory)

	r.Post("/api/export", s.handleExport)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("webui: embedded static tree missing: " + err.Error())
	}
	r.Handle("/*", http.FileServerFS(static))

	return r
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	prefs, err := s.svc.Settings()
	if err != nil {
		writeError(w, 500, err)
		return
	}
	writeJSON(w, 200, prefs)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var prefs settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeError(w, 400, err)
		return
	}
	if err := s.svc.UpdateSettings(prefs); err != nil {
		writeError(w, 400, err)
		return
	}
	writeJSON(w, 200, prefs)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.svc.History(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if sessions == nil {
		sessions = []session.Session{}
	}
	writeJSON(w, 200, sessions)
}

// handleDeleteHistory clears all history, or only the sessions matching
// the ?timestamp= query when one is given. Timestamps contain slashes
// and commas, so they travel as a query parameter, not a path segment.
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	ts := r.URL.Query().Get("timestamp")
	var err error
	if ts == "" {
		err = s.svc.ClearHistory(r.Context())
	} else {
		err = s.svc.DeleteSession(r.Context(), ts)
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, 200, map[string]string{"status": "deleted"})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req snap.ExportRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, 400, err)
			return
		}
	}
	res, err := s.svc.Export(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, 200, res)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, history.ErrNotFound):
		return 404
	case errors.Is(err, snap.ErrNoTabs), errors.Is(err, snap.ErrHistoryOff):
		return 409
	case errors.Is(err, export.ErrUnknownFormat):
		return 400
	default:
		return 500
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
