// Package server serves the risk dashboard: server-rendered pages for
// browsing sessions, a JSON API driving the live view, and a websocket
// stream of timeline entries.
package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/yuin/goldmark"

	"github.com/prosentry/prosentry/internal/database"
	"github.com/prosentry/prosentry/internal/report"
	"github.com/prosentry/prosentry/internal/risk"
	"github.com/prosentry/prosentry/internal/simulate"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Server is the HTTP server for the dashboard.
type Server struct {
	runner *simulate.Runner
	db     *database.DB
	pages  map[string]*template.Template
	mux    *http.ServeMux

	// Readings staged by upload or demo selection, consumed by start.
	mu         sync.Mutex
	loaded     []risk.Reading
	loadedName string
	loadedSrc  string
}

// New creates a new Server. db may be nil; history pages then show
// nothing and the live view still works.
func New(runner *simulate.Runner, db *database.DB) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the clone.
	// This gives each page its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"dashboard.html", "sessions.html", "session.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{runner: runner, db: db, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Pages
	s.mux.HandleFunc("/", s.handleDashboard)
	s.mux.HandleFunc("/sessions", s.handleSessions)
	s.mux.HandleFunc("/sessions/", s.handleSession)

	// JSON API
	s.mux.HandleFunc("/api/state", s.handleState)
	s.mux.HandleFunc("/api/upload", s.handleUpload)
	s.mux.HandleFunc("/api/start", s.handleStart)
	s.mux.HandleFunc("/api/stop", s.handleStop)
	s.mux.HandleFunc("/api/alert/ack", s.handleAlertAck)

	// Live updates
	s.mux.HandleFunc("/ws", s.handleWS)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	var stats *database.Stats
	if s.db != nil {
		stats, _ = s.db.GetStats()
	}

	s.render(w, "dashboard.html", map[string]any{
		"Snapshot": s.runner.Snapshot(),
		"Stats":    stats,
	})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	var sessions []database.Session
	if s.db != nil {
		sessions, _ = s.db.GetRecentSessions(50)
	}
	s.render(w, "sessions.html", map[string]any{
		"Sessions": sessions,
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if id == "" || s.db == nil {
		http.Redirect(w, r, "/sessions", http.StatusFound)
		return
	}

	session, err := s.db.GetSession(id)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if session == nil {
		http.NotFound(w, r)
		return
	}

	results, _ := s.db.GetSessionResults(id)
	alerts, _ := s.db.GetSessionAlerts(id)

	s.render(w, "session.html", map[string]any{
		"Session": session,
		"Report":  report.Compose(session, results, alerts),
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(runner *simulate.Runner, db *database.DB, port int) error {
	srv, err := New(runner, db)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
