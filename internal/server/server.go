// Package server exposes stored analysis results over HTTP for the external
// dashboard: a JSON API plus a rendered markdown report per app. It is
// read-only; ingestion and analysis happen through the CLI.
package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/seagull/internal/database"
	"github.com/TobiSchelling/seagull/internal/period"
	"github.com/TobiSchelling/seagull/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

var md = goldmark.New()

// Server is the HTTP server for serving analysis results.
type Server struct {
	dataDir string
	pages   map[string]*template.Template
	mux     *http.ServeMux
}

// New creates a new Server over the given data directory.
func New(dataDir string) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
	}

	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	pageNames := []string{"index.html", "report.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{dataDir: dataDir, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/report/", s.handleReport)
	s.mux.HandleFunc("/api/apps", s.handleAPIApps)
	s.mux.HandleFunc("/api/apps/", s.handleAPIApp)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	apps, err := database.ListApps(s.dataDir)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "index.html", map[string]any{
		"Apps": apps,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	appID := strings.TrimPrefix(r.URL.Path, "/report/")
	if appID == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	db, ok := s.openApp(w, appID)
	if !ok {
		return
	}
	defer db.Close()

	markdown, err := report.Build(db)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "report.html", map[string]any{
		"AppID":  appID,
		"Report": markdown,
	})
}

func (s *Server) handleAPIApps(w http.ResponseWriter, r *http.Request) {
	apps, err := database.ListApps(s.dataDir)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if apps == nil {
		apps = []database.AppInfo{}
	}
	writeJSON(w, apps)
}

// handleAPIApp serves /api/apps/{id}/analyses and /api/apps/{id}/themes.
func (s *Server) handleAPIApp(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/apps/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	appID, resource := parts[0], parts[1]

	db, ok := s.openApp(w, appID)
	if !ok {
		return
	}
	defer db.Close()

	switch resource {
	case "analyses":
		periodType := r.URL.Query().Get("type")
		if periodType == "" {
			periodType = period.Monthly
		}
		analyses, err := db.GetPeriodAnalyses(periodType)
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if analyses == nil {
			analyses = []database.PeriodAnalysis{}
		}
		writeJSON(w, analyses)

	case "themes":
		periodType := r.URL.Query().Get("type")
		label := r.URL.Query().Get("label")
		if periodType == "" || label == "" {
			http.Error(w, "type and label query parameters are required", http.StatusBadRequest)
			return
		}
		themes, err := db.GetThemes(periodType, label)
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if themes == nil {
			themes = []database.Theme{}
		}
		writeJSON(w, themes)

	default:
		http.NotFound(w, r)
	}
}

// openApp opens an app's database, writing a 404 when the app is unknown.
func (s *Server) openApp(w http.ResponseWriter, appID string) (*database.DB, bool) {
	path := database.PathForApp(s.dataDir, appID)
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "App not found", http.StatusNotFound)
		return nil, false
	}
	db, err := database.Open(path)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil, false
	}
	return db, true
}

func (s *Server) render(w http.ResponseWriter, page string, data map[string]any) {
	tmpl, ok := s.pages[page]
	if !ok {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		log.Printf("Error rendering %s: %v", page, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// Serve starts the HTTP server on the given port.
func Serve(dataDir string, port int) error {
	s, err := New(dataDir)
	if err != nil {
		return err
	}
	addr := fmt.Sprintf(":%d", port)
	log.Printf("Serving analysis results at http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}
