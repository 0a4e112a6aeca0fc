// Package preview serves a live rendering of an annotated document and
// reloads connected browsers whenever the file changes on disk.
package preview

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/FocuswithJustin/TextIndex/core/textindex"
	"github.com/FocuswithJustin/TextIndex/internal/fileutil"
	"github.com/FocuswithJustin/TextIndex/internal/logging"
	"github.com/FocuswithJustin/TextIndex/internal/server"
)

//go:embed templates/preview.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/preview.html"))

// Config holds preview server configuration.
type Config struct {
	Port     int
	Path     string            // document to watch
	Options  textindex.Options // pipeline options used for each render
	Interval time.Duration     // poll interval; defaults to 500ms
}

// Status is the machine-readable state of the last render.
type Status struct {
	Path        string    `json:"path"`
	Tokens      int       `json:"tokens"`
	Entries     int       `json:"entries"`
	Occurrences int       `json:"occurrences"`
	Warnings    []string  `json:"warnings,omitempty"`
	Error       string    `json:"error,omitempty"`
	Clients     int       `json:"clients"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Server owns the rendered page, the reload hub, and the file watcher.
type Server struct {
	cfg    Config
	hub    *Hub
	mu     sync.RWMutex
	page   []byte
	status Status
}

// New creates a preview server for the document at cfg.Path.
func New(cfg Config) *Server {
	if cfg.Interval <= 0 {
		cfg.Interval = 500 * time.Millisecond
	}
	return &Server{cfg: cfg, hub: NewHub()}
}

type pageData struct {
	Title    string
	Body     template.HTML
	Warnings []string
	Error    string
}

// Refresh renders the watched document and replaces the served page.
// Failures produce an error page instead of a stale preview.
func (s *Server) Refresh() error {
	title := filepath.Base(s.cfg.Path)

	source, err := fileutil.ReadDocument(s.cfg.Path)
	if err != nil {
		s.setPage(pageData{Title: title, Error: err.Error()},
			Status{Path: s.cfg.Path, Error: err.Error()})
		return err
	}

	start := time.Now()
	result, err := textindex.Process(source, s.cfg.Options)
	if err != nil {
		s.setPage(pageData{Title: title, Error: err.Error()},
			Status{Path: s.cfg.Path, Error: err.Error()})
		return err
	}

	warnings := make([]string, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		warnings = append(warnings, w.String())
		logging.PipelineWarning(s.cfg.Path, w)
	}
	logging.DocumentProcessed(s.cfg.Path, result.Tokens, result.Entries,
		result.Occurrences, time.Since(start))

	s.setPage(
		pageData{Title: title, Body: template.HTML(result.Document), Warnings: warnings},
		Status{
			Path:        s.cfg.Path,
			Tokens:      result.Tokens,
			Entries:     result.Entries,
			Occurrences: result.Occurrences,
			Warnings:    warnings,
		},
	)
	return nil
}

func (s *Server) setPage(data pageData, status Status) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		logging.Error("preview template failed", "error", err)
		return
	}
	status.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	s.page = buf.Bytes()
	s.status = status
	s.mu.Unlock()
}

// Handler returns the preview routes wrapped in request logging and
// the standard security headers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return server.SecurityHeaders(server.PreviewCSP(), logging.CombinedMiddleware(mux))
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.mu.RLock()
	page := s.page
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	status := s.status
	s.mu.RUnlock()
	status.Clients = s.hub.ClientCount()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// fileStamp identifies one on-disk state of the watched document.
type fileStamp struct {
	modNanos int64
	size     int64
}

func (s *Server) stamp() fileStamp {
	info, err := os.Stat(s.cfg.Path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{modNanos: info.ModTime().UnixNano(), size: info.Size()}
}

// Watch polls the document and refreshes the page when its mtime or size
// changes, then tells connected browsers to reload. It returns when ctx
// is cancelled.
func (s *Server) Watch(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	last := s.stamp()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := s.stamp()
			if cur == last {
				continue
			}
			last = cur

			msg := Message{Type: "reload", Path: s.cfg.Path}
			if err := s.Refresh(); err != nil {
				msg.Type = "error"
				msg.Message = err.Error()
			}
			s.hub.Broadcast(msg)
		}
	}
}

// Start renders the document, starts the hub and the watcher, and serves
// until the listener fails. An initial render error is not fatal: the
// page shows it and the watcher picks up the next edit.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Refresh(); err != nil {
		logging.Warn("initial render failed", "path", s.cfg.Path, "error", err)
	}
	go s.hub.Run(ctx)
	go s.Watch(ctx)

	logging.ServerStartup("preview", "http", s.cfg.Port, "document", s.cfg.Path)
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	return http.ListenAndServe(addr, s.Handler())
}
