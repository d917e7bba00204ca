// Package server provides the weld development server: it serves
// flattened component bundles over HTTP, renders a browser harness page
// per component, and pushes live-reload notifications over a websocket
// when sources change.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/weldkit/weld/internal/config"
	welderrors "github.com/weldkit/weld/internal/errors"
	"github.com/weldkit/weld/internal/logging"
	"github.com/weldkit/weld/internal/resolver"
)

// Server is the weld development server
type Server struct {
	cfg    *config.Config
	logger logging.Logger

	mutex    sync.RWMutex
	resolver *resolver.Resolver

	hub        *reloadHub
	httpServer *http.Server
	started    time.Time
}

// New creates a development server around an initial resolver
func New(cfg *config.Config, res *resolver.Resolver, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger.WithComponent("server"),
		resolver: res,
		hub:      newReloadHub(logger),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/components", s.handleComponentIndex)
	mux.HandleFunc("/components/", s.handleComponent)
	mux.HandleFunc("/preview/", s.handlePreview)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleRoot)

	s.httpServer = &http.Server{
		Addr:              cfg.Address(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Resolver returns the currently active resolver
func (s *Server) Resolver() *resolver.Resolver {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.resolver
}

// SetResolver swaps in a freshly built resolver. Serve loops call this
// after a rebuild; in-flight requests keep the resolver they started
// with.
func (s *Server) SetResolver(res *resolver.Resolver) {
	s.mutex.Lock()
	s.resolver = res
	s.mutex.Unlock()
}

// NotifyReload tells connected browsers to reload
func (s *Server) NotifyReload() {
	s.hub.Broadcast("reload")
}

// ListenAndServe runs the server until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.started = time.Now()
	s.logger.Info(ctx, "development server listening",
		"address", s.cfg.Address(), "components", s.Resolver().Registry().Count())

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown()
	case err := <-errCh:
		return err
	}
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.hub.CloseAll()
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the HTTP handler, used by tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

type componentEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type indexResponse struct {
	Components []componentEntry `json:"components"`
	Count      int              `json:"count"`
}

func (s *Server) handleComponentIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	names := s.Resolver().Registry().Names()
	response := indexResponse{
		Components: make([]componentEntry, 0, len(names)),
		Count:      len(names),
	}
	for _, name := range names {
		response.Components = append(response.Components, componentEntry{
			Name: name,
			URL:  "/components/" + name + ".js",
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error(r.Context(), err, "failed to encode component index")
	}
}

// handleComponent serves a flattened component bundle. The identifier may
// be dotted or underscore-qualified, with an optional .js suffix.
func (s *Server) handleComponent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/components/")
	name = strings.TrimSuffix(name, ".js")
	if name == "" || strings.Contains(name, "/") {
		http.Error(w, "invalid component name", http.StatusBadRequest)
		return
	}

	content, err := s.Resolver().Resolve(name)
	if err != nil {
		s.writeResolveError(w, r, name, err)
		return
	}

	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(content))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/preview/")
	if name == "" || strings.Contains(name, "/") {
		http.Error(w, "invalid component name", http.StatusBadRequest)
		return
	}

	// Resolve first so a missing component 404s instead of rendering a
	// broken page.
	if _, err := s.Resolver().Resolve(name); err != nil {
		s.writeResolveError(w, r, name, err)
		return
	}

	page, err := harnessPage(name, s.cfg.Development.HotReload)
	if err != nil {
		s.logger.Error(r.Context(), err, "failed to build harness page", "component", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

func (s *Server) writeResolveError(w http.ResponseWriter, r *http.Request, name string, err error) {
	var nfe *welderrors.ComponentNotFoundError
	if errors.As(err, &nfe) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	var cde *welderrors.CyclicDependencyError
	if errors.As(err, &cde) {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.logger.Error(r.Context(), err, "resolve failed", "component", name)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":     "ok",
		"uptime":     time.Since(s.started).String(),
		"components": s.Resolver().Registry().Count(),
		"cached":     s.Resolver().CacheSize(),
		"clients":    s.hub.Count(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Error(r.Context(), err, "failed to encode health response")
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	names := s.Resolver().Registry().Names()
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head><title>weld</title></head>\n<body>\n")
	b.WriteString("<h1>Components</h1>\n<ul>\n")
	for _, name := range names {
		fmt.Fprintf(&b, "<li><a href=%q>%s</a></li>\n", "/preview/"+name, name)
	}
	b.WriteString("</ul>\n</body>\n</html>\n")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}
