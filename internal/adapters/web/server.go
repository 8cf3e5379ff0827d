// Package web serves the vlink JSON API over HTTP.
// Binds to localhost only, so no auth is needed.
package web

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/corey/vlink/internal/adapters/socket"
	"github.com/corey/vlink/internal/ports"
)

// maxBody caps request bodies (documents and HTML fragments).
const maxBody = 8 << 20

// Server serves the JSON API over HTTP.
type Server struct {
	queries  socket.AppQueries
	listener net.Listener
	httpSrv  *http.Server
	port     int
	stopOnce sync.Once

	portFilePath string // .vlink/http.port
}

// NewServer creates an HTTP server answering from queries.
// The portFilePath is where the bound port is written for discovery.
func NewServer(queries socket.AppQueries, portFilePath string) *Server {
	return &Server{
		queries:      queries,
		portFilePath: portFilePath,
	}
}

// DefaultPort computes a vault-specific port: 19000 + (hash(abs_path) % 1000).
func DefaultPort(vaultRoot string) int {
	abs, err := filepath.Abs(vaultRoot)
	if err != nil {
		abs = vaultRoot
	}
	h := sha256.Sum256([]byte(abs))
	n := uint32(h[0])<<24 | uint32(h[1])<<16 | uint32(h[2])<<8 | uint32(h[3])
	return 19000 + int(n%1000)
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	mux.HandleFunc("GET /api/mentions", s.handleMentions)
	mux.HandleFunc("POST /api/annotate", s.handleAnnotate)
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("POST /api/rebuild", s.handleRebuild)
	return mux
}

// Start begins listening on the preferred port. Writes the port to .vlink/http.port.
func (s *Server) Start(preferredPort int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", preferredPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port

	s.httpSrv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	if s.portFilePath != "" {
		os.WriteFile(s.portFilePath, []byte(fmt.Sprintf("%d", s.port)), 0644)
	}

	go s.httpSrv.Serve(ln)
	return nil
}

// Stop gracefully shuts down the HTTP server. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpSrv.Shutdown(ctx)
		}
		if s.portFilePath != "" {
			os.Remove(s.portFilePath)
		}
	})
}

// Port returns the bound port number.
func (s *Server) Port() int {
	return s.port
}

// URL returns the API base URL.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	result := &socket.HealthResult{Status: "ok"}
	if s.queries != nil {
		result = s.queries.Health()
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if !s.available(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.queries.CatalogInfo())
}

func (s *Server) handleMentions(w http.ResponseWriter, r *http.Request) {
	if !s.available(w) {
		return
	}
	target := r.URL.Query().Get("target")
	if target == "" {
		writeError(w, http.StatusBadRequest, "target is required")
		return
	}
	result, err := s.queries.Mentions(target)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	if !s.available(w) {
		return
	}
	var params socket.AnnotateParams
	if err := decodeBody(w, r, &params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid annotate body")
		return
	}
	if params.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	result, err := s.queries.Annotate(params)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if !s.available(w) {
		return
	}
	var params socket.RenderParams
	if err := decodeBody(w, r, &params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid render body")
		return
	}
	result, err := s.queries.Render(params)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if !s.available(w) {
		return
	}
	result, err := s.queries.Rebuild()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) available(w http.ResponseWriter) bool {
	if s.queries == nil {
		writeError(w, http.StatusServiceUnavailable, "linker not available")
		return false
	}
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(dst)
}

func statusFor(err error) int {
	if errors.Is(err, ports.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
