// Package server exposes the rewrite proxy, the OCR forwarder and the
// extraction session over HTTP, and serves the browser page.
package server

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/joseph-ayodele/free-ocr/internal/export"
	"github.com/joseph-ayodele/free-ocr/internal/extraction"
	"github.com/joseph-ayodele/free-ocr/internal/ocr"
	"github.com/joseph-ayodele/free-ocr/internal/rewrite"
)

//go:embed web
var webFS embed.FS

// Server wires the HTTP routes to the domain services.
type Server struct {
	router     *mux.Router
	proxy      rewrite.Rewriter
	recognizer ocr.Recognizer
	session    *extraction.Session
	exporter   *export.Service
	logger     *slog.Logger

	allowedOrigins []string
	maxBodyBytes   int64
	maxImageSide   int
}

// Option configures the Server instance.
type Option func(*Server)

// WithAllowedOrigins sets the CORS allow-list; defaults to "*".
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithMaxImageSide bounds images forwarded by /api/ocr.
func WithMaxImageSide(n int) Option {
	return func(s *Server) {
		if n >= 0 {
			s.maxImageSide = n
		}
	}
}

// New creates the HTTP server. proxy answers /api/change_response_mode,
// recognizer answers /api/ocr and session backs /api/extractions.
func New(proxy rewrite.Rewriter, recognizer ocr.Recognizer, session *extraction.Session, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		router:         mux.NewRouter(),
		proxy:          proxy,
		recognizer:     recognizer,
		session:        session,
		exporter:       export.NewService(logger),
		logger:         logger,
		allowedOrigins: []string{"*"},
		maxBodyBytes:   20 << 20,
		maxImageSide:   2048,
	}
	for _, opt := range opts {
		opt(s)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Length", "Content-Type", "X-Request-Id"},
	})
	s.router.Use(s.requestID, s.accessLog, c.Handler)
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/change_response_mode", s.handleRewrite).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/modes", s.handleModes).Methods(http.MethodGet)
	api.HandleFunc("/ocr", s.handleOCR).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/extractions", s.handleExtract).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/extractions/current", s.handleCurrent).Methods(http.MethodGet)
	api.HandleFunc("/extractions/current/select", s.handleSelect).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/extractions/current/export.xlsx", s.handleExport).Methods(http.MethodGet)

	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	static, _ := fs.Sub(webFS, "web")
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(static))).Methods(http.MethodGet)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ServeHTTP lets the Server be used directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
