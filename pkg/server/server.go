package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/finsight/pkg/analytics"
	"github.com/yurifrl/finsight/pkg/config"
	"github.com/yurifrl/finsight/pkg/format"
	"github.com/yurifrl/finsight/pkg/normalize"
	"github.com/yurifrl/finsight/pkg/service"
)

const maxUploadBytes = 32 << 20

// Server exposes ledger analytics over HTTP. Each upload opens a session
// that later queries address by id.
type Server struct {
	config    *config.Config
	logger    *log.Logger
	mux       *http.ServeMux
	processor *service.Processor
	sessions  *sessions
	opts      analytics.Options
	format    *format.Formatter

	mu     sync.Mutex
	http   *http.Server
	closed bool
}

// New creates a new HTTP server. predictor may be nil.
func New(cfg *config.Config, logger *log.Logger, predictor service.Predictor) *Server {
	normalizer := normalize.New(logger, cfg.Resolver(), cfg.NormalizeOptions())
	opts := cfg.AnalyticsOptions()
	s := &Server{
		config:    cfg,
		logger:    logger,
		mux:       http.NewServeMux(),
		processor: service.NewProcessor(logger, normalizer, predictor),
		sessions:  newSessions(cfg.Server.SessionTTL, opts),
		opts:      opts,
		format:    cfg.Formatter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(l)
}

// Serve accepts connections on l until Shutdown is called. It returns nil
// once Shutdown begins; Shutdown itself returns after in-flight requests
// finish.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		l.Close()
		return nil
	}
	s.http = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
	srv := s.http
	s.mu.Unlock()

	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return "0.0.0.0:" + strconv.Itoa(s.config.Server.Port)
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.withLogging(s.handleHealth))

	s.mux.HandleFunc("/api/upload", s.withLogging(s.handleUpload))
	s.mux.HandleFunc("/api/rows", s.withLogging(s.handleRows))

	s.mux.HandleFunc("/api/summary", s.withLogging(s.query(s.handleSummary)))
	s.mux.HandleFunc("/api/notifications", s.withLogging(s.query(s.handleNotifications)))
	s.mux.HandleFunc("/api/chart", s.withLogging(s.query(s.handleChart)))
	s.mux.HandleFunc("/api/operations", s.withLogging(s.query(s.handleOperations)))
	s.mux.HandleFunc("/api/balance", s.withLogging(s.query(s.handleBalance)))
	s.mux.HandleFunc("/api/categories", s.withLogging(s.query(s.handleCategories)))
	s.mux.HandleFunc("/api/totals", s.withLogging(s.query(s.handleTotals)))
	s.mux.HandleFunc("/api/anomalies", s.withLogging(s.query(s.handleAnomalies)))
	s.mux.HandleFunc("/api/export", s.withLogging(s.query(s.handleExport)))
}

// --- helpers ---

// writeJSON encodes v as JSON with the given status and writes headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func (s *Server) respondJSON(w http.ResponseWriter, v interface{}) {
	if err := s.writeJSON(w, http.StatusOK, v); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", r.Method, "path", r.URL.Path)
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", r.Method, "path", r.URL.Path)
	}
	_ = s.writeJSON(w, status, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// withLogging wraps a handler to log request start/end and recover panics.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				s.respondError(w, r, http.StatusInternalServerError, "internal server error", fmt.Errorf("panic: %v", rec))
				return
			}
			s.logger.Debug("http request done", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
		}()
		next(w, r)
	}
}
