package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nvoss/phonedump/internal/android"
	"github.com/nvoss/phonedump/internal/catalog"
	"github.com/nvoss/phonedump/internal/logging"
)

// Config holds the server configuration
type Config struct {
	Host string
	Port int

	// DumpDir is the directory holding device dumps, one "<name>.txt"
	// per device
	DumpDir string

	// PermissionsCSV is the Android permission catalog. Empty disables
	// catalog joins; reports then carry only raw permission names.
	PermissionsCSV string

	// CertPath and KeyPath enable HTTPS when both are set
	CertPath string
	KeyPath  string

	LogLevel string
}

// Server exposes parsed dumps as a JSON API, with a websocket endpoint
// streaming per-section parse progress
type Server struct {
	config *Config
	perms  []catalog.AndroidPermission

	httpServer *http.Server

	mu    sync.Mutex
	dumps map[string]*android.Dump
}

// New creates a new Server instance
func New(config *Config) (*Server, error) {
	if err := logging.Initialize(config.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	var perms []catalog.AndroidPermission
	if config.PermissionsCSV != "" {
		var err error
		perms, err = catalog.LoadAndroidPermissions(config.PermissionsCSV)
		if err != nil {
			return nil, fmt.Errorf("failed to load permission catalog: %w", err)
		}
		logging.Info("Permission catalog loaded",
			zap.String("path", config.PermissionsCSV),
			zap.Int("permissions", len(perms)),
		)
	}

	s := &Server{
		config: config,
		perms:  perms,
		dumps:  make(map[string]*android.Dump),
	}

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // websocket streams stay open
	}

	return s, nil
}

// routes builds the HTTP mux
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/dumps", s.handleDumps)
	mux.HandleFunc("/api/sections", s.handleSections)
	mux.HandleFunc("/api/apps", s.handleApps)
	mux.HandleFunc("/api/app", s.handleAppInfo)
	mux.HandleFunc("/api/report", s.handleReport)
	mux.HandleFunc("/ws/parse", s.handleParseProgress)
	return s.logRequests(mux)
}

// logRequests logs every request and its status code
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path)
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		logging.LogHTTPResponse(r.RemoteAddr, recorder.status)
	})
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrade take over the connection
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// Start starts the server and blocks until shutdown
func (s *Server) Start() error {
	logging.Info("Starting phonedump report server",
		zap.String("addr", s.httpServer.Addr),
		zap.String("dump_dir", s.config.DumpDir),
		zap.Bool("tls", s.config.CertPath != ""),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		var err error
		if s.config.CertPath != "" && s.config.KeyPath != "" {
			err = s.httpServer.ListenAndServeTLS(s.config.CertPath, s.config.KeyPath)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errChan <- err
			return
		}
		errChan <- nil
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logging.Error("Error during shutdown", zap.Error(err))
		return err
	}

	logging.Info("Server stopped")
	logging.Sync()
	return nil
}

// Handler exposes the route tree, primarily for tests
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// listDumps returns the base names of every ".txt" dump in the dump
// directory
func (s *Server) listDumps() ([]string, error) {
	entries, err := os.ReadDir(s.config.DumpDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read dump directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".txt"))
	}
	return names, nil
}

// openDump resolves a dump by base name, parsing it on first access.
// Names with path separators are rejected so clients cannot escape the
// dump directory.
func (s *Server) openDump(name string) (*android.Dump, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return nil, fmt.Errorf("invalid dump name %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.dumps[name]; ok {
		return d, nil
	}

	path := filepath.Join(s.config.DumpDir, name+".txt")
	d, err := android.Open(path, nil)
	if err != nil {
		return nil, err
	}
	s.dumps[name] = d
	return d, nil
}
