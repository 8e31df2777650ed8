package userdirectory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/louisbranch/userdesk/internal/platform/timeouts"
	"github.com/louisbranch/userdesk/internal/services/userdirectory/storage"
	"github.com/louisbranch/userdesk/internal/services/userdirectory/storage/sqlite"
)

// Config defines the inputs for the user directory process.
type Config struct {
	HTTPAddr string
	DBPath   string
}

// Server hosts the user collection API.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	store      storage.Store
	closeOnce  sync.Once
}

// NewServer opens storage and builds the HTTP server.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	store, err := openStore(config.DBPath)
	if err != nil {
		return nil, err
	}
	return &Server{
		httpAddr: httpAddr,
		store:    store,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           NewHandler(store),
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
	}, nil
}

func openStore(path string) (storage.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open user store: %w", err)
	}
	return store, nil
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	if s == nil || s.httpServer == nil {
		return http.NotFoundHandler()
	}
	return s.httpServer.Handler
}

// ListenAndServe serves HTTP until ctx is canceled, then shuts down and
// closes storage.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("userdirectory server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeStore()

	serveErr := make(chan error, 1)
	log.Printf("userdirectory listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close stops the HTTP server and closes storage.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		if err := s.httpServer.Close(); err != nil {
			log.Printf("close userdirectory http server: %v", err)
		}
	}
	s.closeStore()
}

func (s *Server) closeStore() {
	s.closeOnce.Do(func() {
		if s.store == nil {
			return
		}
		if err := s.store.Close(); err != nil {
			log.Printf("close user store: %v", err)
		}
	})
}
