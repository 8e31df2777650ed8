package userdesk

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/userdesk/internal/platform/timeouts"
	"github.com/louisbranch/userdesk/internal/services/userdesk/directory"
)

// Config defines the inputs for the user desk process.
type Config struct {
	HTTPAddr string
	// DirectoryURL is the collection URL of the remote user directory.
	DirectoryURL  string
	RemoteTimeout time.Duration
}

// Server hosts the user manager pages.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	views      *Views
}

// NewServer validates config and builds the HTTP server.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if config.RemoteTimeout <= 0 {
		config.RemoteTimeout = timeouts.RemoteRequest
	}
	directoryURL := strings.TrimSpace(config.DirectoryURL)
	if directoryURL == "" {
		directoryURL = directory.DefaultBaseURL
	}
	client, err := directory.NewClient(directoryURL, &http.Client{})
	if err != nil {
		return nil, err
	}

	views := NewViews()
	handler := NewHandler(views, func() *Manager {
		return NewManager(client, config.RemoteTimeout)
	})
	return &Server{
		httpAddr: httpAddr,
		views:    views,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
	}, nil
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	if s == nil || s.httpServer == nil {
		return http.NotFoundHandler()
	}
	return s.httpServer.Handler
}

// ListenAndServe serves HTTP until ctx is canceled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("userdesk server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serveErr := make(chan error, 1)
	log.Printf("userdesk listening on %s", s.httpAddr)
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

// Close stops the HTTP server immediately.
func (s *Server) Close() {
	if s == nil || s.httpServer == nil {
		return
	}
	if err := s.httpServer.Close(); err != nil {
		log.Printf("close userdesk http server: %v", err)
	}
}
