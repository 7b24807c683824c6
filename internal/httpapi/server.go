// Package httpapi serves Query Objects parsed from request query strings.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/leapstack-labs/leapquery/internal/config"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
	"golang.org/x/sync/errgroup"
)

// Server is the query object HTTP server.
type Server struct {
	cfg    config.ServerConfig
	target atomic.Pointer[dialect.Dialect]
	logger *slog.Logger

	watchFile string
	reload    func() (*dialect.Dialect, error)
	reloadMu  sync.Mutex
}

// Config holds configuration for the server.
type Config struct {
	Server  config.ServerConfig
	Dialect *dialect.Dialect
	Logger  *slog.Logger

	// WatchFile, when set, is watched for changes; Reload is then called
	// and the dialect it returns becomes the new target.
	WatchFile string
	Reload    func() (*dialect.Dialect, error)
}

// NewServer creates a new server instance.
func NewServer(cfg Config) (*Server, error) {
	cfg.Server.ApplyDefaults()
	if err := cfg.Server.Validate(); err != nil {
		return nil, err
	}
	if cfg.Dialect == nil {
		return nil, dialect.ErrDialectRequired
	}
	if cfg.WatchFile != "" && cfg.Reload == nil {
		return nil, errors.New("watch file requires a reload function")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		cfg:       cfg.Server,
		logger:    logger,
		watchFile: cfg.WatchFile,
		reload:    cfg.Reload,
	}
	s.target.Store(cfg.Dialect)
	return s, nil
}

// Target returns the dialect requests are currently converted to.
func (s *Server) Target() *dialect.Dialect {
	return s.target.Load()
}

// Handler returns the router serving the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		RequestID,
		LogRequests(s.logger),
		middleware.Recoverer,
	)
	SetupRoutes(r, s.Target, s.cfg.MaxFacetLength, s.logger)
	return r
}

// Serve listens on the configured address and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting query object server",
		"addr", ln.Addr().String(),
		"dialect", s.Target().Name,
	)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}

	if s.watchFile != "" {
		eg.Go(func() error {
			return s.watchConfig(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down query object server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchConfig reloads the target dialect whenever the config file changes.
// The parent directory is watched so editors that replace the file are seen.
func (s *Server) watchConfig(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	path, err := filepath.Abs(s.watchFile)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		s.logger.Error("failed to watch config file", "file", path, "error", err)
		return nil
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, s.reloadTarget)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// reloadTarget swaps in the dialect from a fresh config load.
// A failed load keeps the current target. Reloads never overlap.
func (s *Server) reloadTarget() {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	d, err := s.reload()
	if err != nil {
		s.logger.Error("config reload failed, keeping current dialect", "error", err)
		return
	}
	if d == nil {
		return
	}
	if prev := s.target.Swap(d); prev != d {
		s.logger.Info("target dialect changed", "from", prev.Name, "to", d.Name)
	}
}
