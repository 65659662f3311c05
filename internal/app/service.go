// Package service assembles the request collaborators from configuration and
// runs the HTTP server that exposes them.
package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/okian/gvera/internal/adapters/http/api"
	"github.com/okian/gvera/internal/adapters/http/swagger"
	"github.com/okian/gvera/internal/adapters/storage/filemanager"
	"github.com/okian/gvera/internal/config"
	"github.com/okian/gvera/internal/domain/auth"
	"github.com/okian/gvera/internal/domain/validation"
	"github.com/okian/gvera/pkg/logger"
	"github.com/okian/gvera/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// Service owns the HTTP server and its collaborators.
type Service struct {
	mu sync.Mutex

	cfg    *config.Config
	logger logger.Logger

	files     *filemanager.Manager
	validator *validation.RuleValidator
	auth      *auth.Authenticator
	handler   http.Handler

	srv     *http.Server
	addr    net.Addr
	started bool
	stopCh  chan struct{}
	done    chan struct{}
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New builds every collaborator from cfg. Rule and hash errors surface here,
// before anything listens.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.New()
	}
	s := &Service{
		cfg:    cfg,
		logger: logger.Nop(),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	s.files = filemanager.New(
		filemanager.WithRoot(cfg.UploadDir),
		filemanager.WithAllowedTypes(cfg.AllowedFileTypes),
		filemanager.WithLogger(s.logger.Named("filemanager")),
	)

	v, err := validation.NewRuleValidator(cfg.Validation, validation.WithLogger(s.logger.Named("validation")))
	if err != nil {
		return nil, fmt.Errorf("validation rules: %w", err)
	}
	s.validator = v

	a, err := auth.New(cfg.BasicUsers, cfg.BearerTokens, auth.WithLogger(s.logger.Named("auth")))
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	s.auth = a

	mux := http.NewServeMux()
	swagger.Register(context.Background(), mux)
	api.NewServer(
		api.WithFileManager(s.files),
		api.WithValidator(s.validator),
		api.WithAuthenticator(s.auth),
		api.WithLogger(s.logger.Named("api")),
		api.WithBodyLimits(cfg.MaxBodyBytes, cfg.MaxMultipartMemory),
		api.WithUploadDir("/"),
	).Register(context.Background(), mux)
	s.handler = mux

	return s, nil
}

// Handler returns the routed handler, for tests and embedding.
func (s *Service) Handler() http.Handler { return s.handler }

// Start listens on the configured address and serves in the background.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.addr = ln.Addr()
	s.srv = &http.Server{
		Handler:           s.handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	srv, done := s.srv, make(chan struct{})
	s.done = done

	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(ctx, "HTTP server failed", logger.Error(err))
		}
	}()
	go s.systemMetricsLoop(ctx, s.stopCh)

	s.started = true
	s.logger.Info(ctx, "HTTP server started",
		logger.String("addr", s.addr.String()),
		logger.String("upload_dir", absPath(s.cfg.UploadDir)))
	return nil
}

// Addr returns the bound address once started.
func (s *Service) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Stop shuts the server down, waiting for in-flight requests until ctx ends.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	close(s.stopCh)

	err := s.srv.Shutdown(ctx)
	<-s.done
	s.started = false
	s.stopCh = make(chan struct{})

	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info(ctx, "HTTP server stopped")
	return nil
}

func (s *Service) systemMetricsLoop(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		updateSystemMetrics()
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystem(m.Alloc, runtime.NumGoroutine())
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
