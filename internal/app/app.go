// Package app composes the classmates web application: the single-page shell,
// the /api pass-through to the roster backend and the API reference.
package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/okian/classmates/internal/adapters/http/api"
	"github.com/okian/classmates/internal/adapters/http/client"
	"github.com/okian/classmates/internal/adapters/http/site"
	"github.com/okian/classmates/internal/adapters/http/swagger"
	"github.com/okian/classmates/pkg/logger"
)

// App is the application root. It is mounted onto a mux exactly once.
type App struct {
	mu      sync.Mutex
	mounted bool

	backend  *url.URL
	basePath string
	logger   logger.Logger
}

// Option applies a configuration option to the App.
type Option func(*App)

// WithLogger sets the logger used by the app and its routes.
func WithLogger(l logger.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithBackend sets the roster backend that /api requests are forwarded to.
func WithBackend(u *url.URL) Option {
	return func(a *App) {
		a.backend = u
	}
}

// WithBasePath overrides the path prefix forwarded to the backend.
func WithBasePath(p string) Option {
	return func(a *App) {
		if p != "" {
			a.basePath = p
		}
	}
}

// New constructs an App with default configuration.
func New(opts ...Option) *App {
	a := &App{
		basePath: client.DefaultBasePath,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Mount attaches the API router, the API reference and the site to mux.
func (a *App) Mount(ctx context.Context, mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("%w: %w", ErrMount, ErrNilMux)
	}
	if a.backend == nil {
		return fmt.Errorf("%w: %w", ErrMount, ErrNoBackend)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mounted {
		return fmt.Errorf("%w: %w", ErrMount, ErrRemounting)
	}

	router := api.NewServer(a.backend, a.basePath, a.logger.Named("api"))
	if err := router.Register(ctx, mux); err != nil {
		return fmt.Errorf("%w: router: %w", ErrMount, err)
	}
	if err := swagger.Register(ctx, mux); err != nil {
		return fmt.Errorf("%w: api docs: %w", ErrMount, err)
	}
	if err := site.Register(ctx, mux); err != nil {
		return fmt.Errorf("%w: site: %w", ErrMount, err)
	}
	a.mounted = true

	a.logger.Info(ctx, "application mounted",
		logger.String("backend", a.backend.String()),
		logger.String("apiBasePath", router.BasePath()),
	)
	return nil
}
