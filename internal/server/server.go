// Package server exposes layout storage and the grid engine over HTTP.
//
// Every mutating endpoint is one load, pure engine call, save cycle against
// the configured store. Concurrent writers to the same layout are
// last-writer-wins; clients that care send If-Match with the ETag from a
// previous read.
//
// Routes:
//
//	GET    /healthz
//	GET    /layouts
//	POST   /layouts
//	GET    /layouts/{id}
//	PUT    /layouts/{id}
//	DELETE /layouts/{id}
//	GET    /layouts/{id}/geometry?width=
//	POST   /layouts/{id}/drag
//	POST   /layouts/{id}/resize
//	POST   /layouts/{id}/compact
//	POST   /layouts/{id}/widgets/{wid}/lock
//	POST   /layouts/{id}/widgets/{wid}/collapse
//	DELETE /layouts/{id}/widgets/{wid}
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gridboard/pkg/cache"
	gberr "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/store"
)

const (
	defaultTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
	maxBodyBytes    = 1 << 20
)

// Options configures a Server.
type Options struct {
	// Grid supplies the container width used when a request names none.
	Grid grid.Config

	// Policy is the default drag and resize policy. Requests may override
	// PreventCollision and Compact individually.
	Policy grid.Options

	// CacheTTL is how long computed geometry stays cached. Zero keeps it
	// until evicted.
	CacheTTL time.Duration

	// Timeout bounds each request. Defaults to 15s.
	Timeout time.Duration

	// Logger receives request logs. Defaults to the charm default logger.
	Logger *log.Logger
}

// Server is the HTTP API.
type Server struct {
	store  store.Store
	cache  cache.Cache
	opts   Options
	logger *log.Logger
	router chi.Router
}

// New creates a Server backed by st. A nil cache disables geometry caching.
func New(st store.Store, c cache.Cache, opts Options) *Server {
	if c == nil {
		c = cache.NewNullCache()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Grid.Width <= 0 {
		opts.Grid.Width = grid.DefaultConfig().Width
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		store:  st,
		cache:  cache.Instrument(c, "geometry"),
		opts:   opts,
		logger: logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.Timeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errRouteNotFound(r))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{
			Code:    gberr.ErrCodeUnsupported,
			Message: "method " + r.Method + " not allowed on " + r.URL.Path,
		})
	})

	r.Get("/healthz", s.handleHealth)

	r.Route("/layouts", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Put("/", s.handlePut)
			r.Delete("/", s.handleDelete)

			r.Get("/geometry", s.handleGeometry)
			r.Post("/drag", s.handleDrag)
			r.Post("/resize", s.handleResize)
			r.Post("/compact", s.handleCompact)

			r.Post("/widgets/{wid}/lock", s.handleLock)
			r.Post("/widgets/{wid}/collapse", s.handleCollapse)
			r.Delete("/widgets/{wid}", s.handleRemove)
		})
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.opts.Timeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
