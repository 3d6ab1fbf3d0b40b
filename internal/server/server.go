// Package server is the HTTP transport of duckgate.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/koustreak/duckgate/internal/config"
	"github.com/koustreak/duckgate/internal/gateway"
	"github.com/koustreak/duckgate/internal/logger"
	"github.com/koustreak/duckgate/internal/session"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 8 << 20

// Server routes HTTP requests to the gateway.
type Server struct {
	svc      *gateway.Service
	registry *session.Registry
	log      *logger.Logger
	cfg      config.ServerConfig
	router   chi.Router
}

// New builds the router.
func New(svc *gateway.Service, registry *session.Registry, log *logger.Logger, cfg config.ServerConfig) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{svc: svc, registry: registry, log: log, cfg: cfg}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(s.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/connect", s.connect)
		r.Get("/status", s.status)
		r.Post("/disconnect", s.disconnect)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Get("/database/info", s.databaseInfo)

			r.Get("/schema/tables", s.listTables)
			r.Post("/schema/table", s.createTable)
			r.Get("/schema/table/{name}", s.tableColumns)
			r.Put("/schema/table/{name}", s.alterTable)
			r.Delete("/schema/table/{name}", s.dropTable)
			r.Get("/schema/table/{name}/indexes", s.tableIndexes)
			r.Get("/schema/table/{name}/foreign-keys", s.tableForeignKeys)

			r.Get("/table/{name}", s.readRows)
			r.Post("/table/{name}", s.insertRow)
			r.Put("/table/{name}/{id}", s.updateRow)
			r.Delete("/table/{name}/{id}", s.deleteRow)
			r.Post("/table/{name}/export", s.exportTable)

			r.Post("/query", s.query)
		})
	})
	return r
}

// Run serves on cfg.Addr until ctx is cancelled, then drains in-flight
// requests within ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", ln.Addr())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
