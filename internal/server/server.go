package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/verdeck/verdeck/internal/handler"
	"github.com/verdeck/verdeck/internal/openapi"
	"github.com/verdeck/verdeck/internal/server/middleware"
	"github.com/verdeck/verdeck/internal/service"
	"github.com/verdeck/verdeck/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	SessionMaxAge     time.Duration
	SessionCookieName string
	SessionSecure     bool

	// RateWindow is shared by both limiters; LoginRateLimit guards the
	// login endpoint, RateLimit guards the authenticated surface.
	RateWindow     time.Duration
	LoginRateLimit int
	RateLimit      int

	// RequestTimeout bounds each request's context, covering store
	// calls that would otherwise run without a deadline.
	RequestTimeout time.Duration
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() Config {
	return Config{
		Host:              "0.0.0.0",
		Port:              4000,
		ShutdownTimeout:   30 * time.Second,
		CORSOrigins:       []string{"http://localhost:5173"},
		SessionMaxAge:     24 * time.Hour,
		SessionCookieName: "verdeck_session",
		SessionSecure:     false,
		RateWindow:        15 * time.Minute,
		LoginRateLimit:    5,
		RateLimit:         100,
		RequestTimeout:    30 * time.Second,
	}
}

// Server is the top-level HTTP server. It owns the Chi router, the
// session manager, and the audit recorder, all wired over one injected
// store handle.
type Server struct {
	cfg        Config
	router     chi.Router
	store      *store.Store
	sessions   *scs.SessionManager
	auditor    *service.Auditor
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server with all routes and middleware wired. Call
// ListenAndServe to start accepting connections.
func New(cfg Config, st *store.Store, logger *slog.Logger) *Server {
	sessions := scs.New()
	sessions.Lifetime = cfg.SessionMaxAge
	sessions.Store = st.Sessions()
	sessions.Cookie.Name = cfg.SessionCookieName
	sessions.Cookie.HttpOnly = true
	sessions.Cookie.SameSite = http.SameSiteLaxMode
	sessions.Cookie.Secure = cfg.SessionSecure

	s := &Server{
		cfg:      cfg,
		store:    st,
		sessions: sessions,
		auditor:  service.NewAuditor(st, logger),
		logger:   logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.Timeout(s.cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	sysHandler := handler.NewSystemHandler(s.store)
	authHandler := handler.NewAuthHandler(s.store, s.sessions, s.auditor)
	versionHandler := handler.NewVersionHandler(s.store, s.auditor)
	logHandler := handler.NewLogHandler(s.store)

	// --- Probes and API doc (no auth, no session) ---
	r.Get("/health", sysHandler.Health)
	r.Get("/readyz", sysHandler.Ready)
	r.Get("/openapi.json", s.handleOpenAPI)

	// --- Session-carrying routes ---
	r.Group(func(r chi.Router) {
		r.Use(s.sessions.LoadAndSave)

		r.With(middleware.RateLimit(s.cfg.LoginRateLimit, s.cfg.RateWindow)).
			Post("/login", authHandler.Login)

		// Authenticated admin surface: limiter first, then auth, so an
		// unauthenticated request costs nothing but a counter bump.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(s.cfg.RateLimit, s.cfg.RateWindow))
			r.Use(middleware.RequireAuth(s.sessions))

			r.Post("/logout", authHandler.Logout)

			r.Get("/versions", versionHandler.List)
			r.Post("/versions/create", versionHandler.Create)
			r.Post("/versions/delete", versionHandler.Delete)
			r.Post("/versions/activate", versionHandler.Activate)
			r.Get("/versions/test/{versionID}", versionHandler.Test)

			r.Get("/logs", logHandler.List)
		})
	})

	s.router = r
}

// handleOpenAPI serves the generated OpenAPI document for the admin API.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	doc := openapi.Generate(fmt.Sprintf("http://%s:%d", s.cfg.Host, s.cfg.Port), s.cfg.SessionCookieName)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

// ListenAndServe starts the HTTP server and blocks until SIGINT or
// SIGTERM, then drains in-flight requests before returning.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Expired session rows are invisible to lookups; the sweeper just
	// reclaims the space.
	s.store.Sessions().StartCleanup(time.Hour)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
