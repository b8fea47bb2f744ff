package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/hupe1980/callmesh/agent"
	"github.com/hupe1980/callmesh/logging"
	"github.com/hupe1980/callmesh/metrics"
	"github.com/hupe1980/callmesh/session"
)

// Options configures the Server instance.
type Options struct {
	// Addr is the host:port the server binds to.
	Addr string

	// PublicURL overrides automatic base URL detection. Set this when the
	// agent sits behind a tunnel or load balancer whose proxy headers are
	// stripped.
	PublicURL string

	// AuthUser / AuthPassword protect all agent routes with HTTP basic auth.
	// When either is empty a random credential pair is generated; read it back
	// via AuthCredentials.
	AuthUser     string
	AuthPassword string

	// Store persists call state (defaults to an in-memory implementation).
	Store session.Store

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger

	// EnableMetrics mounts the Prometheus handler at /metrics.
	EnableMetrics bool

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration
}

// Server hosts one or more agents behind a chi router.
type Server struct {
	opts   Options
	router *chi.Mux
	logger logging.Logger
	domain *logging.CallLogger // non-nil when the configured logger supports call correlation
	store  session.Store

	mu     sync.RWMutex
	agents map[string]*agent.Agent
}

// New creates a Server with optional overrides. Any unset service is
// initialized with a safe default.
func New(optFns ...func(o *Options)) *Server {
	opts := Options{
		Addr:            "0.0.0.0:3000",
		Store:           session.NewInMemoryStore(),
		Logger:          logging.NoOpLogger{},
		ShutdownTimeout: 10 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.AuthUser == "" {
		opts.AuthUser = "agent"
	}
	if opts.AuthPassword == "" {
		opts.AuthPassword = uuid.NewString()
	}

	logger := opts.Logger
	domain, _ := opts.Logger.(*logging.CallLogger)
	if domain != nil {
		logger = domain.WithComponent("server")
	}

	s := &Server{
		opts:   opts,
		router: chi.NewMux(),
		logger: logger,
		domain: domain,
		store:  opts.Store,
		agents: make(map[string]*agent.Agent),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)
	if opts.EnableMetrics {
		s.router.Handle("/metrics", metrics.Handler())
	}

	return s
}

// AuthCredentials returns the basic auth pair protecting agent routes.
func (s *Server) AuthCredentials() (user, password string) {
	return s.opts.AuthUser, s.opts.AuthPassword
}

// Router exposes the underlying router so applications can mount custom
// endpoints (webhooks, payment connectors, ...). Custom routes are not
// wrapped in the agent auth middleware.
func (s *Server) Router() chi.Router { return s.router }

// Register mounts an agent under its route. Registration fails when another
// agent already claims the route.
func (s *Server) Register(a *agent.Agent) error {
	route := normalizeRoute(a.Route())

	s.mu.Lock()
	if _, exists := s.agents[route]; exists {
		s.mu.Unlock()
		return fmt.Errorf("route %q is already registered", route)
	}
	s.agents[route] = a
	s.mu.Unlock()

	if s.domain != nil {
		a.SetLogger(s.domain.WithComponent("agent"))
	} else {
		a.SetLogger(s.logger)
	}

	creds := map[string]string{s.opts.AuthUser: s.opts.AuthPassword}
	s.router.Route(route, func(r chi.Router) {
		r.Use(middleware.BasicAuth("callmesh", creds))
		r.Get("/", s.handleDocument(a))
		r.Post("/", s.handleDocument(a))
		r.Post("/swaig", s.handleSWAIG(a))
	})

	s.logger.Info("server.agent.registered", "agent", a.Name(), "route", route)
	return nil
}

// ServeHTTP implements http.Handler, easing tests and embedding.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run starts the HTTP listener and blocks until the context is cancelled or
// the listener fails. Shutdown is graceful within ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server.listening", "addr", s.opts.Addr, "auth_user", s.opts.AuthUser)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return <-errCh
	}
}

// baseURL derives the externally reachable base URL for an agent route,
// preferring the configured public URL, then proxy headers, then the request
// host.
func (s *Server) baseURL(r *http.Request, route string) string {
	if s.opts.PublicURL != "" {
		return strings.TrimRight(s.opts.PublicURL, "/") + routeSuffix(route)
	}

	scheme := "http"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS != nil {
		scheme = "https"
	}

	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = fwd
	}

	return scheme + "://" + host + routeSuffix(route)
}

func normalizeRoute(route string) string {
	if route == "" || route == "/" {
		return "/"
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return strings.TrimRight(route, "/")
}

// routeSuffix is the path fragment appended to the public base URL when
// building webhook URLs; the root route contributes nothing.
func routeSuffix(route string) string {
	if normalized := normalizeRoute(route); normalized != "/" {
		return normalized
	}
	return ""
}
