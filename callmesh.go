// Package callmesh provides a high-level façade for building and serving
// SignalWire AI telephony agents. Most applications interact with this
// package by:
//  1. Creating a CallMesh via New() (optionally overriding the store, logger
//     and listen address)
//  2. Registering one or more agents (prompt sections, languages, SWAIG
//     functions)
//  3. Calling Run() to serve SWML documents and SWAIG webhooks
//
// The façade delegates HTTP concerns to server.Server while keeping setup
// ergonomics concise. All defaults are safe for local development; production
// deployments typically supply a durable session store, a structured logger
// and a public URL.
package callmesh

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/hupe1980/callmesh/agent"
	"github.com/hupe1980/callmesh/config"
	"github.com/hupe1980/callmesh/logging"
	"github.com/hupe1980/callmesh/server"
	"github.com/hupe1980/callmesh/session"
)

// Version of the framework.
const Version = "0.1.0"

// Options configures the CallMesh instance.
type Options struct {
	// Addr is the host:port the HTTP listener binds to.
	Addr string

	// PublicURL overrides automatic base URL detection for webhook URLs.
	PublicURL string

	// AuthUser / AuthPassword protect the agent routes with basic auth.
	// Random credentials are generated when left empty.
	AuthUser     string
	AuthPassword string

	// Store persists call state (defaults to an in-memory implementation).
	Store session.Store

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// EnableMetrics mounts a Prometheus endpoint at /metrics.
	EnableMetrics bool
}

// CallMesh is the high-level façade aggregating the server and its services.
type CallMesh struct {
	opts Options
	srv  *server.Server
}

// New creates a new CallMesh instance with optional overrides. Any unset
// service is initialized with a safe default.
func New(optFns ...func(o *Options)) *CallMesh {
	opts := Options{
		Addr:   "0.0.0.0:3000",
		Store:  session.NewInMemoryStore(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	srv := server.New(func(o *server.Options) {
		o.Addr = opts.Addr
		o.PublicURL = opts.PublicURL
		o.AuthUser = opts.AuthUser
		o.AuthPassword = opts.AuthPassword
		o.Store = opts.Store
		o.Logger = opts.Logger
		o.EnableMetrics = opts.EnableMetrics
	})

	return &CallMesh{opts: opts, srv: srv}
}

// NewFromConfig builds a CallMesh from a loaded configuration: listen
// address, auth, public URL, metrics and the session store (bolt-backed when
// a storage path is configured).
func NewFromConfig(cfg *config.Config, logger logging.Logger) (*CallMesh, error) {
	store := session.Store(session.NewInMemoryStore())
	if cfg.Storage.Path != "" {
		boltStore, err := session.NewBoltStore(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		store = boltStore
	}

	return New(func(o *Options) {
		o.Addr = cfg.ListenAddr()
		o.PublicURL = cfg.PublicURL
		o.AuthUser = cfg.Auth.User
		o.AuthPassword = cfg.Auth.Password
		o.Store = store
		o.Logger = logger
		o.EnableMetrics = cfg.Metrics.Enabled
	}), nil
}

// Register mounts an agent under its route.
func (m *CallMesh) Register(a *agent.Agent) error { return m.srv.Register(a) }

// AuthCredentials returns the basic auth pair protecting agent routes.
func (m *CallMesh) AuthCredentials() (user, password string) { return m.srv.AuthCredentials() }

// Router exposes the underlying router for custom endpoints (payment
// connectors, status webhooks, ...).
func (m *CallMesh) Router() chi.Router { return m.srv.Router() }

// Server returns the underlying HTTP server.
func (m *CallMesh) Server() *server.Server { return m.srv }

// Run starts serving and blocks until the context is cancelled.
func (m *CallMesh) Run(ctx context.Context) error { return m.srv.Run(ctx) }
