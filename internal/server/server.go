package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/seaportal/apiserver/config"
	"github.com/seaportal/apiserver/internal/db"
	"github.com/seaportal/apiserver/internal/handlers"
	"github.com/seaportal/apiserver/internal/legacy"
	"github.com/seaportal/apiserver/internal/mq"
	"github.com/seaportal/apiserver/internal/services"
	"github.com/seaportal/apiserver/internal/session"
	"github.com/seaportal/apiserver/internal/store"
)

// requestTimeout bounds handler work. writeTimeout must exceed it so the
// timeout middleware can still write its response.
const (
	requestTimeout = 30 * time.Second
	writeTimeout   = requestTimeout + 5*time.Second
)

// Dependencies holds the connections and services shared by the HTTP server
// and the CLI.
type Dependencies struct {
	DB       *sql.DB
	LegacyDB *sqlx.DB
	Redis    *redis.Client
	MQ       *mq.MQ

	Users     *services.UserService
	Login     *services.LoginService
	Migration *services.MigrationService
	Sessions  *session.Manager

	local  *store.UserRepository
	legacy *legacy.Client
	events services.EventPublisher
}

// Wire opens every backing connection and builds the services.
func Wire(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (*Dependencies, error) {
	if cfg.Session.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	deps, err := WireMigration(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	deps.Redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := deps.Redis.Ping(ctx).Err(); err != nil {
		_ = deps.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	deps.Users = services.NewUserService(deps.local)
	deps.Login = services.NewLoginService(deps.local, deps.legacy, deps.Migration, deps.events, log.Named("login"))
	deps.Sessions = session.NewManager(session.NewStore(deps.Redis), cfg.Session.Secret, cfg.Session.TTL)
	return deps, nil
}

// WireMigration opens the local and legacy databases and the event backend
// and builds the migration service. Redis and sessions are left unset.
func WireMigration(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (*Dependencies, error) {
	deps := &Dependencies{}
	ok := false
	defer func() {
		if !ok {
			_ = deps.Close()
		}
	}()

	var err error
	if deps.DB, err = db.Open(ctx, cfg.Database); err != nil {
		return nil, err
	}
	if deps.LegacyDB, err = db.OpenLegacy(ctx, cfg.LegacyDatabase); err != nil {
		return nil, err
	}
	if deps.MQ, err = mq.NewFromConfig(ctx, cfg.MQ); err != nil {
		return nil, err
	}
	if deps.MQ != nil {
		deps.events = mq.NewEventPublisher(deps.MQ)
	}

	deps.local = store.NewUserRepository(deps.DB)
	deps.legacy = legacy.NewClient(legacy.NewPostgresDirectory(deps.LegacyDB), log.Named("legacy"))
	deps.Migration = services.NewMigrationService(deps.local, deps.legacy, deps.events, log.Named("migration"))

	ok = true
	return deps, nil
}

// Close releases every open connection.
func (d *Dependencies) Close() error {
	var errs []error
	if d.MQ != nil {
		errs = append(errs, d.MQ.Close())
	}
	if d.Redis != nil {
		errs = append(errs, d.Redis.Close())
	}
	if d.LegacyDB != nil {
		errs = append(errs, d.LegacyDB.Close())
	}
	if d.DB != nil {
		errs = append(errs, d.DB.Close())
	}
	return errors.Join(errs...)
}

// NewRouter mounts every route on a chi router.
func NewRouter(deps *Dependencies, cfg config.SessionConfig, log *zap.SugaredLogger) *chi.Mux {
	var pingLegacy handlers.PingFunc
	if deps.LegacyDB != nil {
		pingLegacy = deps.LegacyDB.PingContext
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		handlers.RequestLogger(log.Named("http")),
		middleware.Timeout(requestTimeout),
		handlers.NewSessionAuth(deps.Sessions, cfg.CookieName, log.Named("session")).Load,
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, handlers.NewAuthHandler(
			deps.Login,
			deps.Users,
			deps.Sessions,
			handlers.CookieConfig{Name: cfg.CookieName, Secure: cfg.CookieSecure},
			log.Named("auth"),
		))
	})
	router.Route("/migration", func(r chi.Router) {
		handlers.MigrationRouter(r, handlers.NewMigrationHandler(deps.Migration, pingLegacy, log.Named("migration")))
	})
	return router
}

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	deps       *Dependencies
	log        *zap.SugaredLogger
}

// New constructs a Server with its dependencies.
func New(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (*Server, error) {
	deps, err := Wire(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	router := NewRouter(deps, cfg.Session, log)

	return &Server{
		httpServer: newHTTPServer(cfg.ServerPort, router),
		router:     router,
		deps:       deps,
		log:        log,
	}, nil
}

func newHTTPServer(port int, handler http.Handler) *http.Server {
	if port == 0 {
		port = 8080
	}
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.log.Infow("server listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests, waits for in-flight ones and closes
// every connection.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	return errors.Join(err, s.deps.Close())
}
