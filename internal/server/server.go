package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hongminglow/accounts-be/internal/accounts"
	"github.com/hongminglow/accounts-be/internal/auth"
	"github.com/hongminglow/accounts-be/internal/config"
	"github.com/hongminglow/accounts-be/internal/http/handlers"
	"github.com/hongminglow/accounts-be/internal/http/respond"
	"github.com/hongminglow/accounts-be/internal/logging"
	"github.com/hongminglow/accounts-be/internal/middleware"
	"github.com/hongminglow/accounts-be/internal/ratelimit"
	"github.com/hongminglow/accounts-be/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// NewLimiter builds the per-class limiter from configuration.
func NewLimiter(cfg config.RateLimits, opts ...ratelimit.Option) *ratelimit.Limiter {
	return ratelimit.New(map[ratelimit.Class]ratelimit.Rule{
		ratelimit.ClassRegister: {Limit: cfg.Register, Window: cfg.Window},
		ratelimit.ClassToken:    {Limit: cfg.Token, Window: cfg.Window},
		ratelimit.ClassGeneral:  {Limit: cfg.General, Window: cfg.Window},
	}, opts...)
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.AccountStore, limiter *ratelimit.Limiter, log logging.Logger) *Server {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewRouter(cfg, store, tokens, limiter, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// NewRouter builds the HTTP handler tree.
func NewRouter(cfg config.Config, store storage.AccountStore, tokens *auth.TokenManager, limiter *ratelimit.Limiter, log logging.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", req.Method))
	})

	guards := handlers.Guards{
		Limit: func(class ratelimit.Class) func(http.Handler) http.Handler {
			return middleware.RateLimit(limiter, class)
		},
		Authenticate: middleware.Authenticate(tokens, log),
	}

	handlers.NewHealthHandler(time.Now()).Register(r.With(guards.Limit(ratelimit.ClassGeneral)))
	handlers.NewAccountHandler(accounts.NewService(store, cfg.PasswordMinEntropy, log), log).Register(r, guards)
	handlers.NewTokenHandler(auth.NewIssuer(store, tokens), log).Register(r, guards)

	return r
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
