package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	rctx "code.tierpay.io/referral/libs/context"
	"code.tierpay.io/referral/logging"

	"github.com/didip/tollbooth/v7/limiter"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"golang.org/x/exp/slices"
)

const traceIDHeader = "X-Request-Id"

// Server is the REST and websocket api of the node.
type Server struct {
	*httprouter.Router

	ctx context.Context
	log *logging.Logger

	mu  sync.RWMutex
	cfg Config

	secret    []byte
	accounts  AccountService
	purchases PurchaseService
	queries   QueryService
	hub       *Hub
	upgrader  websocket.Upgrader

	authLimiter *limiter.Limiter
	srv       *http.Server
}

func New(
	ctx context.Context,
	log *logging.Logger,
	cfg Config,
	accounts AccountService,
	purchases PurchaseService,
	queries QueryService,
	hub *Hub,
) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	s := &Server{
		Router:    httprouter.New(),
		ctx:       ctx,
		log:       log,
		cfg:       cfg,
		secret:    []byte(cfg.JWTSecret),
		accounts:  accounts,
		purchases: purchases,
		queries:   queries,
		hub:       hub,

		authLimiter: newAuthLimiter(cfg.RateLimit),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	s.POST("/api/auth/register", s.rateLimited(s.Register))
	s.POST("/api/auth/login", s.rateLimited(s.Login))
	s.GET("/api/auth/profile", s.authenticated(s.Profile))
	s.POST("/api/purchase/create", s.authenticated(s.CreatePurchase))
	s.GET("/api/purchase/my-purchases", s.authenticated(s.MyPurchases))
	s.GET("/api/referral/stats", s.authenticated(s.ReferralStats))
	s.GET("/api/referral/earnings", s.authenticated(s.Earnings))
	s.GET("/api/ws", s.authenticated(s.Websocket))
	s.GET("/health", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	})

	return s, nil
}

func (s *Server) ReloadConf(cfg Config) {
	s.log.Info("reloading configuration")
	if s.log.GetLevel() != cfg.Level.Get() {
		s.log.Info("updating log level",
			logging.String("old", s.log.GetLevelString()),
			logging.String("new", cfg.Level.String()),
		)
		s.log.SetLevel(cfg.Level.Get())
	}

	// the secret, address and cors settings only change on restart
	s.mu.Lock()
	s.cfg.TokenExpiry = cfg.TokenExpiry
	s.mu.Unlock()
}

func (s *Server) config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Handler returns the router wrapped in the cors middleware.
func (s *Server) Handler() http.Handler {
	cfg := s.config()
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: !slices.Contains(cfg.CORS.AllowedOrigins, "*"),
		MaxAge:           cfg.CORS.MaxAge,
	}).Handler(traced(s))
}

// traced gives every request a trace id, the events it causes carry it.
func traced(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := r.Header.Get(traceIDHeader); id != "" {
			ctx = rctx.WithTraceID(ctx, id)
		}
		ctx, id := rctx.TraceIDFromContext(ctx)
		w.Header().Set(traceIDHeader, id)
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origins := s.config().CORS.AllowedOrigins
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
}

// Start serves the api until Stop is called or the context given to New is
// done.
func (s *Server) Start() error {
	cfg := s.config()
	s.mu.Lock()
	s.srv = &http.Server{
		Addr:              net.JoinHostPort(cfg.IP, strconv.Itoa(cfg.Port)),
		Handler:           s.Handler(),
		ReadHeaderTimeout: cfg.Timeout.Duration,
		ReadTimeout:       cfg.Timeout.Duration,
		BaseContext:       func(net.Listener) context.Context { return s.ctx },
	}
	srv := s.srv
	s.mu.Unlock()

	go func() {
		<-s.ctx.Done()
		s.Stop()
	}()

	s.log.Info("starting api server", logging.String("address", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

func (s *Server) Stop() error {
	s.mu.RLock()
	srv := s.srv
	timeout := s.cfg.ShutdownTimeout.Duration
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.log.Info("stopping api server")
	return srv.Shutdown(ctx)
}
