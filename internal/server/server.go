package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/edgetracker/engine"
	"github.com/rustyeddy/edgetracker/journal"
)

// Config holds server configuration
type Config struct {
	Addr   string
	User   string
	Store  journal.Store
	Engine engine.Options
	Log    zerolog.Logger
}

// Server exposes the engine over JSON. Requests are handled one at a
// time: each loads the user's workspace, runs one operation and saves
// the workspace back when it changed.
type Server struct {
	mu     sync.Mutex
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	store  journal.Store
	user   string
	opts   engine.Options
}

func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		store:  cfg.Store,
		user:   cfg.User,
		opts:   cfg.Engine,
	}
	if s.opts.Now == nil {
		s.opts.Now = time.Now
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(30 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/workspace", s.handleWorkspace)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.handleListAccounts)
			r.Post("/", s.handleCreateAccount)
			r.Route("/{accountID}", func(r chi.Router) {
				r.Get("/", s.handleGetAccount)
				r.Post("/select", s.handleSelect)
				r.Post("/advance", s.handleAdvance)
				r.Get("/risk", s.handleRisk)
				r.Get("/summary", s.handleSummary)
			})
		})

		r.Route("/trades", func(r chi.Router) {
			r.Get("/", s.handleListTrades)
			r.Post("/", s.handleRecordTrade)
			r.Put("/{tradeID}", s.handleEditTrade)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/strategies", s.handleStrategies)
			r.Get("/calendar", s.handleCalendar)
		})
	})
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// withEngine runs fn against the user's workspace. The workspace is saved
// when fn reports a mutation and returns no error.
func (s *Server) withEngine(ctx context.Context, fn func(e *engine.Engine) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, err := s.store.Load(ctx, s.user)
	if err != nil {
		return err
	}
	e := engine.New(ws, s.opts)

	mutated, err := fn(e)
	if err != nil || !mutated {
		return err
	}
	return s.store.Save(ctx, s.user, e.Snapshot())
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
