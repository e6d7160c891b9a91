package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ulule/limiter/v3"
	limiterhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/academiagorila/bjj-schedule/internal/club"
	"github.com/academiagorila/bjj-schedule/internal/logger"
	"github.com/academiagorila/bjj-schedule/internal/roster"
	"github.com/academiagorila/bjj-schedule/internal/service"
)

const (
	DefaultRateLimit = "60-M"
	shutdownTimeout  = 10 * time.Second
)

// Service is the schedule backend the handlers call.
type Service interface {
	ClubSchedule(ctx context.Context, eventID, clubID, scheduleType string) (*service.Result, error)
	Tournaments(ctx context.Context) (roster.Tournaments, error)
	Clubs() club.Registry
}

// Options configures a Server. Zero values select the defaults.
type Options struct {
	// RateLimit for upstream-hitting routes, in ulule/limiter format.
	RateLimit string
	// Location is the timezone reported by /api/server-time.
	Location *time.Location
	// Now replaces time.Now.
	Now func() time.Time
}

// Server is the HTTP front end.
type Server struct {
	svc      Service
	clubs    club.Registry
	router   chi.Router
	location *time.Location
	now      func() time.Time
}

// New builds the router. It fails only on an invalid rate limit.
func New(svc Service, opts Options) (*Server, error) {
	if opts.RateLimit == "" {
		opts.RateLimit = DefaultRateLimit
	}
	rate, err := limiter.NewRateFromFormatted(opts.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("rate limit %q: %w", opts.RateLimit, err)
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		svc:      svc,
		clubs:    svc.Clubs(),
		location: opts.Location,
		now:      opts.Now,
	}

	limited := limiterhttp.NewMiddleware(
		limiter.New(memory.NewStore(), rate),
		limiterhttp.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.IncrCounter("http.rate_limited")
			writeError(w, http.StatusTooManyRequests, "Too many requests")
		}),
		limiterhttp.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("Rate limiter failed", logger.Fields{"path": r.URL.Path}, err)
			writeError(w, http.StatusInternalServerError, internalErrorDetail)
		}),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/tournaments", s.handleTournaments)
		r.Get("/clubs", s.handleClubs)
		r.Get("/server-time", s.handleServerTime)
		r.Get("/metrics", s.handleMetrics)

		r.Group(func(r chi.Router) {
			r.Use(limited.Handler)
			r.Get("/participants", s.handleParticipants)
			r.Get("/calendar", s.handleCalendar)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	s.router = r
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", logger.Fields{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("HTTP server stopped", nil)
	return nil
}
