package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/andrei-cloud/go_paycalc/internal/calculator"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey struct{}

// NewRouter returns the HTTP handler with health, calculator and middleware routes.
func NewRouter(registry *calculator.Registry, logger zerolog.Logger) http.Handler {
	router := chi.NewRouter()
	router.Use(withRequestID)
	router.Use(structuredLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/-/live", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	NewAPI(registry, logger).AppendRoutes(router)

	return router
}

// withRequestID tags every request with a uuid, reusing X-Request-Id when the caller sent one.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)

	return id
}

func structuredLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info().
					Str("event", "http_request").
					Str("request_id", requestID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Str("duration", time.Since(start).String()).
					Msg("served request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// Server runs the HTTP API until stopped.
type Server struct {
	srv    *http.Server
	wg     sync.WaitGroup
	logger zerolog.Logger
	Addr   string
}

func NewServer(addr string, registry *calculator.Registry, logger zerolog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(registry, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
		Addr:   addr,
	}
}

// Start listens on the configured address and serves in the background. Addr is updated
// with the bound address, which matters for port 0.
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	s.Addr = l.Addr().String()
	s.logger.Info().Str("address", s.Addr).Msg("http server started")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("http server failed")
		}
	}()

	return nil
}

// Stop shuts the server down, waiting up to five seconds for requests in flight.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.srv.Shutdown(ctx)
	s.wg.Wait()

	return err
}
