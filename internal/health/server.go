// Package health serves liveness and readiness endpoints and keeps a hosted instance awake.
package health

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/m3rciful/insurancebot/core/buildinfo"
	"github.com/m3rciful/insurancebot/core/logger"
)

// Checker reports whether a dependency is ready to serve.
type Checker func(ctx context.Context) error

// Server exposes GET /health and GET /ready.
type Server struct {
	router *chi.Mux
	srv    *http.Server
	ready  Checker
}

// NewServer builds a server listening on listen. A nil ready checker always reports ready.
func NewServer(listen string, ready Checker) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(requestLog)

	s := &Server{
		router: router,
		ready:  ready,
		srv: &http.Server{
			Addr:              listen,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
	router.Get("/", s.health)
	router.Get("/health", s.health)
	router.Get("/ready", s.readiness)
	return s
}

// Handler returns the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "http", "http.listen", slog.String("listen", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.String()})
}

func (s *Server) readiness(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			logger.Warn(r.Context(), "http", "http.ready",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	payload, err := sonic.Marshal(body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Debug(r.Context(), "http", "http.request",
			slog.String("url", r.URL.Path),
			slog.Int("http_code", ww.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	})
}
