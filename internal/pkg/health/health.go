// Package health serves the /health, /ready and /metrics endpoints.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"ssvp/internal/pkg/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// Server exposes /health, /ready and /metrics over HTTP, next to the
// protocol listener.
type Server struct {
	port    uint16
	ready   func() bool
	started time.Time
}

// Cfg configures a health Server.
type Cfg func(*Server) error

// WithPort sets the listen port.
func WithPort(port uint16) Cfg {
	return func(s *Server) error {
		s.port = port
		return nil
	}
}

// WithReadyCheck sets the readiness probe backing /ready.
func WithReadyCheck(ready func() bool) Cfg {
	return func(s *Server) error {
		s.ready = ready
		return nil
	}
}

// NewServer creates a new health Server with the given configuration.
func NewServer(cfgs ...Cfg) (*Server, error) {
	server := &Server{started: time.Now()}
	for _, cfg := range cfgs {
		if err := cfg(server); err != nil {
			return nil, errors.Wrap(err, "apply health Server cfg failed")
		}
	}
	if server.ready == nil {
		server.ready = func() bool { return true }
	}
	return server, nil
}

// Router returns the HTTP routes served.
func (s *Server) Router() http.Handler {
	metrics.RegisterMetrics()
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", s.getHealth)
	r.Get("/ready", s.getReady)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Serve blocks serving HTTP until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(int(s.port)),
		Handler: s.Router(),
	}
	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()
	logger.WithField("addr", srv.Addr).Info("health endpoints listening")
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown health server failed")
		}
		<-errs
		return nil
	case err := <-errs:
		return errors.Wrap(err, "serve health endpoints failed")
	}
}

func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, map[string]string{
		"status":  "ok",
		"service": "ssvp",
		"uptime":  time.Since(s.started).String(),
	}, http.StatusOK)
}

func (s *Server) getReady(w http.ResponseWriter, _ *http.Request) {
	if !s.ready() {
		respondJSON(w, map[string]string{"status": "not ready"}, http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, map[string]string{"status": "ready"}, http.StatusOK)
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.WithError(err).Error("encode response failed")
	}
}
