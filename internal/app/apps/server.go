package apps

import (
	"context"
	"sync"
	"time"

	"ssvp/internal"
	"ssvp/internal/pkg/health"
	"ssvp/internal/pkg/server"
	"ssvp/internal/pkg/validate"

	"github.com/pkg/errors"
)

// ServerAppCfg configures a ServerApp.
type ServerAppCfg interface {
	ApplyServerApp(*ServerApp) error
}

// ServerApp is the step validation server application.
type ServerApp struct {
	Host        string        `validate:"required"`
	Port        uint16        `validate:"required"`
	Threshold   float64       `validate:"required"`
	ReadTimeout time.Duration `validate:"required"`
	MaxSessions int
	HealthPort  uint16
}

// NewServerApp creates a new ServerApp.
func NewServerApp(cfgs ...ServerAppCfg) (*ServerApp, error) {
	app := &ServerApp{}
	for _, cfg := range cfgs {
		if err := cfg.ApplyServerApp(app); err != nil {
			return nil, errors.Wrap(err, "apply ServerApp cfg failed")
		}
	}
	if app.Host == "" {
		app.Host = internal.Host
	}
	if app.Port == 0 {
		app.Port = uint16(internal.Port)
	}
	if app.Threshold == 0 {
		app.Threshold = internal.TimeoutThreshold
	}
	if app.ReadTimeout == 0 {
		app.ReadTimeout = time.Duration(internal.ReadTimeoutMS) * time.Millisecond
	}
	if app.MaxSessions == 0 {
		app.MaxSessions = internal.MaxSessions
	}
	if app.HealthPort == 0 {
		app.HealthPort = uint16(internal.HealthPort)
	}
	if err := validate.Validate().Struct(app); err != nil {
		return nil, errors.Wrap(err, "validate ServerApp failed")
	}
	return app, nil
}

// Run serves the validation protocol until ctx is cancelled. When a health
// port is configured, the health endpoints run alongside and both listeners
// share their fate.
func (app *ServerApp) Run(ctx context.Context, _ []string) error {
	srv, err := server.NewServer(
		server.WithHost(app.Host),
		server.WithPort(app.Port),
		server.WithThreshold(app.Threshold),
		server.WithReadTimeout(app.ReadTimeout),
		server.WithMaxSessions(app.MaxSessions),
	)
	if err != nil {
		return errors.Wrap(err, "create server failed")
	}
	if err := srv.Listen(); err != nil {
		return errors.Wrap(err, "listen failed")
	}

	if app.HealthPort == 0 {
		return errors.Wrap(srv.Serve(ctx), "serve failed")
	}

	healthSrv, err := health.NewServer(
		health.WithPort(app.HealthPort),
		health.WithReadyCheck(func() bool { return srv.Addr() != nil }),
	)
	if err != nil {
		return errors.Wrap(err, "create health server failed")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer cancel()
		errs <- errors.Wrap(srv.Serve(ctx), "serve failed")
	}()
	go func() {
		defer wg.Done()
		defer cancel()
		errs <- errors.Wrap(healthSrv.Serve(ctx), "serve health endpoints failed")
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
