package apps

import (
	"context"
	"net"
	"strconv"
	"time"

	"ssvp/internal"
	"ssvp/internal/pkg/client"
	"ssvp/internal/pkg/fixture"
	"ssvp/internal/pkg/validate"

	"github.com/pkg/errors"
)

// ClientAppCfg configures a ClientApp.
type ClientAppCfg interface {
	ApplyClientApp(*ClientApp) error
}

// ClientApp is the step validation client application.
type ClientApp struct {
	Host       string `validate:"required"`
	Port       uint16 `validate:"required"`
	Data       string `validate:"required"`
	Fixtures   string
	Killswitch time.Duration
}

// NewClientApp creates a new ClientApp.
func NewClientApp(cfgs ...ClientAppCfg) (*ClientApp, error) {
	app := &ClientApp{}
	for _, cfg := range cfgs {
		if err := cfg.ApplyClientApp(app); err != nil {
			return nil, errors.Wrap(err, "apply ClientApp cfg failed")
		}
	}
	if app.Host == "" {
		app.Host = internal.Host
	}
	if app.Port == 0 {
		app.Port = uint16(internal.Port)
	}
	if app.Data == "" {
		app.Data = internal.Data
	}
	if app.Fixtures == "" {
		app.Fixtures = internal.Fixtures
	}
	if app.Killswitch == 0 {
		app.Killswitch = time.Duration(internal.KillswitchMS) * time.Millisecond
	}
	if err := validate.Validate().Struct(app); err != nil {
		return nil, errors.Wrap(err, "validate ClientApp failed")
	}
	return app, nil
}

// Run loads the selected fixture and plays it against the server. A data
// set name given as the first positional argument overrides the configured
// one.
func (app *ClientApp) Run(ctx context.Context, args []string) error {
	data := app.Data
	if len(args) > 0 && args[0] != "" {
		data = args[0]
	}
	path, err := fixture.Resolve(app.Fixtures, data)
	if err != nil {
		return errors.Wrap(err, "resolve fixture failed")
	}
	steps, err := fixture.Load(path)
	if err != nil {
		return errors.Wrap(err, "load fixture failed")
	}

	c, err := client.NewClient(
		client.WithServerAddr(net.JoinHostPort(app.Host, strconv.Itoa(int(app.Port)))),
		client.WithSteps(steps),
		client.WithKillswitch(app.Killswitch),
	)
	if err != nil {
		return errors.Wrap(err, "create client failed")
	}
	if err := c.Connect(ctx); err != nil {
		return errors.Wrap(err, "connect client failed")
	}
	if err := c.Run(ctx); err != nil {
		return errors.Wrap(err, "run client failed")
	}
	return nil
}
