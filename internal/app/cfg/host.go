package cfg

import (
	"ssvp/internal"
	"ssvp/internal/app/apps"
)

// HostCfg is configuration for the server host.
type HostCfg struct {
	host string
}

// NewHostCfg creates a new HostCfg from the given config.
func NewHostCfg(host string) *HostCfg {
	return &HostCfg{
		host: host,
	}
}

// HostFromEnv creates a new HostCfg from the current environment.
func HostFromEnv() *HostCfg {
	return &HostCfg{
		host: internal.Host,
	}
}

// ApplyClientApp applies the HostCfg to a ClientApp.
func (cfg HostCfg) ApplyClientApp(app *apps.ClientApp) error {
	app.Host = cfg.host
	return nil
}

// ApplyServerApp applies the HostCfg to a ServerApp.
func (cfg HostCfg) ApplyServerApp(app *apps.ServerApp) error {
	app.Host = cfg.host
	return nil
}
