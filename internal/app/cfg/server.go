package cfg

import (
	"time"

	"ssvp/internal"
	"ssvp/internal/app/apps"
)

// ThresholdCfg is configuration for the wait_seconds threshold.
type ThresholdCfg struct {
	threshold float64
}

// NewThresholdCfg creates a new ThresholdCfg from the given config.
func NewThresholdCfg(threshold float64) *ThresholdCfg {
	return &ThresholdCfg{
		threshold: threshold,
	}
}

// ThresholdFromEnv creates a new ThresholdCfg from the current environment.
func ThresholdFromEnv() *ThresholdCfg {
	return &ThresholdCfg{
		threshold: internal.TimeoutThreshold,
	}
}

// ApplyServerApp applies the ThresholdCfg to a ServerApp.
func (cfg ThresholdCfg) ApplyServerApp(app *apps.ServerApp) error {
	app.Threshold = cfg.threshold
	return nil
}

// ReadTimeoutCfg is configuration for the per-session idle read timeout.
type ReadTimeoutCfg struct {
	timeout time.Duration
}

// NewReadTimeoutCfg creates a new ReadTimeoutCfg from the given config.
func NewReadTimeoutCfg(timeout time.Duration) *ReadTimeoutCfg {
	return &ReadTimeoutCfg{
		timeout: timeout,
	}
}

// ReadTimeoutFromEnv creates a new ReadTimeoutCfg from the current environment.
func ReadTimeoutFromEnv() *ReadTimeoutCfg {
	return &ReadTimeoutCfg{
		timeout: time.Duration(internal.ReadTimeoutMS) * time.Millisecond,
	}
}

// ApplyServerApp applies the ReadTimeoutCfg to a ServerApp.
func (cfg ReadTimeoutCfg) ApplyServerApp(app *apps.ServerApp) error {
	app.ReadTimeout = cfg.timeout
	return nil
}

// MaxSessionsCfg is configuration for the concurrent session bound.
type MaxSessionsCfg struct {
	max int
}

// NewMaxSessionsCfg creates a new MaxSessionsCfg from the given config.
func NewMaxSessionsCfg(max int) *MaxSessionsCfg {
	return &MaxSessionsCfg{
		max: max,
	}
}

// MaxSessionsFromEnv creates a new MaxSessionsCfg from the current environment.
func MaxSessionsFromEnv() *MaxSessionsCfg {
	return &MaxSessionsCfg{
		max: internal.MaxSessions,
	}
}

// ApplyServerApp applies the MaxSessionsCfg to a ServerApp.
func (cfg MaxSessionsCfg) ApplyServerApp(app *apps.ServerApp) error {
	app.MaxSessions = cfg.max
	return nil
}

// HealthPortCfg is configuration for the health endpoints port.
type HealthPortCfg struct {
	port uint16
}

// NewHealthPortCfg creates a new HealthPortCfg from the given config.
func NewHealthPortCfg(port uint16) *HealthPortCfg {
	return &HealthPortCfg{
		port: port,
	}
}

// HealthPortFromEnv creates a new HealthPortCfg from the current environment.
func HealthPortFromEnv() *HealthPortCfg {
	return &HealthPortCfg{
		port: uint16(internal.HealthPort),
	}
}

// ApplyServerApp applies the HealthPortCfg to a ServerApp.
func (cfg HealthPortCfg) ApplyServerApp(app *apps.ServerApp) error {
	app.HealthPort = cfg.port
	return nil
}
