package cfg

import (
	"time"

	"ssvp/internal"
	"ssvp/internal/app/apps"
)

// DataCfg is configuration for the fixture data set the client sends.
type DataCfg struct {
	data string
}

// NewDataCfg creates a new DataCfg from the given config.
func NewDataCfg(data string) *DataCfg {
	return &DataCfg{
		data: data,
	}
}

// DataFromEnv creates a new DataCfg from the current environment.
func DataFromEnv() *DataCfg {
	return &DataCfg{
		data: internal.Data,
	}
}

// ApplyClientApp applies the DataCfg to a ClientApp.
func (cfg DataCfg) ApplyClientApp(app *apps.ClientApp) error {
	app.Data = cfg.data
	return nil
}

// FixturesCfg is configuration for the fixtures catalog path.
type FixturesCfg struct {
	path string
}

// NewFixturesCfg creates a new FixturesCfg from the given config.
func NewFixturesCfg(path string) *FixturesCfg {
	return &FixturesCfg{
		path: path,
	}
}

// FixturesFromEnv creates a new FixturesCfg from the current environment.
func FixturesFromEnv() *FixturesCfg {
	return &FixturesCfg{
		path: internal.Fixtures,
	}
}

// ApplyClientApp applies the FixturesCfg to a ClientApp.
func (cfg FixturesCfg) ApplyClientApp(app *apps.ClientApp) error {
	app.Fixtures = cfg.path
	return nil
}

// KillswitchCfg is configuration for the client killswitch.
type KillswitchCfg struct {
	after time.Duration
}

// NewKillswitchCfg creates a new KillswitchCfg from the given config.
func NewKillswitchCfg(after time.Duration) *KillswitchCfg {
	return &KillswitchCfg{
		after: after,
	}
}

// KillswitchFromEnv creates a new KillswitchCfg from the current environment.
func KillswitchFromEnv() *KillswitchCfg {
	return &KillswitchCfg{
		after: time.Duration(internal.KillswitchMS) * time.Millisecond,
	}
}

// ApplyClientApp applies the KillswitchCfg to a ClientApp.
func (cfg KillswitchCfg) ApplyClientApp(app *apps.ClientApp) error {
	app.Killswitch = cfg.after
	return nil
}
