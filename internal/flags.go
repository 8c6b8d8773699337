// Package internal defines the process-wide configuration surface: the
// command line flags, their environment fallbacks, and the typed values
// the rest of the application reads.
package internal

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Flag describes one command line flag with an environment fallback.
type Flag struct {
	Name    string
	Env     string
	Default string
	Usage   string

	value string
}

// Value returns the parsed flag value, the environment value, or the
// default, in that order of precedence.
func (f *Flag) Value() string {
	if f.value != "" {
		return f.value
	}
	if v, ok := os.LookupEnv(f.Env); ok {
		return v
	}
	return f.Default
}

// Typed configuration values populated by ValidateEnv.
var (
	Env              string
	LogLevel         string
	Host             string
	Port             int
	HealthPort       int
	TimeoutThreshold float64
	ReadTimeoutMS    int
	MaxSessions      int
	Data             string
	Fixtures         string
	KillswitchMS     int
)

var (
	EnvFlag = Flag{
		Name:    "env",
		Env:     "SSVP_ENV",
		Default: "development",
		Usage:   "deployment environment name",
	}
	LogLevelFlag = Flag{
		Name:    "log-level",
		Env:     "SSVP_LOG_LEVEL",
		Default: "info",
		Usage:   "log level (trace|debug|info|warn|error)",
	}
	HostFlag = Flag{
		Name:    "host",
		Env:     "SSVP_HOST",
		Default: "localhost",
		Usage:   "server host",
	}
	PortFlag = Flag{
		Name:    "port",
		Env:     "SSVP_PORT",
		Default: "8080",
		Usage:   "server port",
	}
	HealthPortFlag = Flag{
		Name:    "health-port",
		Env:     "SSVP_HEALTH_PORT",
		Default: "0",
		Usage:   "health and metrics port, 0 disables the endpoints",
	}
	TimeoutFlag = Flag{
		Name:    "timeout",
		Env:     "SSVP_TIMEOUT",
		Default: "5",
		Usage:   "minimum accepted wait_seconds per step",
	}
	ReadTimeoutMSFlag = Flag{
		Name:    "read-timeout-ms",
		Env:     "SSVP_READ_TIMEOUT_MS",
		Default: "30000",
		Usage:   "per-session idle read timeout in milliseconds",
	}
	MaxSessionsFlag = Flag{
		Name:    "max-sessions",
		Env:     "SSVP_MAX_SESSIONS",
		Default: "0",
		Usage:   "maximum concurrent sessions, 0 means unlimited",
	}
	DataFlag = Flag{
		Name:    "data",
		Env:     "SSVP_DATA",
		Default: "success",
		Usage:   "fixture data set to send",
	}
	FixturesFlag = Flag{
		Name:    "fixtures",
		Env:     "SSVP_FIXTURES",
		Default: "",
		Usage:   "path to the fixtures catalog",
	}
	KillswitchMSFlag = Flag{
		Name:    "killswitch-ms",
		Env:     "SSVP_KILLSWITCH_MS",
		Default: "0",
		Usage:   "go silent after this many milliseconds, 0 disables",
	}
)

// RegisterCommandFlags registers the flags on the command, seeding each
// default from its environment variable when set.
func RegisterCommandFlags(cmd *cobra.Command, flags []*Flag) error {
	for _, f := range flags {
		if f.Name == "" {
			return errors.New("flag name must not be empty")
		}
		def := f.Default
		if v, ok := os.LookupEnv(f.Env); ok {
			def = v
		}
		cmd.PersistentFlags().StringVar(&f.value, f.Name, def, f.Usage)
	}
	return nil
}

// ValidateEnv parses and validates the process configuration, populating
// the typed package variables.
func ValidateEnv() error {
	Env = EnvFlag.Value()

	LogLevel = strings.ToLower(LogLevelFlag.Value())
	switch LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return errors.Errorf("invalid log level %q", LogLevel)
	}

	Host = HostFlag.Value()
	if Host == "" {
		return errors.New("host must not be empty")
	}

	var err error
	Port, err = parsePort(PortFlag.Value())
	if err != nil {
		return errors.Wrap(err, "parse port failed")
	}
	HealthPort, err = parsePort(HealthPortFlag.Value())
	if err != nil {
		return errors.Wrap(err, "parse health port failed")
	}

	TimeoutThreshold, err = strconv.ParseFloat(TimeoutFlag.Value(), 64)
	if err != nil {
		return errors.Wrapf(err, "parse timeout %q failed", TimeoutFlag.Value())
	}
	if TimeoutThreshold < 0 {
		return errors.New("timeout must not be negative")
	}

	ReadTimeoutMS, err = strconv.Atoi(ReadTimeoutMSFlag.Value())
	if err != nil {
		return errors.Wrapf(err, "parse read timeout %q failed", ReadTimeoutMSFlag.Value())
	}
	if ReadTimeoutMS <= 0 {
		return errors.New("read timeout must be positive")
	}

	MaxSessions, err = strconv.Atoi(MaxSessionsFlag.Value())
	if err != nil {
		return errors.Wrapf(err, "parse max sessions %q failed", MaxSessionsFlag.Value())
	}
	if MaxSessions < 0 {
		return errors.New("max sessions must not be negative")
	}

	Data = DataFlag.Value()
	if Data == "" {
		return errors.New("data set must not be empty")
	}
	Fixtures = FixturesFlag.Value()

	KillswitchMS, err = strconv.Atoi(KillswitchMSFlag.Value())
	if err != nil {
		return errors.Wrapf(err, "parse killswitch %q failed", KillswitchMSFlag.Value())
	}
	if KillswitchMS < 0 {
		return errors.New("killswitch must not be negative")
	}

	return nil
}

func parsePort(s string) (int, error) {
	p, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid port %q", s)
	}
	return int(p), nil
}
