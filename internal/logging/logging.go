// Package logging sets up zerolog for the demo program and its tests.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel   = "OWNERSHIP_LOG_LEVEL"
	EnvLogNoColor = "OWNERSHIP_LOG_NOCOLOR"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Settings is what Configure resolves from the profile and the environment.
type Settings struct {
	Level   zerolog.Level
	NoColor bool
}

var configureOnce sync.Once

func ConfigureRuntime() Settings {
	return Configure(ProfileRuntime)
}

func ConfigureTests() Settings {
	return Configure(ProfileTest)
}

// Configure sets the global zerolog level once per process. Later calls
// return the settings they would have applied but change nothing.
func Configure(profile Profile) Settings {
	s := defaultSettings(profile)
	applyEnvOverrides(&s)
	configureOnce.Do(func() {
		zerolog.SetGlobalLevel(s.Level)
	})
	return s
}

// New returns a console logger tagged with app. A nil w writes to stdout.
func New(app string, w io.Writer, noColor bool) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}
	logger := zerolog.New(output).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}

func defaultSettings(profile Profile) Settings {
	switch profile {
	case ProfileTest:
		return Settings{Level: zerolog.DebugLevel, NoColor: true}
	default:
		return Settings{Level: zerolog.InfoLevel}
	}
}

func applyEnvOverrides(s *Settings) {
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		s.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		s.NoColor = v
	}
}

// ParseLevel maps a level name to a zerolog level. It reports false for an
// empty or unknown name.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
