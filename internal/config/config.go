// Package config loads the demo program's TOML configuration.
package config

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"github.com/marcodamonte/ownership/internal/logging"
)

// Section names accepted in the sections list, in the order the demo runs
// them.
var Sections = []string{
	"construct",
	"clone",
	"assign",
	"self-assign",
	"sole-owner",
	"defer",
	"errors",
}

var (
	ErrUnknownSection  = errors.New("unknown section")
	ErrUnknownLogLevel = errors.New("unknown log level")
)

type Config struct {
	App      string
	LogLevel string
	// Sections to run, in Sections order. Empty means all.
	Sections []string
	// First and Second are the two values the demos construct cells from.
	First  int
	Second int
}

type fileConfig struct {
	App      string   `toml:"app"`
	LogLevel string   `toml:"log_level"`
	Sections []string `toml:"sections"`
	First    int      `toml:"first"`
	Second   int      `toml:"second"`
}

func Default() Config {
	return Config{
		App:      "ownership",
		LogLevel: "info",
		First:    5,
		Second:   9,
	}
}

// Load reads path on top of Default. Only keys present in the file
// override defaults.
func Load(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, errors.Wrap(err, "load config")
	}
	return apply(Default(), raw, meta)
}

// Parse is Load for an in-memory document.
func Parse(doc string) (Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(doc, &raw)
	if err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	return apply(Default(), raw, meta)
}

func apply(cfg Config, raw fileConfig, meta toml.MetaData) (Config, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Newf("config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("app") {
		if app := strings.TrimSpace(raw.App); app != "" {
			cfg.App = app
		}
	}

	if meta.IsDefined("log_level") {
		level := strings.TrimSpace(raw.LogLevel)
		if _, ok := logging.ParseLevel(level); !ok {
			return Config{}, errors.Wrapf(ErrUnknownLogLevel, "config: log_level %q", level)
		}
		cfg.LogLevel = level
	}

	if meta.IsDefined("sections") {
		sections, err := normalizeSections(raw.Sections)
		if err != nil {
			return Config{}, err
		}
		cfg.Sections = sections
	}

	if meta.IsDefined("first") {
		cfg.First = raw.First
	}

	if meta.IsDefined("second") {
		cfg.Second = raw.Second
	}

	return cfg, nil
}

// Enabled reports whether section should run.
func (c Config) Enabled(section string) bool {
	if len(c.Sections) == 0 {
		return true
	}
	for _, s := range c.Sections {
		if s == section {
			return true
		}
	}
	return false
}

// normalizeSections trims, dedupes and orders the requested sections.
func normalizeSections(in []string) ([]string, error) {
	want := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !known(s) {
			return nil, errors.Wrapf(ErrUnknownSection, "config: section %q", s)
		}
		want[s] = true
	}

	out := make([]string, 0, len(want))
	for _, s := range Sections {
		if want[s] {
			out = append(out, s)
		}
	}
	return out, nil
}

func known(section string) bool {
	for _, s := range Sections {
		if s == section {
			return true
		}
	}
	return false
}
