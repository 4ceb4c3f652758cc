package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/marcodamonte/ownership/internal/config"
	"github.com/marcodamonte/ownership/internal/logging"
)

// Each demo walks through one operation of sharedcell.Cell and checks the
// ownership invariants on the way: the count always equals the number of
// live handles, and every value is released exactly once.
//
// Run:
//
//	go run .
//	go run . -config ownership.toml
//	OWNERSHIP_LOG_LEVEL=debug go run .
func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	settings := logging.ConfigureRuntime()
	if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok && os.Getenv(logging.EnvLogLevel) == "" {
		zerolog.SetGlobalLevel(lvl)
	}
	logger := logging.New(cfg.App, os.Stderr, settings.NoColor)

	demos := []struct {
		name  string
		title string
		run   func(config.Config, zerolog.Logger) error
	}{
		{"construct", "Construct — a fresh pair starts at refs=1", demoConstruct},
		{"clone", "Clone — copy shares the pair, Drop gives it back", demoClone},
		{"assign", "Assign — leave the old pair, adopt the new one", demoAssign},
		{"self-assign", "Self-assignment — a = a must not touch the count", demoSelfAssign},
		{"sole-owner", "Sole owner reassigned — release happens before adopt", demoSoleOwner},
		{"defer", "defer Drop — scope-bound ownership", demoDefer},
		{"errors", "Errors — invalid argument, empty handle", demoErrors},
	}

	failed := 0
	for _, d := range demos {
		if !cfg.Enabled(d.name) {
			continue
		}
		section(d.title)
		if err := d.run(cfg, logger); err != nil {
			failed++
			fmt.Printf("  ❌ %v\n", err)
			logger.Error().Err(err).Str("section", d.name).Msg("invariant violated")
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
	fmt.Println("\n🎉 every value released exactly once")
}

func section(title string) {
	fmt.Printf("\n━━━ %s ━━━\n", title)
}
