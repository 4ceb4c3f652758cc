package main

import (
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcodamonte/ownership/internal/config"
	"github.com/marcodamonte/ownership/internal/logging"
	"github.com/marcodamonte/ownership/sharedcell"
)

func TestDemosHoldInvariants(t *testing.T) {
	logging.ConfigureTests()
	cfg := config.Default()

	demos := map[string]func(config.Config, zerolog.Logger) error{
		"construct":   demoConstruct,
		"clone":       demoClone,
		"assign":      demoAssign,
		"self-assign": demoSelfAssign,
		"sole-owner":  demoSoleOwner,
		"defer":       demoDefer,
		"errors":      demoErrors,
	}
	require.Len(t, demos, len(config.Sections))

	for _, name := range config.Sections {
		run, ok := demos[name]
		require.True(t, ok, "no demo for section %q", name)
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, run(cfg, zerolog.Nop()))
		})
	}
}

// The demos must not depend on the scenario values.
func TestDemosWithOtherValues(t *testing.T) {
	cfg, err := config.Parse(`
first = -1
second = -1
`)
	require.NoError(t, err)

	assert.NoError(t, demoClone(cfg, zerolog.Nop()))
	assert.NoError(t, demoAssign(cfg, zerolog.Nop()))
	assert.NoError(t, demoSoleOwner(cfg, zerolog.Nop()))
}

type failingDrop struct{ err error }

func (f failingDrop) Drop() error { return f.err }

// dropAll must surface a double free instead of swallowing it, and keep
// dropping the remaining handles.
func TestDropAllReportsErrors(t *testing.T) {
	released := 0
	a := sharedcell.Of(5, sharedcell.WithReleaseHook(func(int) { released++ }))
	b := a.Clone()

	err := dropAll(failingDrop{err: sharedcell.ErrDoubleFree}, b, a)

	assert.True(t, errors.Is(err, sharedcell.ErrDoubleFree))
	assert.Equal(t, 1, released)
	assert.True(t, a.Empty())
	assert.NoError(t, dropAll(a, b))
}
