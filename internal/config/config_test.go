package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesOnlyDefinedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ownership.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"
second = 11
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.LogLevel = "debug"
	want.Second = 11
	assert.Equal(t, want, cfg)
}

func TestParseSections(t *testing.T) {
	cfg, err := Parse(`sections = ["errors", " Clone ", "clone", ""]`)
	require.NoError(t, err)

	assert.Equal(t, []string{"clone", "errors"}, cfg.Sections)
	assert.True(t, cfg.Enabled("clone"))
	assert.False(t, cfg.Enabled("assign"))
}

func TestParseUnknownSection(t *testing.T) {
	_, err := Parse(`sections = ["move"]`)

	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestParseUnknownLogLevel(t *testing.T) {
	for _, doc := range []string{`log_level = "loud"`, `log_level = ""`} {
		_, err := Parse(doc)
		assert.ErrorIs(t, err, ErrUnknownLogLevel, doc)
	}

	cfg, err := Parse(`log_level = " Warn "`)
	require.NoError(t, err)
	assert.Equal(t, "Warn", cfg.LogLevel)
}

func TestParseUnknownKey(t *testing.T) {
	_, err := Parse(`max_size = 100`)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_size")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))

	assert.Error(t, err)
}

func TestDefaultRunsEverything(t *testing.T) {
	cfg := Default()

	for _, s := range Sections {
		assert.True(t, cfg.Enabled(s), s)
	}
	assert.Equal(t, 5, cfg.First)
	assert.Equal(t, 9, cfg.Second)
}

func TestBlankAppKeepsDefault(t *testing.T) {
	cfg, err := Parse(`app = "  "`)
	require.NoError(t, err)

	assert.Equal(t, "ownership", cfg.App)
}
