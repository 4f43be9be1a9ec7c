package engineconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultUsesBuiltInSafetyLimits(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 200, cfg.MaxRegexLength)
	assert.Equal(t, 500, cfg.RegexTimeoutMS)
	assert.Equal(t, 50, cfg.MaxPathDepth)
	assert.Equal(t, 500, cfg.MaxPathLength)
	assert.False(t, cfg.Settings.DefaultBackup)
	assert.False(t, cfg.Settings.Debug)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadPartialFileFillsDefaultsForUnsetFields(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.toml")
	content := `
max_regex_length = 64

[settings]
debug = true
`
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.MaxRegexLength)
	assert.Equal(t, 500, cfg.RegexTimeoutMS)
	assert.Equal(t, 50, cfg.MaxPathDepth)
	assert.Equal(t, 500, cfg.MaxPathLength)
	assert.True(t, cfg.Settings.Debug)
	assert.Equal(t, 5000, cfg.Settings.ScanTimeoutMS)
}

func TestLoadMalformedFileErrors(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(p, []byte("not = [valid toml"), 0o644))

	_, err := Load(p)
	assert.Error(t, err)
}

func TestPathLimitsAndConditionLimitsConvert(t *testing.T) {
	cfg := Default()
	pl := cfg.PathLimits()
	assert.Equal(t, 50, pl.MaxDepth)
	assert.Equal(t, 500, pl.MaxLength)

	cl := cfg.ConditionLimits()
	assert.Equal(t, 200, cl.MaxRegexLength)
	assert.Equal(t, int64(500), cl.RegexTimeout.Milliseconds())
}
