// Package engineconfig holds the engine's tunable safety limits (all
// configurable with stated defaults) plus the demo CLI's own settings.
// Loaded from an optional TOML file; a missing file yields the built-in
// defaults rather than an error.
package engineconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/frontmatter-rules/engine/internal/condition"
	"github.com/frontmatter-rules/engine/internal/path"
)

// Config holds every engine-level safety limit and demo-CLI setting a rule
// storage record's settings object names.
type Config struct {
	// MaxRegexLength bounds a condition's `~` pattern length (default 200).
	MaxRegexLength int `toml:"max_regex_length"`

	// RegexTimeoutMS bounds the wall-clock budget for one regex match call
	// (default ~500ms).
	RegexTimeoutMS int `toml:"regex_timeout_ms"`

	// MaxPathDepth bounds the number of segments a parsed path may have
	// (default 50).
	MaxPathDepth int `toml:"max_path_depth"`

	// MaxPathLength bounds a path's raw text length (default 500).
	MaxPathLength int `toml:"max_path_length"`

	// Settings holds the rule storage record's host-facing settings block.
	Settings Settings `toml:"settings"`
}

// Settings is the `settings` object of the rule storage record:
// `{defaultBackup:bool, scanTimeout:ms, debug:bool}`.
type Settings struct {
	// DefaultBackup is the settings record's backup flag. It is loaded and
	// kept here only; the demo CLI writes no .bak file.
	DefaultBackup bool `toml:"default_backup"`

	// ScanTimeoutMS is the settings record's per-file scan timeout in
	// milliseconds. It is loaded and kept here only; the apply subcommand
	// applies no timeout.
	ScanTimeoutMS int `toml:"scan_timeout_ms"`

	// Debug is the settings record's debug flag. It is loaded and kept
	// here only; the demo CLI prints no extra diagnostics for it.
	Debug bool `toml:"debug"`
}

// Default returns the engine's built-in safety-limit defaults.
func Default() Config {
	return Config{
		MaxRegexLength: 200,
		RegexTimeoutMS: 500,
		MaxPathDepth:   50,
		MaxPathLength:  500,
		Settings: Settings{
			DefaultBackup: false,
			ScanTimeoutMS: 5000,
			Debug:         false,
		},
	}
}

// Load loads configuration from path, falling back to Default() for any
// field the file doesn't set and for the whole Config when path doesn't
// exist.
func Load(configPath string) (Config, error) {
	cfg := Default()

	if configPath == "" {
		return cfg, nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse engine config %s: %w", configPath, err)
	}

	// A present-but-zero limit field means "unset in the file", not
	// "disable the limit" — the DSL packages treat non-positive limits the
	// same way via their own orDefault(), but engineconfig enforces the
	// same rule here so a partially filled TOML file still yields sane
	// limits rather than a zero-length cap that rejects every path.
	defaults := Default()
	if cfg.MaxRegexLength <= 0 {
		cfg.MaxRegexLength = defaults.MaxRegexLength
	}
	if cfg.RegexTimeoutMS <= 0 {
		cfg.RegexTimeoutMS = defaults.RegexTimeoutMS
	}
	if cfg.MaxPathDepth <= 0 {
		cfg.MaxPathDepth = defaults.MaxPathDepth
	}
	if cfg.MaxPathLength <= 0 {
		cfg.MaxPathLength = defaults.MaxPathLength
	}
	if cfg.Settings.ScanTimeoutMS <= 0 {
		cfg.Settings.ScanTimeoutMS = defaults.Settings.ScanTimeoutMS
	}

	return cfg, nil
}

// PathLimits converts the loaded config into the path package's Limits.
func (c Config) PathLimits() path.Limits {
	return path.Limits{MaxDepth: c.MaxPathDepth, MaxLength: c.MaxPathLength}
}

// ConditionLimits converts the loaded config into the condition package's
// regex-safety Limits.
func (c Config) ConditionLimits() condition.Limits {
	return condition.Limits{
		MaxRegexLength: c.MaxRegexLength,
		RegexTimeout:   msToDuration(c.RegexTimeoutMS),
	}
}

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// DefaultPath returns the XDG-style config file path the demo CLI checks
// before falling back to built-in defaults.
func DefaultPath() string {
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "fmrules", "config.toml")
	}
	return filepath.Join(".", "fmrules.toml")
}
