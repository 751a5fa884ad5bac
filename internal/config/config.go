// Package config handles the global GLIF configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jfschaefer/GLIFcore/internal/atomicfile"
)

// Config represents the global GLIF configuration. Every engine path is
// optional; empty values are discovered from $PATH and the environment.
type Config struct {
	// GFPath is the gf binary.
	GFPath string `toml:"gf_path"`

	// ELPIPath is the elpi binary.
	ELPIPath string `toml:"elpi_path"`

	// ELPIInclude is the directory holding glif.elpi, passed to elpi with -I.
	ELPIInclude string `toml:"elpi_include"`

	// JavaPath is the java binary used to run MMT.
	JavaPath string `toml:"java_path"`

	// MMTJar overrides mmt.jar discovery ($MMT_JAR, $MMT_PATH, ~/MMT).
	MMTJar string `toml:"mmt_jar"`

	// MathHub overrides MathHub discovery ($MATHHUB, mmtrc).
	MathHub string `toml:"mathhub"`

	// DefaultArchive is selected when a session starts.
	DefaultArchive string `toml:"default_archive"`

	// StartupTimeout bounds how long MMT may take to start, e.g. "2m".
	StartupTimeout string `toml:"startup_timeout"`

	// StateFile overrides where state.toml lives.
	StateFile string `toml:"state_file"`

	// HistoryFile overrides where the command history database lives.
	HistoryFile string `toml:"history_file"`

	// Debug sends engine traffic logs to stderr.
	Debug bool `toml:"debug"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an ANSI color code ("0" to "255") or a hex color ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme for rendered help and code.
	CodeTheme string `toml:"code_theme"`
}

// Timeout parses StartupTimeout. Zero means the engine default.
func (c *Config) Timeout() (time.Duration, error) {
	s := strings.TrimSpace(c.StartupTimeout)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid startup_timeout %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid startup_timeout %q: must not be negative", s)
	}
	return d, nil
}

// Load loads the configuration from the default location.
// Returns an empty config if the file doesn't exist.
func Load() (*Config, error) {
	path := DefaultPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in config %s", undecoded[0].String(), path)
	}
	if _, err := cfg.Timeout(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDotEnv reads a .env file from dir into the process environment, so
// MMT_JAR, MATHHUB and friends can be kept next to a project. Variables
// that are already set win. A missing file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// DefaultPath returns the default config file path.
// ~/.config/glif/config.toml wins if it exists; otherwise the OS config dir.
func DefaultPath() string {
	if p, err := XDGPath(); err == nil {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "glif", "config.toml")
	}
	return filepath.Join(".", "config.toml")
}

// XDGPath returns the XDG-style config path (~/.config/glif/config.toml).
func XDGPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "glif", "config.toml"), nil
}

const defaultConfig = `# GLIF configuration
#
# All engine settings are optional. Without them gf and elpi are looked up
# in $PATH and mmt.jar via $MMT_JAR, $MMT_PATH or ~/MMT.

# gf_path = "/usr/local/bin/gf"
# elpi_path = "/usr/local/bin/elpi"
# elpi_include = "/path/to/glif/elpi"
# java_path = "java"
# mmt_jar = "/path/to/MMT/deploy/mmt.jar"
# mathhub = "/path/to/MMT-content"
# default_archive = "tmpGLIF/default"
# startup_timeout = "2m"
# debug = false

# Optional UI accent color for headers in terminal output.
# Supports ANSI color codes (0-255) or hex (#RRGGBB).
# [ui]
# accent = "39"
# code_theme = "monokai"
`

// CreateDefault creates a commented config file at path if none exists and
// returns whether it wrote one.
func CreateDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := atomicfile.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}
