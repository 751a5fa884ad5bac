package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jfschaefer/GLIFcore/internal/atomicfile"
)

// persistedConfig omits unset keys so saved files stay minimal.
type persistedConfig struct {
	GFPath         *string              `toml:"gf_path,omitempty"`
	ELPIPath       *string              `toml:"elpi_path,omitempty"`
	ELPIInclude    *string              `toml:"elpi_include,omitempty"`
	JavaPath       *string              `toml:"java_path,omitempty"`
	MMTJar         *string              `toml:"mmt_jar,omitempty"`
	MathHub        *string              `toml:"mathhub,omitempty"`
	DefaultArchive *string              `toml:"default_archive,omitempty"`
	StartupTimeout *string              `toml:"startup_timeout,omitempty"`
	StateFile      *string              `toml:"state_file,omitempty"`
	HistoryFile    *string              `toml:"history_file,omitempty"`
	Debug          *bool                `toml:"debug,omitempty"`
	UI             *persistedUISettings `toml:"ui,omitempty"`
}

type persistedUISettings struct {
	Accent    *string `toml:"accent,omitempty"`
	CodeTheme *string `toml:"code_theme,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// SaveTo writes the config to path atomically.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := persistedConfig{
		GFPath:         nonEmptyPtr(cfg.GFPath),
		ELPIPath:       nonEmptyPtr(cfg.ELPIPath),
		ELPIInclude:    nonEmptyPtr(cfg.ELPIInclude),
		JavaPath:       nonEmptyPtr(cfg.JavaPath),
		MMTJar:         nonEmptyPtr(cfg.MMTJar),
		MathHub:        nonEmptyPtr(cfg.MathHub),
		DefaultArchive: nonEmptyPtr(cfg.DefaultArchive),
		StartupTimeout: nonEmptyPtr(cfg.StartupTimeout),
		StateFile:      nonEmptyPtr(cfg.StateFile),
		HistoryFile:    nonEmptyPtr(cfg.HistoryFile),
	}
	if cfg.Debug {
		out.Debug = &cfg.Debug
	}
	accent := nonEmptyPtr(cfg.UI.Accent)
	codeTheme := nonEmptyPtr(cfg.UI.CodeTheme)
	if accent != nil || codeTheme != nil {
		out.UI = &persistedUISettings{Accent: accent, CodeTheme: codeTheme}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
