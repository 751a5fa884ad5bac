package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jfschaefer/GLIFcore/internal/atomicfile"
)

// StateVersion is the current state file schema version.
const StateVersion = 1

// State is machine-local runtime state that outlives a session: the
// archive the user last switched to.
type State struct {
	Version int    `toml:"version"`
	Archive string `toml:"archive,omitempty"`
	Subdir  string `toml:"subdir,omitempty"`
}

// ResolveConfigPath resolves the effective config path from an optional override.
func ResolveConfigPath(explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	return DefaultPath()
}

// resolveSibling picks, in order: the explicit path, the configured value
// (relative to the config dir unless absolute), or name next to config.toml.
func resolveSibling(explicit, configured, configPath, name string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	configDir := filepath.Dir(ResolveConfigPath(configPath))
	if v := strings.TrimSpace(configured); v != "" {
		if isAbsolutePath(v) {
			return filepath.Clean(filepath.FromSlash(v))
		}
		return filepath.Join(configDir, filepath.FromSlash(v))
	}
	return filepath.Join(configDir, name)
}

// ResolveStatePath resolves the state.toml path.
func ResolveStatePath(explicit, configPath string, cfg *Config) string {
	var configured string
	if cfg != nil {
		configured = cfg.StateFile
	}
	return resolveSibling(explicit, configured, configPath, "state.toml")
}

// ResolveHistoryPath resolves the history database path.
func ResolveHistoryPath(explicit, configPath string, cfg *Config) string {
	var configured string
	if cfg != nil {
		configured = cfg.HistoryFile
	}
	return resolveSibling(explicit, configured, configPath, "history.db")
}

// Slash-rooted values count as absolute on every OS.
func isAbsolutePath(p string) bool {
	return filepath.IsAbs(p) || strings.HasPrefix(filepath.ToSlash(p), "/")
}

// LoadState loads state.toml. A missing file yields an empty state.
func LoadState(path string) (*State, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("state path is required")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &State{Version: StateVersion}, nil
	}

	var state State
	if _, err := toml.DecodeFile(path, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state %s: %w", path, err)
	}
	if state.Version == 0 {
		state.Version = StateVersion
	}
	state.Archive = strings.TrimSpace(state.Archive)
	state.Subdir = strings.Trim(strings.TrimSpace(state.Subdir), "/")
	if state.Archive == "" {
		state.Subdir = ""
	}
	return &state, nil
}

// SaveState writes state.toml atomically.
func SaveState(path string, state *State) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("state path is required")
	}
	normalized := State{Version: StateVersion}
	if state != nil {
		normalized.Archive = strings.TrimSpace(state.Archive)
		normalized.Subdir = strings.Trim(strings.TrimSpace(state.Subdir), "/")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(normalized); err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write state %s: %w", path, err)
	}
	return nil
}
