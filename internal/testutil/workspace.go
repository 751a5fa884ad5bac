// Package testutil provides reusable test utilities for GLIF integration tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestWorkspace is a throwaway GLIF setup: a config file, an empty MathHub
// and a working directory. Engines that are not configured point at
// missing binaries, so nothing on the host is started.
type TestWorkspace struct {
	Root    string
	Dir     string // working directory for CLI runs
	MathHub string
	Config  string

	t      *testing.T
	noHub  bool
	extra  []string
	files  map[string]string
	engine map[string]string
}

// NewTestWorkspace creates a new test workspace builder.
// Call Build() to create the directories.
func NewTestWorkspace(t *testing.T) *TestWorkspace {
	t.Helper()
	return &TestWorkspace{
		t:      t,
		files:  make(map[string]string),
		engine: make(map[string]string),
	}
}

// WithoutMathHub leaves mathhub unset, so MMT commands fail to find it.
func (w *TestWorkspace) WithoutMathHub() *TestWorkspace {
	w.noHub = true
	return w
}

// WithFile adds a file relative to the working directory.
func (w *TestWorkspace) WithFile(path, content string) *TestWorkspace {
	w.files[path] = content
	return w
}

// WithScript installs an executable shell script and points the config
// key (gf_path, elpi_path, ...) at it.
func (w *TestWorkspace) WithScript(key, body string) *TestWorkspace {
	w.engine[key] = body
	return w
}

// WithConfig appends raw TOML lines to config.toml.
func (w *TestWorkspace) WithConfig(lines ...string) *TestWorkspace {
	w.extra = append(w.extra, lines...)
	return w
}

// Build creates the workspace on disk.
func (w *TestWorkspace) Build() *TestWorkspace {
	w.t.Helper()

	w.Root = w.t.TempDir()
	w.Dir = filepath.Join(w.Root, "work")
	w.Config = filepath.Join(w.Root, "config", "config.toml")
	w.mkdir(w.Dir)

	missing := filepath.Join(w.Root, "missing")
	cfg := []string{
		"gf_path = " + quote(filepath.Join(missing, "gf")),
		"elpi_path = " + quote(filepath.Join(missing, "elpi")),
		"java_path = " + quote(filepath.Join(missing, "java")),
		"mmt_jar = " + quote(filepath.Join(missing, "mmt.jar")),
		`startup_timeout = "5s"`,
	}
	if !w.noHub {
		w.MathHub = filepath.Join(w.Root, "MathHub")
		w.mkdir(w.MathHub)
		cfg = append(cfg, "mathhub = "+quote(w.MathHub))
	}
	for key, body := range w.engine {
		path := filepath.Join(w.Root, "bin", key)
		w.write(path, "#!/bin/sh\n"+body, 0o755)
		cfg = replaceKey(cfg, key, key+" = "+quote(path))
	}
	cfg = append(cfg, w.extra...)
	w.write(w.Config, strings.Join(cfg, "\n")+"\n", 0o644)

	for path, content := range w.files {
		w.write(filepath.Join(w.Dir, path), content, 0o644)
	}
	return w
}

// ReadFile reads a file relative to the working directory.
func (w *TestWorkspace) ReadFile(relPath string) string {
	w.t.Helper()
	data, err := os.ReadFile(w.path(relPath))
	if err != nil {
		w.t.Fatalf("failed to read %s: %v", relPath, err)
	}
	return string(data)
}

// FileExists reports whether a file exists. Absolute paths are used as is.
func (w *TestWorkspace) FileExists(relPath string) bool {
	_, err := os.Stat(w.path(relPath))
	return err == nil
}

func (w *TestWorkspace) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(w.Dir, p)
}

func (w *TestWorkspace) mkdir(path string) {
	w.t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		w.t.Fatalf("failed to create %s: %v", path, err)
	}
}

func (w *TestWorkspace) write(path, content string, perm os.FileMode) {
	w.t.Helper()
	w.mkdir(filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		w.t.Fatalf("failed to write %s: %v", path, err)
	}
}

func replaceKey(lines []string, key, line string) []string {
	for i, l := range lines {
		if strings.HasPrefix(l, key+" = ") {
			lines[i] = line
			return lines
		}
	}
	return append(lines, line)
}

// quote renders a TOML literal string; test paths never contain quotes.
func quote(s string) string {
	return "'" + s + "'"
}
