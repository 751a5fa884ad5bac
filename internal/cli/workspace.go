package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jfschaefer/GLIFcore/internal/builtin"
	"github.com/jfschaefer/GLIFcore/internal/config"
	"github.com/jfschaefer/GLIFcore/internal/history"
	"github.com/jfschaefer/GLIFcore/internal/session"
	"github.com/jfschaefer/GLIFcore/internal/ui"
)

// workspace bundles a session with the history store it records into.
type workspace struct {
	session   *session.Session
	history   *history.Store
	statePath string
	state     config.State
}

func newLogger() *log.Logger {
	if verbose || getConfig().Debug {
		return log.New(os.Stderr, "glif: ", log.Ltime|log.Lmicroseconds)
	}
	return log.New(io.Discard, "", 0)
}

func historyPath() string {
	return config.ResolveHistoryPath("", resolvedConfigPath, getConfig())
}

// openWorkspace starts a session from config and state. A history database
// that cannot be opened only costs the history.
func openWorkspace() (*workspace, error) {
	c := getConfig()
	timeout, err := c.Timeout()
	if err != nil {
		return nil, handleError(ErrConfigInvalid, err, "")
	}
	state, err := config.LoadState(resolvedStatePath)
	if err != nil {
		return nil, handleError(ErrStateInvalid, err, "Delete "+resolvedStatePath+" to start over")
	}

	logger := newLogger()
	w := &workspace{statePath: resolvedStatePath, state: *state}
	opts := session.Options{
		GFPath:         c.GFPath,
		ELPIPath:       c.ELPIPath,
		ELPIInclude:    c.ELPIInclude,
		Java:           c.JavaPath,
		MMTJar:         c.MMTJar,
		MathHub:        c.MathHub,
		DefaultArchive: c.DefaultArchive,
		Archive:        state.Archive,
		Subdir:         state.Subdir,
		StartupTimeout: timeout,
		Logger:         logger,
	}
	if store, err := history.Open(historyPath()); err != nil {
		logger.Printf("history disabled: %v", err)
	} else {
		w.history = store
		opts.Recorder = store
	}

	w.session, err = session.New(opts)
	if err != nil {
		if w.history != nil {
			w.history.Close()
		}
		return nil, handleError(ErrSessionFailed, err, "")
	}
	return w, nil
}

// Close remembers an archive switch and shuts the engines down. A session
// that stayed on the restored (or default) archive leaves state.toml alone.
func (w *workspace) Close() error {
	var errs []error
	archive, subdir := w.session.Archive()
	if archive != "" && (archive != w.state.Archive || subdir != w.state.Subdir) && !w.isDefault(archive, subdir) {
		if err := config.SaveState(w.statePath, &config.State{Archive: archive, Subdir: subdir}); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, w.session.Close())
	if w.history != nil {
		errs = append(errs, w.history.Close())
	}
	return errors.Join(errs...)
}

// isDefault reports whether a fresh session would select archive/subdir
// without any state.
func (w *workspace) isDefault(archive, subdir string) bool {
	return w.state.Archive == "" && subdir == "" && archive == w.defaultArchive()
}

func (w *workspace) defaultArchive() string {
	if a := getConfig().DefaultArchive; a != "" {
		return a
	}
	return builtin.DefaultArchive
}

// closeWorkspace closes w, reporting failures as warnings.
func closeWorkspace(w *workspace) {
	if err := w.Close(); err != nil && !isJSONOutput() {
		fmt.Fprintln(os.Stderr, ui.Warning(fmt.Sprintf("shutdown: %v", err)))
	}
}
