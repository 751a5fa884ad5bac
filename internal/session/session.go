// Package session owns the engines a GLIF workspace talks to and runs
// command lines and cells against them.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jfschaefer/GLIFcore/internal/builtin"
	"github.com/jfschaefer/GLIFcore/internal/dispatch"
	"github.com/jfschaefer/GLIFcore/internal/engine/elpi"
	"github.com/jfschaefer/GLIFcore/internal/engine/gfshell"
	"github.com/jfschaefer/GLIFcore/internal/engine/mmt"
)

// ErrNoArchive is returned when no MathHub archive is selected.
var ErrNoArchive = errors.New("no MMT archive selected")

// Options configures a session. Empty fields fall back to discovery from
// the environment.
type Options struct {
	GFPath         string
	ELPIPath       string
	ELPIInclude    string // directory holding the glif ELPI module
	Java           string
	MMTJar         string
	MathHub        string
	DefaultArchive string
	// Archive and Subdir restore a previously selected archive.
	Archive        string
	Subdir         string
	StartupTimeout time.Duration
	// Dir is the working directory when no MathHub is available.
	Dir    string
	Logger *log.Logger
	// Recorder, if set, is told about every command line that ran.
	Recorder Recorder

	Getenv func(string) string
	Home   string
}

// Recorder stores executed command lines.
type Recorder interface {
	Record(ctx context.Context, line string, res dispatch.Result) error
}

// Session is one interactive workspace. Its methods are safe for
// concurrent use; command lines run one at a time.
type Session struct {
	opts   Options
	logger *log.Logger

	run sync.Mutex
	mu  sync.Mutex

	jar        string
	mathhub    *mmt.MathHub
	locateLogs []string

	gf    *gfshell.Shell
	gfErr error

	mmtServer *mmt.Server
	mmtClient *mmt.Client
	mmtErr    error

	elpi *elpi.Runner

	archive string
	subdir  string
	cwd     string

	defaultView      string
	defaultELPI      string
	typecheckImports bool

	dispatcher *dispatch.Dispatcher
}

// New creates a session. Engines are started on first use.
func New(opts Options) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.Home == "" {
		opts.Home, _ = os.UserHomeDir()
	}
	if opts.DefaultArchive == "" {
		opts.DefaultArchive = builtin.DefaultArchive
	}
	s := &Session{opts: opts, logger: opts.Logger}
	s.locateMMT()

	if s.mathhub != nil {
		if _, err := s.SetArchive(opts.DefaultArchive, "", true); err != nil {
			s.logger.Printf("session: select default archive: %v", err)
		}
		if opts.Archive != "" {
			if _, err := s.SetArchive(opts.Archive, opts.Subdir, false); err != nil {
				s.logger.Printf("session: cannot restore archive %s: %v", opts.Archive, err)
			}
		}
	} else {
		s.cwd = opts.Dir
		if s.cwd == "" {
			wd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("working directory: %w", err)
			}
			s.cwd = wd
		}
	}

	reg, err := dispatch.NewRegistry(builtin.All(s)...)
	if err != nil {
		return nil, err
	}
	s.dispatcher = dispatch.New(reg)
	return s, nil
}

func (s *Session) locateMMT() {
	jar := mmt.Location{Path: s.opts.MMTJar, Source: "Configured"}
	if jar.Path == "" {
		var err error
		jar, err = mmt.LocateJar(s.opts.Getenv, s.opts.Home)
		if err != nil {
			s.locateLogs = append(s.locateLogs, fmt.Sprintf("Finding mmt.jar: %q", err.Error()))
			return
		}
	}
	s.locateLogs = append(s.locateLogs, fmt.Sprintf("Finding mmt.jar: %q", jar.Source), "Location: "+jar.Path)
	s.jar = jar.Path

	hub := mmt.Location{Path: s.opts.MathHub, Source: "Configured"}
	if hub.Path == "" {
		var err error
		hub, err = mmt.LocateMathHub(s.opts.Getenv, s.jar)
		if err != nil {
			s.locateLogs = append(s.locateLogs, fmt.Sprintf("Finding MathHub: %q", err.Error()))
			return
		}
	}
	s.locateLogs = append(s.locateLogs, fmt.Sprintf("Finding MathHub: %q", hub.Source), "Location: "+hub.Path)
	mh, err := mmt.OpenMathHub(hub.Path)
	if err != nil {
		s.locateLogs = append(s.locateLogs, err.Error())
		return
	}
	s.mathhub = mh
}

// Registry returns the commands the session understands.
func (s *Session) Registry() *dispatch.Registry {
	return s.dispatcher.Registry()
}

// Execute runs one command line.
func (s *Session) Execute(ctx context.Context, line string) dispatch.Result {
	s.run.Lock()
	defer s.run.Unlock()
	return s.execute(ctx, line)
}

func (s *Session) execute(ctx context.Context, line string) dispatch.Result {
	res := s.dispatcher.Run(ctx, line)
	if s.opts.Recorder != nil {
		if err := s.opts.Recorder.Record(ctx, line, res); err != nil {
			s.logger.Printf("session: record history: %v", err)
		}
	}
	return res
}

// GF returns the grammar shell, starting it if needed. A failed start is
// remembered until the archive changes; a shell that died is replaced.
func (s *Session) GF(ctx context.Context) (builtin.GFShell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gf != nil {
		if s.gf.Alive() {
			return s.gf, nil
		}
		s.logger.Printf("session: gf exited, restarting")
		if err := s.gf.Close(); err != nil {
			s.logger.Printf("session: close gf: %v", err)
		}
		s.gf = nil
	}
	if s.gfErr != nil {
		return nil, s.gfErr
	}
	path, err := gfshell.Locate(s.opts.GFPath)
	if err != nil {
		s.gfErr = err
		return nil, err
	}
	shell, err := gfshell.Start(ctx, path, s.cwd, s.logger)
	if err != nil {
		if ctx.Err() == nil {
			s.gfErr = err
		}
		return nil, err
	}
	s.gf = shell
	return shell, nil
}

// MMT returns a client for the MMT server, starting the server if needed.
// A failed start is remembered for the rest of the session.
func (s *Session) MMT(ctx context.Context) (builtin.MMT, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mmtClient != nil {
		return s.mmtClient, nil
	}
	if s.mmtErr != nil {
		return nil, s.mmtErr
	}
	if s.jar == "" || s.mathhub == nil {
		s.mmtErr = errors.New(strings.Join(s.locateLogs, "\n"))
		return nil, s.mmtErr
	}
	server, err := mmt.StartServer(ctx, mmt.ServerOptions{
		Java:           s.opts.Java,
		Jar:            s.jar,
		StartupTimeout: s.opts.StartupTimeout,
		Logger:         s.logger,
	})
	if err != nil {
		if ctx.Err() == nil {
			s.mmtErr = err
		}
		return nil, err
	}
	s.mmtServer = server
	s.mmtClient = mmt.NewClient(server.BaseURL(), nil, s.logger)
	return s.mmtClient, nil
}

// ELPI returns the interpreter runner.
func (s *Session) ELPI() (builtin.ELPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.elpi != nil {
		return s.elpi, nil
	}
	path, err := elpi.Locate(s.opts.ELPIPath)
	if err != nil {
		return nil, err
	}
	s.elpi = elpi.NewRunner(path, s.opts.ELPIInclude, s.logger)
	return s.elpi, nil
}

// ArchiveSubdir returns the selected archive and subdirectory.
func (s *Session) ArchiveSubdir() (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.archive == "" {
		return "", "", noArchiveError{logs: s.locateLogs}
	}
	return s.archive, s.subdir, nil
}

// Archive returns the selected archive and subdirectory, or empty strings.
func (s *Session) Archive() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.archive, s.subdir
}

// SetArchive switches to archive (and subdir, if not empty). The grammar
// shell is shut down so that it restarts in the new directory.
func (s *Session) SetArchive(archive, subdir string, create bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mathhub == nil {
		return "", fmt.Errorf("Error: MathHub folder not found\nLogs:\n%s", indent(strings.Join(s.locateLogs, "\n")))
	}
	var logs []string
	if !s.mathhub.HasArchive(archive) {
		if !create {
			return "", fmt.Errorf("Error: Archive %s doesn't exist", archive)
		}
		if _, err := s.mathhub.MakeArchive(archive); err != nil {
			return "", fmt.Errorf("Error: Failed to create archive %s:\n%s", archive, indent(err.Error()))
		}
		logs = append(logs, "Successfully created archive "+archive)
	}
	if subdir != "" && !s.mathhub.SubdirExists(archive, subdir) {
		if !create {
			return strings.Join(logs, "\n"), fmt.Errorf("Error: Archive %s doesn't have a directory %s", archive, subdir)
		}
		if _, err := s.mathhub.MakeSubdir(archive, subdir); err != nil {
			return strings.Join(logs, "\n"), err
		}
		logs = append(logs, fmt.Sprintf("Successfully created directory %s in archive %s", subdir, archive))
	}
	dir, err := s.mathhub.SourceDir(archive, subdir)
	if err != nil {
		return strings.Join(logs, "\n"), err
	}
	s.archive, s.subdir, s.cwd = archive, subdir, dir
	s.gfErr = nil
	if s.gf != nil {
		if err := s.gf.Close(); err != nil {
			s.logger.Printf("session: close gf: %v", err)
		}
		s.gf = nil
		logs = append(logs, "GF shell will be reloaded")
	}
	return strings.Join(logs, "\n"), nil
}

// Cwd is the directory files are read from and written to.
func (s *Session) Cwd() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cwd
}

// DefaultView is the view construct uses when none is given.
func (s *Session) DefaultView() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultView
}

// SetDefaultView changes the default semantics construction view.
func (s *Session) SetDefaultView(view string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultView = view
}

// DefaultELPI is the program ELPI commands use when none is given.
func (s *Session) DefaultELPI() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultELPI
}

// SetDefaultELPI changes the default ELPI program.
func (s *Session) SetDefaultELPI(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultELPI = path
}

// TypecheckImports reports whether ELPI imports are typechecked.
func (s *Session) TypecheckImports() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typecheckImports
}

func (s *Session) setTypecheckImports(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typecheckImports = on
}

// GFStatus reports on the grammar shell, starting it first if load is set.
func (s *Session) GFStatus(ctx context.Context, load bool) builtin.EngineStatus {
	if load {
		_, _ = s.GF(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := builtin.EngineStatus{Running: s.gf != nil && s.gf.Alive()}
	if s.gf != nil {
		st.Logs = strings.Split(s.gf.InitialOutput(), "\n")
	}
	if s.gfErr != nil {
		st.Failure = s.gfErr.Error()
	}
	return st
}

// MMTStatus reports on the MMT server, starting it first if load is set.
func (s *Session) MMTStatus(ctx context.Context, load bool) builtin.EngineStatus {
	if load {
		_, _ = s.MMT(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var st builtin.EngineStatus
	if s.mmtServer != nil {
		st.Running = true
		st.Detail = fmt.Sprintf("on port %d", s.mmtServer.Port())
		st.Logs = s.mmtServer.StartLog()
		st.Tail = s.mmtServer.TailLog()
	}
	if s.mmtErr != nil {
		st.Failure = s.mmtErr.Error()
		var startErr *mmt.StartError
		if errors.As(s.mmtErr, &startErr) {
			st.Failure = startErr.Reason
			st.Logs = startErr.Logs
		}
	}
	return st
}

// LocateLogs explains how mmt.jar and MathHub were found.
func (s *Session) LocateLogs() []string {
	return append([]string(nil), s.locateLogs...)
}

// Close shuts down all running engines.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	if s.gf != nil {
		errs = append(errs, s.gf.Close())
		s.gf = nil
	}
	if s.mmtServer != nil {
		errs = append(errs, s.mmtServer.Close())
		s.mmtServer, s.mmtClient = nil, nil
	}
	return errors.Join(errs...)
}

type noArchiveError struct {
	logs []string
}

func (e noArchiveError) Error() string {
	return "No MMT archive selected. This is probably due to problems during the initialization of MMT. Here are the logs:\n" +
		indent(strings.Join(e.logs, "\n"))
}

func (e noArchiveError) Unwrap() error { return ErrNoArchive }

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}
