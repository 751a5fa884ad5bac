// Package builtin defines the command types GLIF ships with: the GF shell
// commands and the GLIF commands that drive MMT and ELPI.
package builtin

import (
	"context"

	"github.com/jfschaefer/GLIFcore/internal/engine/elpi"
	"github.com/jfschaefer/GLIFcore/internal/engine/mmt"
)

// DefaultArchive is created in MathHub and selected when a session starts.
const DefaultArchive = "tmpGLIF/default"

// GFShell is the grammar shell as the commands see it.
type GFShell interface {
	HandleCommand(ctx context.Context, text string) (string, error)
}

// MMT is the knowledge server as the commands see it. *mmt.Client implements it.
type MMT interface {
	Build(ctx context.Context, archive, subdir, file string) error
	Construct(ctx context.Context, asts []string, archive, subdir, view string, opts mmt.ConstructOptions) (*mmt.ConstructResult, error)
	GenerateELPI(ctx context.Context, mode, archive, subdir, theory string, opts mmt.ELPIOptions) (string, error)
	Populate(ctx context.Context, terms []string, archive, subdir, meta, name, mode string) (string, error)
}

// ELPI is the logic interpreter as the commands see it. *elpi.Runner implements it.
type ELPI interface {
	Path() string
	Run(ctx context.Context, q elpi.Query) (stdout, stderr string, err error)
	Typecheck(ctx context.Context, dir, file string) error
	Version(ctx context.Context) (string, error)
}

// EngineStatus describes one engine for the status command.
type EngineStatus struct {
	Running bool
	Detail  string // e.g. "on port 8080"
	Failure string // why the last start failed
	Logs    []string
	Tail    []string
}

// Env is the session state commands run against. Engine getters start the
// engine on first use; a failed start keeps failing until the session
// clears it.
type Env interface {
	GF(ctx context.Context) (GFShell, error)
	MMT(ctx context.Context) (MMT, error)
	ELPI() (ELPI, error)

	// ArchiveSubdir returns the selected MathHub archive and subdirectory.
	ArchiveSubdir() (archive, subdir string, err error)
	// SetArchive selects an archive, creating it and the subdirectory if
	// create is set. logs describes what was created or reset.
	SetArchive(archive, subdir string, create bool) (logs string, err error)
	// Cwd is the directory files are imported from and generated into.
	Cwd() string

	DefaultView() string
	DefaultELPI() string
	SetDefaultELPI(path string)
	// TypecheckImports reports whether imported ELPI files are typechecked.
	TypecheckImports() bool

	GFStatus(ctx context.Context, load bool) EngineStatus
	MMTStatus(ctx context.Context, load bool) EngineStatus
	// LocateLogs explains how mmt.jar and MathHub were found.
	LocateLogs() []string
}
