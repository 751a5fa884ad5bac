// Package elpi runs queries against the ELPI λProlog interpreter.
package elpi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strings"
)

// ErrNotFound is returned when no elpi executable can be located.
var ErrNotFound = errors.New(`failed to locate executable "elpi"`)

// Query is one interpreter invocation.
type Query struct {
	Dir       string // Working directory
	File      string // Program file, relative to Dir or absolute
	Goal      string // Passed to -exec
	Typecheck bool
	Stdin     string
	Args      []string // Passed after "--"
}

// RunError reports a non-zero interpreter exit.
type RunError struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Call     []string
}

func (e *RunError) Error() string {
	return fmt.Sprintf("ELPI ERROR: %d\nOUTPUT:\n%s\nERROR:\n%s\nCALL:\n%s",
		e.ExitCode, e.Stdout, e.Stderr, strings.Join(e.Call, " "))
}

// Runner starts one elpi process per query.
type Runner struct {
	path    string
	include string
	logger  *log.Logger
}

// Locate resolves the elpi binary. A configured path wins over $PATH.
func Locate(configured string) (string, error) {
	name := configured
	if name == "" {
		name = "elpi"
	}
	p, err := exec.LookPath(name)
	if err != nil {
		return "", ErrNotFound
	}
	return p, nil
}

// NewRunner creates a runner for the elpi binary at path. include, if set,
// is passed with -I so programs can accumulate the glif support module.
func NewRunner(path, include string, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Runner{path: path, include: include, logger: logger}
}

// Path returns the interpreter binary.
func (r *Runner) Path() string {
	return r.path
}

func (r *Runner) args(q Query) []string {
	args := []string{q.File, "-exec", q.Goal}
	if r.include != "" {
		args = append(args, "-I", r.include)
	}
	if !q.Typecheck {
		args = append(args, "-no-tc")
	}
	if len(q.Args) > 0 {
		args = append(args, "--")
		args = append(args, q.Args...)
	}
	return args
}

// Run executes q and returns its stdout and stderr. A non-zero exit is
// reported as *RunError.
func (r *Runner) Run(ctx context.Context, q Query) (string, string, error) {
	args := r.args(q)
	cmd := exec.CommandContext(ctx, r.path, args...)
	cmd.Dir = q.Dir
	cmd.Stdin = strings.NewReader(q.Stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Printf("elpi: %s %s (dir %s)", r.path, strings.Join(args, " "), q.Dir)
	err := cmd.Run()
	if err == nil {
		return stdout.String(), stderr.String(), nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.String(), stderr.String(), &RunError{
			ExitCode: exitErr.ExitCode(),
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Call:     append([]string{r.path}, args...),
		}
	}
	return "", "", fmt.Errorf("run elpi: %w", err)
}

// Typecheck runs the trivial goal glifutil.success against file with type
// checking on. Any output counts as a failure.
func (r *Runner) Typecheck(ctx context.Context, dir, file string) error {
	stdout, stderr, err := r.Run(ctx, Query{Dir: dir, File: file, Goal: "glifutil.success", Typecheck: true})
	if err != nil {
		var runErr *RunError
		if errors.As(err, &runErr) {
			msg := "Typecheck failed:\n" + stdout
			if e := strings.TrimSpace(stderr); !strings.HasSuffix(e, "Data.State.Halt") {
				msg += "\n" + e
			}
			return errors.New(msg)
		}
		return err
	}
	if warning := strings.TrimSpace(stdout); warning != "" {
		return errors.New(warning)
	}
	return nil
}

// Version returns the output of "elpi -version".
func (r *Runner) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, r.path, "-version").Output()
	if err != nil {
		return "", fmt.Errorf(`"elpi -version" failed: %w`, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// StderrFilter selects how much interpreter chatter FilterStderr removes.
type StderrFilter int

const (
	FilterNone StderrFilter = iota
	// FilterPartial drops timing and success lines.
	FilterPartial
	// FilterFull also drops time, constraint and state dumps.
	FilterFull
)

// FilterStderr removes interpreter bookkeeping lines from stderr.
func FilterStderr(stderr string, level StderrFilter) string {
	if level == FilterNone {
		return stderr
	}
	var kept []string
	for _, line := range strings.Split(stderr, "\n") {
		if line == "" {
			continue
		}
		if hasAnyPrefix(line, "Parsing time:", "Compilation time:", "Success:", "Typechecking time:") {
			continue
		}
		if level == FilterFull && hasAnyPrefix(line, "Time:", "Constraints:", "State:") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
