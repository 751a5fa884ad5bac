package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/jfschaefer/GLIFcore/internal/cmdline"
	"github.com/jfschaefer/GLIFcore/internal/items"
)

// Result is the outcome of one command line. On failure Items is nil and
// Log holds the reason; on success Log holds accumulated warnings.
type Result struct {
	OK    bool
	Items *items.Items
	Log   string
}

func failure(format string, args ...any) Result {
	return Result{OK: false, Log: fmt.Sprintf(format, args...)}
}

// Dispatcher runs command lines against a registry.
type Dispatcher struct {
	reg *Registry
}

// New creates a dispatcher over reg.
func New(reg *Registry) *Dispatcher {
	return &Dispatcher{reg: reg}
}

// Registry returns the registry the dispatcher resolves names in.
func (d *Dispatcher) Registry() *Registry {
	return d.reg
}

// Run executes one command line, which may be a pipeline. A parse or
// validation error in any stage aborts the whole line before later stages run.
func (d *Dispatcher) Run(ctx context.Context, line string) Result {
	var batch *items.Items
	rest := strings.TrimSpace(line)
	for rest != "" {
		if err := ctx.Err(); err != nil {
			return failure("%v", err)
		}
		name, _ := cmdline.Name(rest)
		typ, ok := d.reg.Lookup(name)
		if !ok {
			return failure("unknown command %q", name)
		}
		cmd, next, err := typ.Parse(rest)
		if err != nil {
			return failure("%v", err)
		}
		if batch == nil {
			batch = cmd.Execute(ctx)
		} else {
			batch = cmd.Apply(ctx, batch)
		}
		if batch == nil {
			batch = items.Empty()
		}
		rest = strings.TrimSpace(next)
	}
	if batch == nil {
		return failure("no command given")
	}
	return Result{OK: true, Items: batch, Log: strings.Join(batch.AllErrors(), "\n")}
}

// RunCell splits text into logical lines and runs each in order.
func (d *Dispatcher) RunCell(ctx context.Context, text string) []Result {
	lines := SplitCell(text)
	if len(lines) == 0 {
		return []Result{failure("no command given")}
	}
	results := make([]Result, 0, len(lines))
	for _, l := range lines {
		results = append(results, d.Run(ctx, l))
	}
	return results
}

// SplitCell splits a multi-line block into logical command lines. A line
// continues the previous one if that ended with "|" or the line starts with
// a quote. Blank lines and lines starting with "--", "//" or "#" are skipped.
func SplitCell(text string) []string {
	var out []string
	current := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, `"`) || strings.HasSuffix(current, "|") {
			current += "\n" + line
			continue
		}
		if line == "" || isComment(line) {
			continue
		}
		if strings.TrimSpace(current) != "" {
			out = append(out, current)
		}
		current = line
	}
	if strings.TrimSpace(current) != "" {
		out = append(out, current)
	}
	return out
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "--") || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#")
}
