package session

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/jfschaefer/GLIFcore/internal/atomicfile"
	"github.com/jfschaefer/GLIFcore/internal/cmdline"
	"github.com/jfschaefer/GLIFcore/internal/dispatch"
)

const elpiUtilStub = "\n\nnamespace glifutil { type success (list string) -> prop. success _. }\n"

// ExecuteCell runs a notebook cell. A cell that declares a source file is
// written to the working directory and imported; any other cell is a
// sequence of command lines.
func (s *Session) ExecuteCell(ctx context.Context, text string) []dispatch.Result {
	s.run.Lock()
	defer s.run.Unlock()

	cell, ok, err := dispatch.IdentifyFile(text)
	if err != nil {
		return []dispatch.Result{{Log: err.Error()}}
	}
	if ok {
		return []dispatch.Result{s.importCell(ctx, cell)}
	}
	lines := dispatch.SplitCell(text)
	if len(lines) == 0 {
		return []dispatch.Result{{Log: "no command given"}}
	}
	results := make([]dispatch.Result, 0, len(lines))
	for _, line := range lines {
		results = append(results, s.execute(ctx, line))
	}
	return results
}

func (s *Session) importCell(ctx context.Context, cell dispatch.FileCell) dispatch.Result {
	ext := cell.Kind.Extension()
	archive, subdir, archiveErr := s.ArchiveSubdir()
	if ext == "mmt" && archiveErr != nil {
		return dispatch.Result{Log: archiveErr.Error()}
	}

	var b strings.Builder
	switch cell.Kind {
	case dispatch.FileMMTTheory, dispatch.FileMMTView:
		b.WriteString("namespace http://mathhub.info/" + archive)
		if subdir != "" {
			b.WriteString("/" + subdir)
		}
		b.WriteString(" ❚")
	case dispatch.FileELPI, dispatch.FileELPINoTypecheck:
		b.WriteString("accumulate glif. ")
	}
	b.WriteString(cell.Content)
	if ext == "elpi" {
		b.WriteString(elpiUtilStub)
	}

	file := cell.Name + "." + ext
	if err := atomicfile.WriteString(filepath.Join(s.Cwd(), file), b.String()); err != nil {
		return dispatch.Result{Log: err.Error()}
	}

	s.setTypecheckImports(cell.Kind == dispatch.FileELPI)
	res := s.execute(ctx, "import "+cmdline.QuoteString(file))
	s.setTypecheckImports(false)

	if res.OK && cell.Kind == dispatch.FileMMTView && len(res.Items.AllErrors()) == 0 && s.DefaultView() != cell.Name {
		if res.Log != "" {
			res.Log += "\n"
		}
		res.Log += `"` + cell.Name + `" is the new default view`
		s.SetDefaultView(cell.Name)
	}
	return res
}
