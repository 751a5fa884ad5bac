package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfschaefer/GLIFcore/internal/atomicfile"
	"github.com/jfschaefer/GLIFcore/internal/dispatch"
	"github.com/jfschaefer/GLIFcore/internal/notebook"
	"github.com/jfschaefer/GLIFcore/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run a cell file or a markdown notebook",
	Long: `Run a file through GLIF.

A markdown file (.md, .markdown) is treated as a notebook: every fenced
code block tagged glif is run as one cell, in order. Any other file is run
as a single cell.

  glif run lecture.md
  glif run lecture.md --out build/   # write each cell's output to build/NN-<name>.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repr, err := parseReprFlag(runRepr)
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return handleErrorMsg(ErrFileNotFound, fmt.Sprintf("file not found: %s", path), "")
			}
			return handleError(ErrFileReadError, err, "")
		}

		cells := []notebook.Cell{{Line: 1, Source: string(data), Title: filepath.Base(path)}}
		if isMarkdown(path) {
			cells = notebook.Extract(string(data))
		}
		if len(cells) == 0 {
			if isJSONOutput() {
				outputJSON(Response{OK: true, Data: []cellOutput{}, Warnings: []Warning{{Code: WarnNoCells, Message: "no glif cells found"}}})
				return nil
			}
			fmt.Fprintln(os.Stderr, ui.Warning(fmt.Sprintf("no ```%s cells found in %s", notebook.Language, path)))
			return nil
		}

		w, err := openWorkspace()
		if err != nil {
			return err
		}
		defer closeWorkspace(w)

		start := time.Now()
		var (
			outputs []cellOutput
			failed  bool
			errs    []string
		)
		for _, c := range cells {
			if cmd.Context().Err() != nil {
				break
			}
			results := w.session.ExecuteCell(cmd.Context(), c.Source)
			failed = failed || anyFailed(results)
			errs = append(errs, allItemErrors(results)...)

			if runOut != "" {
				if err := atomicfile.WriteString(c.OutputPath(runOut), plainText(results, repr)); err != nil {
					return handleError(ErrFileWriteError, err, "")
				}
			}
			if isJSONOutput() {
				outputs = append(outputs, cellOutput{Index: c.Index, Line: c.Line, Title: cellLabel(c), Results: exportAll(results)})
				continue
			}
			if len(cells) > 1 {
				fmt.Println(ui.Header(fmt.Sprintf("[%d] %s", c.Index+1, cellLabel(c))) + ui.Muted.Render(fmt.Sprintf("  line %d", c.Line)))
			}
			for _, res := range results {
				printResult(os.Stdout, res, repr)
			}
		}

		if isJSONOutput() {
			outputJSON(Response{
				OK:       !failed,
				Data:     outputs,
				Warnings: itemWarnings(errs),
				Meta:     &Meta{Count: len(outputs), ElapsedMs: time.Since(start).Milliseconds()},
			})
		} else if runOut != "" {
			fmt.Fprintln(os.Stderr, ui.Success(fmt.Sprintf("Wrote outputs to %s %s", runOut, ui.Count(len(cells), "cell", "cells"))))
		}
		if failed {
			return errReported
		}
		return nil
	},
}

var (
	runRepr string
	runOut  string
)

type cellOutput struct {
	Index   int                       `json:"index"`
	Line    int                       `json:"line"`
	Title   string                    `json:"title,omitempty"`
	Results []dispatch.ExportedResult `json:"results"`
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func cellLabel(c notebook.Cell) string {
	switch {
	case c.Title != "":
		return c.Title
	case c.Heading != "":
		return c.Heading
	}
	first, _, _ := strings.Cut(strings.TrimSpace(c.Source), "\n")
	return first
}

func init() {
	runCmd.Flags().StringVar(&runRepr, "repr", "default", "Representation to print")
	runCmd.Flags().StringVar(&runOut, "out", "", "Directory to write each cell's output to")
	rootCmd.AddCommand(runCmd)
}
