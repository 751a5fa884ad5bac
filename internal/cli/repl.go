package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jfschaefer/GLIFcore/internal/dispatch"
	"github.com/jfschaefer/GLIFcore/internal/items"
	"github.com/jfschaefer/GLIFcore/internal/ui"
)

const (
	cellOpen  = ":{"
	cellClose = ":}"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Read and run command lines interactively",
	Long: `Start an interactive GLIF session. Engines stay up between lines, so
grammars and theories imported once remain available.

Enter one command line per prompt. A cell spanning several lines (a
grammar, a theory, an ELPI program) goes between :{ and :} lines:

  glif> :{
  ....> abstract Grammar = {
  ....>   cat S; fun s : S;
  ....> }
  ....> :}

Type exit or press Ctrl-D to leave. When stdin is not a terminal the lines
are read without prompts, so "glif repl < script.txt" runs a script.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repr, err := parseReprFlag(replRepr)
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		w, err := openWorkspace()
		if err != nil {
			return err
		}
		defer closeWorkspace(w)

		r := &repl{
			exec:        w.session,
			in:          cmd.InOrStdin(),
			out:         cmd.OutOrStdout(),
			interactive: ui.Interactive(os.Stdin),
			repr:        repr,
		}
		failed, err := r.run(cmd.Context())
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		// Only scripts fail the process.
		if failed && !r.interactive {
			return errReported
		}
		return nil
	},
}

var replRepr string

type executor interface {
	Execute(ctx context.Context, line string) dispatch.Result
	ExecuteCell(ctx context.Context, text string) []dispatch.Result
}

type repl struct {
	exec        executor
	in          io.Reader
	out         io.Writer
	interactive bool
	repr        items.Repr
}

// run reads until EOF or "exit". It reports whether any command failed.
func (r *repl) run(ctx context.Context) (bool, error) {
	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		failed bool
		cell   []string
		inCell bool
	)
	r.prompt(false)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return failed, nil
		}
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case inCell && trimmed == cellClose:
			inCell = false
			failed = r.report(r.exec.ExecuteCell(ctx, strings.Join(cell, "\n"))) || failed
			cell = nil
		case inCell:
			cell = append(cell, line)
		case trimmed == cellOpen:
			inCell = true
		case trimmed == "exit" || trimmed == "quit":
			return failed, nil
		case trimmed == "":
		default:
			failed = r.report([]dispatch.Result{r.exec.Execute(ctx, trimmed)}) || failed
		}
		r.prompt(inCell)
	}
	if err := scanner.Err(); err != nil {
		return failed, fmt.Errorf("read input: %w", err)
	}
	if inCell && len(cell) > 0 {
		failed = r.report(r.exec.ExecuteCell(ctx, strings.Join(cell, "\n"))) || failed
	}
	if r.interactive {
		fmt.Fprintln(r.out)
	}
	return failed, nil
}

func (r *repl) prompt(continuation bool) {
	if !r.interactive {
		return
	}
	if continuation {
		fmt.Fprint(r.out, ui.Muted.Render("....> "))
		return
	}
	fmt.Fprint(r.out, ui.AccentBold.Render("glif> "))
}

func (r *repl) report(results []dispatch.Result) bool {
	if isJSONOutput() {
		for _, res := range results {
			outputJSON(Response{OK: res.OK, Data: res.Export(), Warnings: itemWarnings(allItemErrors([]dispatch.Result{res}))})
		}
		return anyFailed(results)
	}
	for _, res := range results {
		printResult(r.out, res, r.repr)
	}
	return anyFailed(results)
}

func init() {
	replCmd.Flags().StringVar(&replRepr, "repr", "default", "Representation to print")
	rootCmd.AddCommand(replCmd)
}
