package cli

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfschaefer/GLIFcore/internal/dispatch"
	"github.com/jfschaefer/GLIFcore/internal/items"
)

var execCmd = &cobra.Command{
	Use:   "exec <command line>",
	Short: "Run one GLIF command line",
	Long: `Run one GLIF command line, or a whole cell with --cell.

Flags placed after the command line belong to GLIF, not to glif exec, so
quoting is only needed for the shell:

  glif exec parse -cat=S '"every dog barks"' '|' construct
  glif exec 'parse -cat=S "every dog barks" | construct'

Without arguments the cell is read from stdin:

  glif exec --cell < grammar.gf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		repr, err := parseReprFlag(execRepr)
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}

		text := strings.Join(args, " ")
		cell := execCell
		if len(args) == 0 {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return handleError(ErrFileReadError, err, "")
			}
			text, cell = string(data), true
		}
		if strings.TrimSpace(text) == "" {
			return handleErrorMsg(ErrMissingArgument, "no command given", "Run 'glif help' to list the commands")
		}

		w, err := openWorkspace()
		if err != nil {
			return err
		}
		defer closeWorkspace(w)

		start := time.Now()
		var results []dispatch.Result
		if cell {
			results = w.session.ExecuteCell(cmd.Context(), text)
		} else {
			results = []dispatch.Result{w.session.Execute(cmd.Context(), text)}
		}
		return reportResults(results, repr, time.Since(start))
	},
}

var (
	execRepr string
	execCell bool
)

// reportResults prints results in the selected format and fails the
// process if one of them failed.
func reportResults(results []dispatch.Result, repr items.Repr, elapsed time.Duration) error {
	if isJSONOutput() {
		resp := Response{
			OK:       !anyFailed(results),
			Data:     exportAll(results),
			Warnings: itemWarnings(allItemErrors(results)),
			Meta:     &Meta{Count: len(results), ElapsedMs: elapsed.Milliseconds()},
		}
		if len(results) == 1 && !results[0].OK {
			resp.Error = &ErrorInfo{Code: ErrCommandFailed, Message: results[0].Log}
		}
		outputJSON(resp)
	} else {
		for _, res := range results {
			printResult(os.Stdout, res, repr)
		}
	}
	if anyFailed(results) {
		return errReported
	}
	return nil
}

func init() {
	execCmd.Flags().SetInterspersed(false)
	execCmd.Flags().StringVar(&execRepr, "repr", "default", "Representation to print (sentence-current, ast, logic-standard, logic-elpi, ...)")
	execCmd.Flags().BoolVar(&execCell, "cell", false, "Treat the input as a cell: several lines, or a source file to write and import")
	rootCmd.AddCommand(execCmd)
}
