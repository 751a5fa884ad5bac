package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jfschaefer/GLIFcore/internal/cmdline"
	"github.com/jfschaefer/GLIFcore/internal/dispatch"
	"github.com/jfschaefer/GLIFcore/internal/items"
	"github.com/jfschaefer/GLIFcore/internal/ui"
)

var helpCmd = &cobra.Command{
	Use:   "help [command]",
	Short: "Describe GLIF commands (or glif subcommands)",
	Long: `Without arguments, list the GLIF pipeline commands. With a name, describe
that command: its flags and example calls. Names of glif subcommands
(exec, run, repl, ...) show the subcommand's usage instead.

Grammar shell commands (parse, linearize, ...) are described by GF itself,
so GF is started to answer them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			if sub, _, err := rootCmd.Find(args); err == nil && sub != rootCmd && sub != cmd {
				return sub.Help()
			}
		}

		w, err := openWorkspace()
		if err != nil {
			return err
		}
		defer closeWorkspace(w)

		line := "help"
		for _, a := range args {
			line += " " + cmdline.FormatArgValue(a)
		}
		res := w.session.Execute(cmd.Context(), line)
		if isJSONOutput() {
			return reportResults([]dispatch.Result{res}, items.ReprDefault, 0)
		}
		if !res.OK {
			return handleErrorMsg(ErrCommandFailed, res.Log, "")
		}

		display := ui.NewDisplayContext()
		for i, text := range res.Items.Values() {
			if i > 0 {
				fmt.Println()
			}
			fmt.Print(renderHelp(text, display))
		}
		for _, e := range res.Items.AllErrors() {
			fmt.Fprintln(os.Stderr, ui.Warning(e))
		}
		if len(res.Items.AllErrors()) > 0 {
			return errReported
		}
		return nil
	},
}

// renderHelp shows text as a code block on terminals. Help text is laid
// out with spaces, so it must not be reflowed.
func renderHelp(text string, display *ui.DisplayContext) string {
	if !display.IsTTY {
		return strings.TrimRight(text, "\n") + "\n"
	}
	rendered, err := ui.RenderMarkdown("```text\n"+text+"\n```", display.TermWidth)
	if err != nil {
		return strings.TrimRight(text, "\n") + "\n"
	}
	return rendered
}

func init() {
	rootCmd.SetHelpCommand(helpCmd)
}
