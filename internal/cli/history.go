package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jfschaefer/GLIFcore/internal/history"
	"github.com/jfschaefer/GLIFcore/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently executed command lines",
	Long: `Show the command lines run through exec, run, repl and serve, newest first.

Examples:
  glif history
  glif history --limit 50 --grep construct
  glif history --clear`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(historyPath())
		if err != nil {
			return handleError(ErrHistoryError, err, "")
		}
		defer store.Close()

		if historyClear {
			n, err := store.Clear(cmd.Context())
			if err != nil {
				return handleError(ErrHistoryError, err, "")
			}
			if isJSONOutput() {
				outputSuccess(map[string]int64{"removed": n}, nil)
				return nil
			}
			fmt.Println(ui.Success(fmt.Sprintf("Cleared history %s", ui.Count(int(n), "entry", "entries"))))
			return nil
		}

		entries, err := store.Recent(cmd.Context(), historyLimit, historyGrep)
		if err != nil {
			return handleError(ErrHistoryError, err, "")
		}
		if isJSONOutput() {
			if entries == nil {
				entries = []history.Entry{}
			}
			outputSuccess(entries, &Meta{Count: len(entries)})
			return nil
		}
		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, ui.Hint("No history yet."))
			return nil
		}
		width := 0
		if display := ui.NewDisplayContext(); display.IsTTY {
			width = display.TermWidth
		}
		fmt.Println(historyTable(entries, width))
		return nil
	},
}

var (
	historyLimit int
	historyGrep  string
	historyClear bool
)

func historyTable(entries []history.Entry, width int) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := ui.SymbolSuccess
		if !e.OK {
			status = ui.SymbolError
		}
		rows = append(rows, []string{
			e.Time.Local().Format("2006-01-02 15:04:05"),
			status,
			strconv.Itoa(e.Items),
			strings.ReplaceAll(e.Line, "\n", " "),
		})
	}
	return ui.Table([]string{"TIME", "", "ITEMS", "LINE"}, rows, width)
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show")
	historyCmd.Flags().StringVar(&historyGrep, "grep", "", "Only show lines containing this text")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete all history entries")
	rootCmd.AddCommand(historyCmd)
}
