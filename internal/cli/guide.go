package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jfschaefer/GLIFcore/docs"
	"github.com/jfschaefer/GLIFcore/internal/ui"
)

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Show the GLIF guide: engines, pipelines, cells and a typical workflow",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if isJSONOutput() {
			outputSuccess(map[string]string{"markdown": docs.Guide}, nil)
			return nil
		}
		display := ui.NewDisplayContext()
		if !display.IsTTY {
			fmt.Print(docs.Guide)
			return nil
		}
		rendered, err := ui.RenderMarkdown(docs.Guide, display.TermWidth)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		fmt.Print(rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(guideCmd)
}
