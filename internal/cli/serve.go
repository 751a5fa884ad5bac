package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jfschaefer/GLIFcore/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run GLIF as an MCP server",
	Long: `Run GLIF as an MCP (Model Context Protocol) server over stdin/stdout.

Agents get two tools: glif_execute runs a command line or a cell, glif_help
describes the commands. The resource glif://guide explains the workflow.
Engines are shared by all calls and stay up until the client disconnects.

For use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "glif": {
        "command": "glif",
        "args": ["serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := openWorkspace()
		if err != nil {
			return err
		}
		defer closeWorkspace(w)

		// stdout carries the protocol; logs go to stderr only.
		server := mcp.NewServer(w.session, currentVersionInfo().Version)
		if err := server.Run(cmd.Context()); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
