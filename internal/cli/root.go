// Package cli implements the command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jfschaefer/GLIFcore/internal/config"
	"github.com/jfschaefer/GLIFcore/internal/ui"
)

var (
	// Global flags
	configPath    string
	statePathFlag string
	verbose       bool

	// Resolved values
	resolvedConfigPath string
	resolvedStatePath  string
	cfg                *config.Config
)

// errReported marks a failure that was already shown to the user.
var errReported = errors.New("command failed")

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "glif",
	Short: "GLIF - Grammatical Logical Inference Framework",
	Long: `GLIF connects GF (grammars), MMT (logics and semantics construction)
and ELPI (inference) into one command pipeline.

Command lines are piped with |; the items one stage produces feed the next:

  glif exec 'parse -cat=S "every dog barks" | construct | filter -p=consistent'`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "version", "completion":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}

		var err error
		cfg, resolvedConfigPath, err = loadGlobalConfigWithPath()
		if err != nil {
			return handleError(ErrConfigInvalid, fmt.Errorf("failed to load config: %w", err), "Check "+config.ResolveConfigPath(configPath))
		}
		if wd, err := os.Getwd(); err == nil {
			if err := config.LoadDotEnv(wd); err != nil && !isJSONOutput() {
				fmt.Fprintln(os.Stderr, ui.Warning(err.Error()))
			}
		}
		resolvedStatePath = config.ResolveStatePath(statePathFlag, resolvedConfigPath, cfg)
		ui.ConfigureTheme(cfg.UI.Accent)
		ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(os.Stderr, ui.Error(err.Error()))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&statePathFlag, "state", "", "Path to state file (overrides state_file in config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (same as --format=json)")
	rootCmd.PersistentFlags().Var(&outputFormat, "format", "Output format: text, html or json")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log engine traffic to stderr")
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	if cfg == nil {
		return &config.Config{}
	}
	return cfg
}

func loadGlobalConfigWithPath() (*config.Config, string, error) {
	resolvedPath := config.ResolveConfigPath(configPath)

	var loadedCfg *config.Config
	var err error
	if strings.TrimSpace(configPath) != "" {
		loadedCfg, err = config.LoadFrom(configPath)
	} else {
		loadedCfg, err = config.Load()
	}
	if err != nil {
		return nil, "", err
	}
	if loadedCfg == nil {
		loadedCfg = &config.Config{}
	}
	return loadedCfg, resolvedPath, nil
}
