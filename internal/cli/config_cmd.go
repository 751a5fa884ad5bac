package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jfschaefer/GLIFcore/internal/config"
	"github.com/jfschaefer/GLIFcore/internal/ui"
)

// configKey maps a config.toml key to its field.
type configKey struct {
	get func(*config.Config) string
	set func(*config.Config, string) error
}

func stringKey(field func(*config.Config) *string) configKey {
	return configKey{
		get: func(c *config.Config) string { return *field(c) },
		set: func(c *config.Config, v string) error { *field(c) = v; return nil },
	}
}

var configKeys = map[string]configKey{
	"gf_path":         stringKey(func(c *config.Config) *string { return &c.GFPath }),
	"elpi_path":       stringKey(func(c *config.Config) *string { return &c.ELPIPath }),
	"elpi_include":    stringKey(func(c *config.Config) *string { return &c.ELPIInclude }),
	"java_path":       stringKey(func(c *config.Config) *string { return &c.JavaPath }),
	"mmt_jar":         stringKey(func(c *config.Config) *string { return &c.MMTJar }),
	"mathhub":         stringKey(func(c *config.Config) *string { return &c.MathHub }),
	"default_archive": stringKey(func(c *config.Config) *string { return &c.DefaultArchive }),
	"state_file":      stringKey(func(c *config.Config) *string { return &c.StateFile }),
	"history_file":    stringKey(func(c *config.Config) *string { return &c.HistoryFile }),
	"ui.accent":       stringKey(func(c *config.Config) *string { return &c.UI.Accent }),
	"ui.code_theme":   stringKey(func(c *config.Config) *string { return &c.UI.CodeTheme }),
	"startup_timeout": {
		get: func(c *config.Config) string { return c.StartupTimeout },
		set: func(c *config.Config, v string) error {
			old := c.StartupTimeout
			c.StartupTimeout = v
			if _, err := c.Timeout(); err != nil {
				c.StartupTimeout = old
				return err
			}
			return nil
		},
	},
	"debug": {
		get: func(c *config.Config) string {
			if !c.Debug {
				return ""
			}
			return "true"
		},
		set: func(c *config.Config, v string) error {
			if v == "" {
				c.Debug = false
				return nil
			}
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("debug must be true or false")
			}
			c.Debug = b
			return nil
		},
	},
}

func configKeyNames() []string {
	names := make([]string, 0, len(configKeys))
	for name := range configKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func configData(c *config.Config) map[string]any {
	data := map[string]any{
		"config_path": resolvedConfigPath,
		"state_path":  resolvedStatePath,
		"history":     historyPath(),
	}
	values := make(map[string]string)
	for name, key := range configKeys {
		if v := key.get(c); v != "" {
			values[name] = v
		}
	}
	data["values"] = values
	return data
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or edit the global config.toml",
	Long: `Show or edit the global config.toml.

Every engine location is optional. Unset values are discovered from $PATH,
MMT_JAR, MMT_PATH and MATHHUB (a .env file in the working directory is
read too).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := getConfig()
		if isJSONOutput() {
			outputSuccess(configData(c), nil)
			return nil
		}
		fmt.Printf("config:  %s\n", resolvedConfigPath)
		fmt.Printf("state:   %s\n", resolvedStatePath)
		fmt.Printf("history: %s\n", historyPath())
		for _, name := range configKeyNames() {
			if v := configKeys[name].get(c); v != "" {
				fmt.Printf("%s = %s\n", name, v)
			}
		}
		if _, err := os.Stat(resolvedConfigPath); os.IsNotExist(err) {
			fmt.Println(ui.Hint("Config file does not exist. Run 'glif config init' to create it."))
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a commented config.toml if missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		created, err := config.CreateDefault(resolvedConfigPath)
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
		if isJSONOutput() {
			outputSuccess(map[string]any{"config_path": resolvedConfigPath, "created": created}, nil)
			return nil
		}
		if created {
			fmt.Println(ui.Success("Created config: " + resolvedConfigPath))
		} else {
			fmt.Printf("Config already exists: %s\n", resolvedConfigPath)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set key=value...",
	Short: "Set config.toml keys",
	Long: `Set one or more config.toml keys.

  glif config set mathhub=/data/MathHub startup_timeout=3m
  glif config set ui.accent=39

Keys: ` + strings.Join(configKeyNames(), ", "),
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := *getConfig()
		var changed []string
		for _, arg := range args {
			name, value, ok := strings.Cut(arg, "=")
			if !ok {
				return handleErrorMsg(ErrInvalidInput, fmt.Sprintf("expected key=value, got %q", arg), "")
			}
			name, value = strings.TrimSpace(name), strings.TrimSpace(value)
			key, ok := configKeys[name]
			if !ok {
				return handleErrorMsg(ErrInvalidInput, fmt.Sprintf("unknown key %q", name), "Keys: "+strings.Join(configKeyNames(), ", "))
			}
			if value == "" {
				return handleErrorMsg(ErrInvalidInput, fmt.Sprintf("%s cannot be empty; use 'glif config unset %s' to clear it", name, name), "")
			}
			if err := key.set(&c, value); err != nil {
				return handleError(ErrInvalidInput, fmt.Errorf("%s: %w", name, err), "")
			}
			changed = append(changed, name)
		}
		return saveConfig(&c, changed)
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset key...",
	Short: "Clear config.toml keys",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(resolvedConfigPath); os.IsNotExist(err) {
			return handleErrorMsg(ErrFileNotFound, fmt.Sprintf("config file not found: %s", resolvedConfigPath), "Run 'glif config init' first")
		}
		c := *getConfig()
		for _, name := range args {
			key, ok := configKeys[name]
			if !ok {
				return handleErrorMsg(ErrInvalidInput, fmt.Sprintf("unknown key %q", name), "Keys: "+strings.Join(configKeyNames(), ", "))
			}
			_ = key.set(&c, "")
		}
		return saveConfig(&c, args)
	},
}

func saveConfig(c *config.Config, changed []string) error {
	if err := config.SaveTo(resolvedConfigPath, c); err != nil {
		return handleError(ErrFileWriteError, err, "")
	}
	cfg = c
	if isJSONOutput() {
		data := configData(c)
		data["changed"] = changed
		outputSuccess(data, nil)
		return nil
	}
	fmt.Println(ui.Success("Updated config: " + resolvedConfigPath))
	fmt.Printf("changed: %s\n", strings.Join(changed, ", "))
	return nil
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	rootCmd.AddCommand(configCmd)
}
