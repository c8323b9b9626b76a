package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/toolgate/toolgate/internal/config"
	"github.com/toolgate/toolgate/internal/hooks"
)

var (
	configFile string
	debugMode  bool
	hooksPaths []string

	// Loaded during PersistentPreRunE; subcommands read these instead of
	// reloading.
	loadedConfig *config.Config
	loadedHooks  *hooks.Config
)

var rootCmd = &cobra.Command{
	Use:   "toolgate",
	Short: "Mediate tool calls through policy hooks",
	Long: `Toolgate sits between a model and its tools. Every tool call is
checked against user-configured policy hooks before it runs; blocked calls
are turned into tool results the model can read, and every call is audited.

Hooks are shell commands that receive the call as JSON on stdin and answer
with an exit code or a JSON decision:

  exit 0             allow (or print {"decision": "deny", "reason": "..."})
  exit 2             deny, stderr becomes the reason
  any other status   hook failure, handled per its on_failure policy

Examples:
  # Show the hook rules that would apply
  toolgate hooks list

  # Validate the hooks configuration
  toolgate hooks validate

  # Dry-run a tool call through the gate
  toolgate hooks check shell '{"command": "rm -rf /"}'`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if debugMode || viper.GetBool("debug") {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		loadedConfig = cfg

		paths := append(append([]string{}, cfg.HooksPaths...), hooksPaths...)
		hookCfg, err := hooks.LoadConfig(paths...)
		if err != nil {
			return fmt.Errorf("loading hooks config: %w", err)
		}
		loadedHooks = hookCfg
		return nil
	},
}

// GetRootCommand returns the root command with the version set
func GetRootCommand(v string) *cobra.Command {
	rootCmd.Version = v
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.toolgate.yml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringSliceVar(&hooksPaths, "hooks", nil, "additional hooks config files")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(hooksCmd)
}
