package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/toolgate/toolgate/internal/hooks"
)

var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "Manage toolgate hooks",
	Long:  "Commands for managing and testing the policy hook configuration",
}

var hooksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured hook rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "EVENT\tMATCHER\tCOMMAND\tTIMEOUT\tON_FAILURE")

		for _, rule := range loadedHooks.PreToolUse {
			timeout := "60s"
			if rule.TimeoutSec > 0 {
				timeout = fmt.Sprintf("%ds", rule.TimeoutSec)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				hooks.PreToolUse, rule.Matcher, strings.Join(rule.Command, " "), timeout, rule.OnFailure)
		}

		return w.Flush()
	},
}

var hooksValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate hooks configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := hooks.ValidateConfig(loadedHooks); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Println("✓ Hooks configuration is valid")
		return nil
	},
}

var hooksInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate example hooks configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		example := &hooks.Config{
			PreToolUse: []hooks.HookRule{
				{
					Matcher:    "shell*",
					Command:    []string{"sh", "-c", `jq -e '.tool_input.command | test("rm -rf") | not' >/dev/null || { echo "destructive command refused" >&2; exit 2; }`},
					TimeoutSec: 5,
				},
				{
					Matcher:   "*",
					Command:   []string{"sh", "-c", `jq -c '{tool: .tool_name, input: .tool_input}' >> "${XDG_CONFIG_HOME:-$HOME/.config}/toolgate/logs/tool-calls.jsonl"`},
					OnFailure: hooks.FailOpen,
				},
			},
		}

		if err := os.MkdirAll(".toolgate", 0755); err != nil {
			return fmt.Errorf("creating .toolgate directory: %w", err)
		}

		data, err := yaml.Marshal(example)
		if err != nil {
			return fmt.Errorf("marshaling example: %w", err)
		}

		if err := os.WriteFile(".toolgate/hooks.yml", data, 0644); err != nil {
			return fmt.Errorf("writing example: %w", err)
		}

		fmt.Println("Created .toolgate/hooks.yml with example configuration")
		return nil
	},
}

var hooksCheckCmd = &cobra.Command{
	Use:   "check <tool-name> [tool-input-json]",
	Short: "Dry-run a tool call through the hook gate",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := json.RawMessage("{}")
		if len(args) == 2 {
			if !json.Valid([]byte(args[1])) {
				return fmt.Errorf("tool input is not valid JSON")
			}
			input = json.RawMessage(args[1])
		}

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		err = hooks.RunPreToolUse(cmd.Context(), loadedHooks.PreToolUse, hooks.Request{
			ToolName:       args[0],
			ToolInput:      input,
			ToolUseID:      uuid.New().String(),
			SessionID:      "cli-check",
			CWD:            cwd,
			TranscriptPath: loadedConfig.TranscriptPath(),
		})
		var blocked *hooks.BlockedError
		if errors.As(err, &blocked) {
			fmt.Printf("✗ denied: %s\n", blocked.Reason)
			os.Exit(2)
		}
		if err != nil {
			return err
		}
		fmt.Println("✓ allowed")
		return nil
	},
}

func init() {
	hooksCmd.AddCommand(hooksListCmd)
	hooksCmd.AddCommand(hooksValidateCmd)
	hooksCmd.AddCommand(hooksInitCmd)
	hooksCmd.AddCommand(hooksCheckCmd)
}
