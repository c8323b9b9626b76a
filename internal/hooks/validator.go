package hooks

import (
	"fmt"
	"strings"
)

// ValidateConfig checks a loaded hook configuration for problems that the
// engine would otherwise only surface at call time. Used by the CLI; the
// engine itself never refuses to run on a misconfigured rule, it applies the
// rule's on_failure policy instead.
func ValidateConfig(cfg *Config) error {
	var problems []string

	for i, rule := range cfg.PreToolUse {
		for _, p := range validateRule(rule) {
			problems = append(problems, fmt.Sprintf("pre_tool_use[%d]: %s", i, p))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid hook configuration:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

func validateRule(rule HookRule) []string {
	var problems []string

	if rule.Matcher == "" {
		problems = append(problems, "empty matcher (use \"*\" to match all tools)")
	}

	if len(rule.Command) == 0 {
		// Runs per on_failure at call time; still worth surfacing up front.
		problems = append(problems, fmt.Sprintf("empty command (calls matching %q will be handled per on_failure=%s)", rule.Matcher, rule.OnFailure))
	} else if strings.TrimSpace(rule.Command[0]) == "" {
		problems = append(problems, "command[0] (the program) is blank")
	}

	if rule.TimeoutSec < 0 {
		problems = append(problems, fmt.Sprintf("negative timeout %d", rule.TimeoutSec))
	}

	return problems
}
