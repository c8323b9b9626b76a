package hooks

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"

	"github.com/toolgate/toolgate/internal/config"
)

// FailurePolicy governs what happens when a hook itself fails: spawn error,
// timeout, malformed output, or an empty command.
type FailurePolicy int

const (
	// FailClosed denies the tool call when the hook fails. This is the
	// default: broken policy infrastructure is as distrusted as an explicit
	// deny.
	FailClosed FailurePolicy = iota

	// FailOpen logs the failure and lets evaluation continue with the next
	// rule.
	FailOpen
)

func (p FailurePolicy) String() string {
	if p == FailOpen {
		return "allow"
	}
	return "deny"
}

// UnmarshalYAML decodes "allow"/"deny".
func (p *FailurePolicy) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return p.decode(s)
}

// UnmarshalJSON decodes "allow"/"deny".
func (p *FailurePolicy) UnmarshalJSON(data []byte) error {
	var s string
	if err := sonic.Unmarshal(data, &s); err != nil {
		return err
	}
	return p.decode(s)
}

func (p *FailurePolicy) decode(s string) error {
	switch s {
	case "deny", "":
		*p = FailClosed
	case "allow":
		*p = FailOpen
	default:
		return fmt.Errorf("unknown on_failure policy %q (want allow or deny)", s)
	}
	return nil
}

// HookRule is one configured policy hook. Rules are evaluated in configured
// order; the first blocking decision wins.
type HookRule struct {
	// Matcher selects tool names this rule applies to ("*", glob, exact).
	Matcher string `yaml:"matcher" json:"matcher"`

	// Command is the argv vector to execute; Command[0] is the program.
	Command []string `yaml:"command" json:"command"`

	// TimeoutSec bounds "wait for exit and collect output". Zero means the
	// default of 60 seconds.
	TimeoutSec int `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// OnFailure decides the fate of the tool call when this hook errors.
	OnFailure FailurePolicy `yaml:"on_failure,omitempty" json:"on_failure,omitempty"`
}

// Config holds all configured hook rules, keyed by trigger.
type Config struct {
	PreToolUse []HookRule `yaml:"pre_tool_use" json:"pre_tool_use"`

	// Replace, when set in a config layer, discards rules accumulated from
	// earlier layers instead of appending.
	Replace bool `yaml:"replace,omitempty" json:"replace,omitempty"`
}

// LoadConfig loads and merges hook rules from the standard search paths plus
// any explicitly supplied paths, lowest to highest precedence. Later layers
// append their rules after earlier ones, preserving evaluation order within
// each file; a layer with replace: true starts over.
func LoadConfig(customPaths ...string) (*Config, error) {
	searchPaths := []string{
		filepath.Join(configDir(), "toolgate", "hooks.json"),
		filepath.Join(configDir(), "toolgate", "hooks.yml"),
		".toolgate/hooks.json",
		".toolgate/hooks.yml",
	}
	searchPaths = append(searchPaths, customPaths...)

	merged := &Config{}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		layer, err := loadConfigFile(path)
		if err != nil {
			return nil, err
		}

		if layer.Replace {
			merged.PreToolUse = nil
		}
		merged.PreToolUse = append(merged.PreToolUse, layer.PreToolUse...)
	}

	return merged, nil
}

func loadConfigFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	substituter := &config.EnvSubstituter{}
	substituted, err := substituter.SubstituteEnvVars(string(content))
	if err != nil {
		return nil, fmt.Errorf("substituting env vars in %s: %w", path, err)
	}

	var cfg Config
	if filepath.Ext(path) == ".json" {
		err = sonic.Unmarshal([]byte(substituted), &cfg)
	} else {
		err = yaml.Unmarshal([]byte(substituted), &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// configDir returns the user configuration directory following the XDG Base
// Directory specification.
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config")
	}
	return "."
}
