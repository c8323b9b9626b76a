package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// SandboxPolicy names the confinement applied to tool execution. The
// dispatcher does not interpret the policy; it only stamps it onto telemetry
// and audit records.
type SandboxPolicy string

const (
	SandboxReadOnly         SandboxPolicy = "read-only"
	SandboxWorkspaceWrite   SandboxPolicy = "workspace-write"
	SandboxDangerFullAccess SandboxPolicy = "danger-full-access"
	SandboxExternal         SandboxPolicy = "external-sandbox"
)

// Tag returns the fixed metric tag for the policy.
func (p SandboxPolicy) Tag() string {
	switch p {
	case SandboxReadOnly, SandboxWorkspaceWrite, SandboxDangerFullAccess, SandboxExternal:
		return string(p)
	default:
		return string(SandboxReadOnly)
	}
}

// MechanismTag returns the metric tag for the sandboxing mechanism in effect
// on this platform under the policy.
func (p SandboxPolicy) MechanismTag() string {
	if p == SandboxDangerFullAccess {
		return "none"
	}
	switch runtime.GOOS {
	case "darwin":
		return "seatbelt"
	case "linux":
		return "landlock"
	default:
		return "none"
	}
}

// AuditConfig configures the NATS audit publisher. Empty URL disables
// publishing.
type AuditConfig struct {
	NATSURL  string `json:"nats_url,omitempty" yaml:"nats_url,omitempty" mapstructure:"nats_url"`
	Subject  string `json:"subject,omitempty" yaml:"subject,omitempty" mapstructure:"subject"`
	Username string `json:"username,omitempty" yaml:"username,omitempty" mapstructure:"username"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
}

// Config is the application configuration shared by every dispatch in a
// session. Loaded once at startup; treated as read-only afterwards.
type Config struct {
	// HooksPaths are extra hook rule files layered over the standard
	// search paths.
	HooksPaths []string `json:"hooks-paths,omitempty" yaml:"hooks-paths,omitempty" mapstructure:"hooks-paths"`

	SandboxPolicy SandboxPolicy `json:"sandbox-policy,omitempty" yaml:"sandbox-policy,omitempty" mapstructure:"sandbox-policy"`

	// DataDir holds session artifacts; the transcript lives at
	// DataDir/history.jsonl.
	DataDir string `json:"data-dir,omitempty" yaml:"data-dir,omitempty" mapstructure:"data-dir"`

	Debug bool `json:"debug,omitempty" yaml:"debug,omitempty" mapstructure:"debug"`

	Audit AuditConfig `json:"audit,omitempty" yaml:"audit,omitempty" mapstructure:"audit"`
}

// TranscriptPath returns the path handed to hook processes as
// transcript_path.
func (c *Config) TranscriptPath() string {
	return filepath.Join(c.dataDir(), "history.jsonl")
}

func (c *Config) dataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".toolgate"
	}
	return filepath.Join(home, ".toolgate")
}

// Load reads the application config. An explicit path wins; otherwise the
// standard locations are probed (~/.toolgate.{yml,yaml,json}). A missing
// config is not an error. Content passes through env substitution before
// parsing, same as hook rule files.
func Load(explicitPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TOOLGATE")
	v.AutomaticEnv()

	v.SetDefault("sandbox-policy", string(SandboxReadOnly))

	path := explicitPath
	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		if err := readWithEnvSubstitution(v, path); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	for _, ext := range []string{"yml", "yaml", "json"} {
		path := filepath.Join(home, ".toolgate."+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func readWithEnvSubstitution(v *viper.Viper, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	substituter := &EnvSubstituter{}
	processed, err := substituter.SubstituteEnvVars(string(raw))
	if err != nil {
		return fmt.Errorf("config env substitution: %w", err)
	}

	configType := "yaml"
	if strings.HasSuffix(path, ".json") {
		configType = "json"
	}
	v.SetConfigType(configType)
	return v.ReadConfig(strings.NewReader(processed))
}
