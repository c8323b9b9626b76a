package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingConfigUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err == nil {
		// An explicit path that does not exist is an error; only probed
		// locations are optional.
		t.Log("explicit missing path returned config:", cfg)
		t.Error("expected error for explicit missing config path")
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.yml")
	content := `
sandbox-policy: workspace-write
data-dir: /var/lib/toolgate
hooks-paths:
  - /etc/toolgate/hooks.yml
audit:
  nats_url: nats://localhost:4222
  subject: toolgate.audit
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SandboxPolicy != SandboxWorkspaceWrite {
		t.Errorf("sandbox policy = %q", cfg.SandboxPolicy)
	}
	if cfg.TranscriptPath() != "/var/lib/toolgate/history.jsonl" {
		t.Errorf("transcript path = %q", cfg.TranscriptPath())
	}
	if len(cfg.HooksPaths) != 1 || cfg.Audit.Subject != "toolgate.audit" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadEnvSubstitution(t *testing.T) {
	t.Setenv("TOOLGATE_TEST_SUBJECT", "audit.custom")

	path := filepath.Join(t.TempDir(), "conf.yml")
	content := `
audit:
  subject: ${env://TOOLGATE_TEST_SUBJECT}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audit.Subject != "audit.custom" {
		t.Errorf("subject = %q", cfg.Audit.Subject)
	}
}

func TestSandboxPolicyTags(t *testing.T) {
	if got := SandboxWorkspaceWrite.Tag(); got != "workspace-write" {
		t.Errorf("Tag = %q", got)
	}
	if got := SandboxPolicy("bogus").Tag(); got != "read-only" {
		t.Errorf("unknown policy tag = %q, want the conservative default", got)
	}
	if got := SandboxDangerFullAccess.MechanismTag(); got != "none" {
		t.Errorf("danger-full-access mechanism = %q, want none", got)
	}
}

func TestEnvSubstituter(t *testing.T) {
	t.Setenv("TOOLGATE_SUB_A", "value-a")

	sub := &EnvSubstituter{}

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"plain", "plain", false},
		{"${env://TOOLGATE_SUB_A}", "value-a", false},
		{"x-${env://TOOLGATE_SUB_A}-y", "x-value-a-y", false},
		{"${env://TOOLGATE_SUB_UNSET:-fallback}", "fallback", false},
		{"${env://TOOLGATE_SUB_UNSET}", "", true},
	}

	for _, tt := range tests {
		got, err := sub.SubstituteEnvVars(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q = %q, want %q", tt.in, got, tt.want)
		}
	}
}
