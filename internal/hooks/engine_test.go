package hooks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testRequest() Request {
	return Request{
		ToolName:       "shell",
		ToolInput:      json.RawMessage(`{"command":"ls"}`),
		ToolUseID:      "test-id",
		SessionID:      "session-id",
		CWD:            "/tmp",
		TranscriptPath: "/tmp/transcript.jsonl",
	}
}

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("writing script %s: %v", name, err)
	}
	return path
}

func TestRunPreToolUseNoRules(t *testing.T) {
	if err := RunPreToolUse(context.Background(), nil, testRequest()); err != nil {
		t.Errorf("no rules should allow, got %v", err)
	}
}

func TestRunPreToolUseNonMatchingRuleSkipped(t *testing.T) {
	rules := []HookRule{{
		Matcher:   "other_tool",
		Command:   []string{"false"}, // would fail if matched
		OnFailure: FailClosed,
	}}
	if err := RunPreToolUse(context.Background(), rules, testRequest()); err != nil {
		t.Errorf("non-matching rule should be skipped, got %v", err)
	}
}

func TestRunPreToolUseEmptyCommand(t *testing.T) {
	t.Run("fail-closed blocks", func(t *testing.T) {
		rules := []HookRule{{Matcher: "*", OnFailure: FailClosed}}
		err := RunPreToolUse(context.Background(), rules, testRequest())

		var blocked *BlockedError
		if !errors.As(err, &blocked) {
			t.Fatalf("want BlockedError, got %v", err)
		}
		if !strings.Contains(blocked.Reason, "empty command") {
			t.Errorf("reason %q should mention the misconfiguration", blocked.Reason)
		}
	})

	t.Run("fail-open continues to later rules", func(t *testing.T) {
		denyScript := writeScript(t, "deny.sh", "echo 'later rule' >&2\nexit 2\n")
		rules := []HookRule{
			{Matcher: "*", OnFailure: FailOpen},
			{Matcher: "*", Command: []string{denyScript}, OnFailure: FailClosed},
		}
		err := RunPreToolUse(context.Background(), rules, testRequest())

		var blocked *BlockedError
		if !errors.As(err, &blocked) {
			t.Fatalf("want block from the second rule, got %v", err)
		}
		if blocked.Reason != "later rule" {
			t.Errorf("reason = %q, want %q", blocked.Reason, "later rule")
		}
	})
}

func TestRunPreToolUseExitZeroAllows(t *testing.T) {
	rules := []HookRule{{
		Matcher:   "*",
		Command:   []string{"true"},
		OnFailure: FailClosed,
	}}
	if err := RunPreToolUse(context.Background(), rules, testRequest()); err != nil {
		t.Errorf("exit 0 with empty stdout should allow, got %v", err)
	}
}

func TestRunPreToolUseExitTwoDenies(t *testing.T) {
	script := writeScript(t, "block.sh", "echo 'Blocked by test' >&2\nexit 2\n")
	rules := []HookRule{{
		Matcher:   "*",
		Command:   []string{script},
		OnFailure: FailClosed,
	}}
	err := RunPreToolUse(context.Background(), rules, testRequest())

	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("want BlockedError, got %v", err)
	}
	// The stderr text is the reason verbatim, no prefix injected.
	if blocked.Reason != "Blocked by test" {
		t.Errorf("reason = %q, want %q", blocked.Reason, "Blocked by test")
	}
}

func TestRunPreToolUseExitTwoEmptyStderr(t *testing.T) {
	script := writeScript(t, "block.sh", "exit 2\n")
	rules := []HookRule{{Matcher: "*", Command: []string{script}, OnFailure: FailClosed}}
	err := RunPreToolUse(context.Background(), rules, testRequest())

	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("want BlockedError, got %v", err)
	}
	if !strings.Contains(blocked.Reason, "exit code 2") {
		t.Errorf("reason = %q, want the generic exit-code-2 message", blocked.Reason)
	}
}

func TestRunPreToolUseJSONDecisions(t *testing.T) {
	tests := []struct {
		name      string
		stdout    string
		wantBlock bool
		reason    string
	}{
		{
			name:      "legacy deny",
			stdout:    `{"decision": "deny", "reason": "JSON deny"}`,
			wantBlock: true,
			reason:    "JSON deny",
		},
		{
			name:      "nested deny",
			stdout:    `{"hookSpecificOutput": {"permissionDecision": "deny", "permissionDecisionReason": "nested deny"}}`,
			wantBlock: true,
			reason:    "nested deny",
		},
		{
			name:      "ask treated as deny",
			stdout:    `{"decision": "ask", "reason": "needs approval"}`,
			wantBlock: true,
			reason:    "needs approval",
		},
		{
			name:      "deny without reason gets default",
			stdout:    `{"decision": "deny"}`,
			wantBlock: true,
			reason:    "Blocked by PreToolUse hook",
		},
		{
			name:      "explicit allow",
			stdout:    `{"decision": "allow"}`,
			wantBlock: false,
		},
		{
			name:      "legacy approve alias allows",
			stdout:    `{"decision": "approve", "reason": "fine"}`,
			wantBlock: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := writeScript(t, "hook.sh", "echo '"+tt.stdout+"'\n")
			rules := []HookRule{{Matcher: "*", Command: []string{script}, OnFailure: FailClosed}}
			err := RunPreToolUse(context.Background(), rules, testRequest())

			if !tt.wantBlock {
				if err != nil {
					t.Fatalf("want allow, got %v", err)
				}
				return
			}

			var blocked *BlockedError
			if !errors.As(err, &blocked) {
				t.Fatalf("want BlockedError, got %v", err)
			}
			if blocked.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", blocked.Reason, tt.reason)
			}
		})
	}
}

func TestRunPreToolUseFirstBlockShortCircuits(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "ran")
	deny := writeScript(t, "deny.sh", "echo 'first wins' >&2\nexit 2\n")
	recorder := writeScript(t, "record.sh", "touch "+marker+"\n")

	rules := []HookRule{
		{Matcher: "*", Command: []string{deny}, OnFailure: FailClosed},
		{Matcher: "*", Command: []string{recorder}, OnFailure: FailClosed},
	}
	err := RunPreToolUse(context.Background(), rules, testRequest())

	var blocked *BlockedError
	if !errors.As(err, &blocked) || blocked.Reason != "first wins" {
		t.Fatalf("want block from first rule, got %v", err)
	}
	if _, statErr := os.Stat(marker); !os.IsNotExist(statErr) {
		t.Error("second rule ran after the first blocked")
	}
}

func TestRunPreToolUseMalformedOutput(t *testing.T) {
	script := writeScript(t, "bad.sh", "echo 'not json at all'\n")

	t.Run("fail-closed", func(t *testing.T) {
		rules := []HookRule{{Matcher: "*", Command: []string{script}, OnFailure: FailClosed}}
		err := RunPreToolUse(context.Background(), rules, testRequest())

		var blocked *BlockedError
		if !errors.As(err, &blocked) {
			t.Fatalf("want BlockedError, got %v", err)
		}
		if !strings.Contains(blocked.Reason, "not json at all") {
			t.Errorf("reason %q should carry a preview of the bad output", blocked.Reason)
		}
	})

	t.Run("fail-open", func(t *testing.T) {
		rules := []HookRule{{Matcher: "*", Command: []string{script}, OnFailure: FailOpen}}
		if err := RunPreToolUse(context.Background(), rules, testRequest()); err != nil {
			t.Errorf("fail-open should continue, got %v", err)
		}
	})
}

func TestRunPreToolUseNonZeroExit(t *testing.T) {
	script := writeScript(t, "fail.sh", "echo 'boom' >&2\nexit 1\n")
	rules := []HookRule{{Matcher: "*", Command: []string{script}, OnFailure: FailClosed}}
	err := RunPreToolUse(context.Background(), rules, testRequest())

	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("want BlockedError, got %v", err)
	}
	if !strings.Contains(blocked.Reason, "boom") {
		t.Errorf("reason %q should carry the hook's stderr", blocked.Reason)
	}
	if !strings.Contains(blocked.Reason, "fail-closed") {
		t.Errorf("reason %q should mark the fail-closed path", blocked.Reason)
	}
}

func TestRunPreToolUseSpawnFailure(t *testing.T) {
	rules := []HookRule{{
		Matcher:   "*",
		Command:   []string{"/nonexistent/hook-binary"},
		OnFailure: FailOpen,
	}}
	if err := RunPreToolUse(context.Background(), rules, testRequest()); err != nil {
		t.Errorf("spawn failure under fail-open should continue, got %v", err)
	}
}

func TestRunPreToolUseTimeout(t *testing.T) {
	script := writeScript(t, "slow.sh", "sleep 5\n")
	rules := []HookRule{{
		Matcher:    "*",
		Command:    []string{script},
		TimeoutSec: 1,
		OnFailure:  FailClosed,
	}}

	start := time.Now()
	err := RunPreToolUse(context.Background(), rules, testRequest())
	elapsed := time.Since(start)

	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("want BlockedError, got %v", err)
	}
	if !strings.Contains(blocked.Reason, "timed out") {
		t.Errorf("reason = %q, want a timeout message", blocked.Reason)
	}
	if elapsed > 4*time.Second {
		t.Errorf("run took %v; the hook was not terminated at its timeout", elapsed)
	}
}

func TestRunPreToolUseHookReceivesInput(t *testing.T) {
	// The hook denies with the tool_use_id it read from stdin, proving the
	// wire payload round-trips.
	script := writeScript(t, "echoid.sh",
		`id=$(sed 's/.*"tool_use_id":"\([^"]*\)".*/\1/')`+"\n"+
			`echo "$id" >&2`+"\n"+
			"exit 2\n")
	rules := []HookRule{{Matcher: "shell", Command: []string{script}, OnFailure: FailClosed}}
	err := RunPreToolUse(context.Background(), rules, testRequest())

	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("want BlockedError, got %v", err)
	}
	if blocked.Reason != "test-id" {
		t.Errorf("hook saw tool_use_id %q, want %q", blocked.Reason, "test-id")
	}
}
