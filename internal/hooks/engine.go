package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

const (
	defaultTimeout = 60 * time.Second

	// waitDelay bounds pipe collection after the process is killed, so a
	// hook that hands its stdout to a grandchild cannot stall the engine.
	waitDelay = 5 * time.Second
)

// BlockedError is a policy block: an explicit deny (or ask) from a hook, or
// a hook failure under a fail-closed policy. Reason is user-visible and is
// reported to the caller as-is.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return e.Reason
}

// Request carries the per-invocation fields sent to every hook process.
type Request struct {
	ToolName       string
	ToolInput      json.RawMessage
	ToolUseID      string
	SessionID      string
	CWD            string
	TranscriptPath string
}

// RunPreToolUse evaluates all PreToolUse rules against a tool invocation, in
// configured order, one at a time. It returns a *BlockedError when a rule
// blocks the call and nil when every rule is skipped or allows it. Hook
// infrastructure failures never escape: they become either a block
// (fail-closed) or a logged continuation (fail-open) per the rule's
// on_failure policy.
func RunPreToolUse(ctx context.Context, rules []HookRule, req Request) error {
	for _, rule := range rules {
		if !MatchesTool(rule.Matcher, req.ToolName) {
			continue
		}

		// An empty command is a hook that cannot run, which is exactly as
		// trustworthy as a hook that errors.
		if len(rule.Command) == 0 {
			slog.Warn("hook has empty command", "matcher", rule.Matcher)
			if rule.OnFailure == FailClosed {
				return &BlockedError{Reason: "Hook misconfigured: empty command"}
			}
			continue
		}

		slog.Debug("running PreToolUse hook", "tool", req.ToolName, "matcher", rule.Matcher)

		output, err := runHook(ctx, rule, req)
		if err != nil {
			slog.Warn("hook execution failed", "matcher", rule.Matcher, "error", err)
			if rule.OnFailure == FailClosed {
				return &BlockedError{Reason: fmt.Sprintf("Hook failed (fail-closed): %v", err)}
			}
			continue
		}

		switch output.EffectiveDecision() {
		case DecisionDeny, DecisionAsk:
			// Ask folds into deny; there is no approval channel to route it
			// to. If one is ever added, this is the place.
			reason := output.EffectiveReason()
			if reason == "" {
				reason = "Blocked by PreToolUse hook"
			}
			return &BlockedError{Reason: reason}
		case DecisionAllow:
		}
	}
	return nil
}

// runHook executes one rule as a subprocess and interprets its exit status
// per the wire protocol. The returned error is a hook-execution error, to be
// resolved by the caller through the rule's on_failure policy. A deny by
// exit code 2 is a decision, not an error, and is returned as a HookOutput.
func runHook(ctx context.Context, rule HookRule, req Request) (*HookOutput, error) {
	input := HookInput{
		HookEventName:  PreToolUse,
		ToolName:       req.ToolName,
		ToolInput:      req.ToolInput,
		ToolUseID:      req.ToolUseID,
		SessionID:      req.SessionID,
		CWD:            req.CWD,
		TranscriptPath: req.TranscriptPath,
	}

	inputJSON, err := sonic.Marshal(&input)
	if err != nil {
		return nil, fmt.Errorf("serializing hook input: %w", err)
	}

	timeout := time.Duration(rule.TimeoutSec) * time.Second
	if timeout == 0 {
		timeout = defaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, rule.Command[0], rule.Command[1:]...)
	cmd.Dir = req.CWD
	cmd.Stdin = bytes.NewReader(inputJSON)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		// CommandContext killed the child; nothing outlives this call.
		return nil, fmt.Errorf("hook timed out after %s", timeout)
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("spawning hook: %w", runErr)
		}

		// Exit code 2 is a protocol-level deny with stderr as the reason.
		if exitErr.ExitCode() == 2 {
			reason := strings.TrimSpace(stderr.String())
			if reason == "" {
				reason = "Hook blocked command (exit code 2)"
			}
			deny := DecisionDeny
			return &HookOutput{Decision: &deny, Reason: reason}, nil
		}

		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("hook failed: %s", msg)
		}
		return nil, fmt.Errorf("hook exited with status: %v", exitErr)
	}

	// Exit 0 with no output is an implicit allow.
	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return &HookOutput{}, nil
	}

	var output HookOutput
	if err := sonic.Unmarshal([]byte(out), &output); err != nil {
		preview := out
		if len(preview) > 200 {
			preview = preview[:200]
		}
		return nil, fmt.Errorf("parsing hook output: %w (got: %s)", err, preview)
	}
	return &output, nil
}
