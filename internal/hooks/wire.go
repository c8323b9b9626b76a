package hooks

import (
	"encoding/json"
	"fmt"
)

// HookInput is the JSON payload written to a hook process on stdin.
// Field names are part of the wire contract and must stay stable; existing
// hook scripts in the ecosystem read these exact keys.
type HookInput struct {
	HookEventName  HookEvent       `json:"hook_event_name"`
	ToolName       string          `json:"tool_name"`
	ToolInput      json.RawMessage `json:"tool_input"`
	ToolUseID      string          `json:"tool_use_id"`
	SessionID      string          `json:"session_id"`
	CWD            string          `json:"cwd"`
	TranscriptPath string          `json:"transcript_path"`
}

// HookOutput is the parsed JSON a hook may print on stdout. It supports two
// equivalent shapes: the preferred nested hookSpecificOutput block and the
// legacy flat decision/reason pair.
type HookOutput struct {
	HookSpecificOutput *HookSpecificOutput `json:"hookSpecificOutput,omitempty"`

	// Legacy flat fields, kept for pre-existing hook scripts.
	Decision *HookDecision `json:"decision,omitempty"`
	Reason   string        `json:"reason,omitempty"`
}

// HookSpecificOutput is the preferred nested result shape. Both fields are
// pointers so a present-but-empty value is distinguishable from an omitted
// one; presence alone decides precedence over the legacy fields.
type HookSpecificOutput struct {
	PermissionDecision       *HookDecision `json:"permissionDecision,omitempty"`
	PermissionDecisionReason *string       `json:"permissionDecisionReason,omitempty"`
	// Some ecosystems also emit updatedInput here for input mutation. This
	// implementation accepts and ignores it; hooks are read-only gates.
}

// EffectiveDecision resolves the decision with nested-over-legacy precedence.
// When the nested block carries a decision it wins outright; otherwise the
// legacy field applies; absence of both means Allow.
func (o *HookOutput) EffectiveDecision() HookDecision {
	if o.HookSpecificOutput != nil && o.HookSpecificOutput.PermissionDecision != nil {
		return *o.HookSpecificOutput.PermissionDecision
	}
	if o.Decision != nil {
		return *o.Decision
	}
	return DecisionAllow
}

// EffectiveReason resolves the reason text with the same precedence as
// EffectiveDecision. The two field groups are never merged: a nested reason
// that is present but empty still suppresses the legacy reason.
func (o *HookOutput) EffectiveReason() string {
	if o.HookSpecificOutput != nil && o.HookSpecificOutput.PermissionDecisionReason != nil {
		return *o.HookSpecificOutput.PermissionDecisionReason
	}
	return o.Reason
}

// HookDecision is a hook's verdict on a tool call.
type HookDecision int

const (
	DecisionAllow HookDecision = iota
	DecisionDeny
	// DecisionAsk is treated as deny by the engine; there is no
	// user-approval flow to hand the question to.
	DecisionAsk
)

func (d HookDecision) String() string {
	switch d {
	case DecisionDeny:
		return "deny"
	case DecisionAsk:
		return "ask"
	default:
		return "allow"
	}
}

// UnmarshalJSON decodes a decision string, accepting the legacy aliases
// "approve" (allow) and "block" (deny).
func (d *HookDecision) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "allow", "approve":
		*d = DecisionAllow
	case "deny", "block":
		*d = DecisionDeny
	case "ask":
		*d = DecisionAsk
	default:
		return fmt.Errorf("unknown hook decision %q", s)
	}
	return nil
}

// MarshalJSON emits the canonical decision string.
func (d HookDecision) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
