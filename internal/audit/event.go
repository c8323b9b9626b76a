// Package audit carries the after-the-fact record of every mediated tool
// call. Events are emitted for successes, handler failures, and calls the
// policy layer refused, so the audit trail is complete, not success-only.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ToolKind mirrors the payload family of the audited call on the wire.
type ToolKind string

const (
	ToolKindFunction   ToolKind = "function"
	ToolKindCustom     ToolKind = "custom"
	ToolKindLocalShell ToolKind = "local_shell"
	ToolKindMcp        ToolKind = "mcp"
)

// Event is one AfterToolUse record. Immutable once dispatched.
type Event struct {
	EventID     uuid.UUID `json:"event_id"`
	SessionID   string    `json:"session_id"`
	CWD         string    `json:"cwd"`
	TriggeredAt time.Time `json:"triggered_at"`

	TurnID   string   `json:"turn_id"`
	CallID   string   `json:"call_id"`
	ToolName string   `json:"tool_name"`
	ToolKind ToolKind `json:"tool_kind"`

	// ToolInput is the same normalized representation PreToolUse hooks see.
	ToolInput json.RawMessage `json:"tool_input"`

	// Executed distinguishes "ran and finished" from "refused before
	// running".
	Executed      bool   `json:"executed"`
	Success       bool   `json:"success"`
	DurationMs    uint64 `json:"duration_ms"`
	Mutating      bool   `json:"mutating"`
	Sandbox       string `json:"sandbox"`
	SandboxPolicy string `json:"sandbox_policy"`
	OutputPreview string `json:"output_preview"`
}

// Dispatcher receives AfterToolUse events. Dispatch is fire-and-forget for
// the caller but must complete (or durably hand off) before returning; a
// dispatcher's errors are its own to log, they never affect the tool call.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event)
}

// DurationMs converts a duration to whole milliseconds, saturating instead
// of wrapping on overflow.
func DurationMs(d time.Duration) uint64 {
	ms := d.Milliseconds()
	if ms < 0 {
		return ^uint64(0)
	}
	return uint64(ms)
}
