package hooks

// HookEvent identifies a point in the tool-call lifecycle where hooks fire.
type HookEvent string

const (
	// PreToolUse fires before a tool executes. Hooks at this trigger can
	// block the call.
	PreToolUse HookEvent = "PreToolUse"

	// AfterToolUse fires after a tool has executed or been blocked. It is
	// audit-only and cannot influence the call.
	AfterToolUse HookEvent = "AfterToolUse"
)

// IsValid returns true if the event is a known hook event.
func (e HookEvent) IsValid() bool {
	switch e {
	case PreToolUse, AfterToolUse:
		return true
	}
	return false
}

// CanBlock returns true if hooks at this trigger may deny the tool call.
func (e HookEvent) CanBlock() bool {
	return e == PreToolUse
}
