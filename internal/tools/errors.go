package tools

import "fmt"

// ToolCallError distinguishes failures the model can recover from (bad tool
// name, policy block, handler error) from fatal wiring bugs that must abort
// the session.
type ToolCallError struct {
	msg   string
	fatal bool
}

func (e *ToolCallError) Error() string { return e.msg }

// IsFatal reports whether the failure should abort the session rather than
// be surfaced to the caller as a tool result.
func (e *ToolCallError) IsFatal() bool { return e.fatal }

// NewRespondToModel builds a recoverable error whose message becomes the
// tool output handed back to the caller.
func NewRespondToModel(format string, args ...any) *ToolCallError {
	return &ToolCallError{msg: fmt.Sprintf(format, args...)}
}

// NewFatal builds an error that aborts the session.
func NewFatal(format string, args ...any) *ToolCallError {
	return &ToolCallError{msg: fmt.Sprintf(format, args...), fatal: true}
}
