package tools

import (
	"github.com/toolgate/toolgate/internal/audit"
	"github.com/toolgate/toolgate/internal/config"
	"github.com/toolgate/toolgate/internal/hooks"
	"github.com/toolgate/toolgate/internal/readiness"
	"github.com/toolgate/toolgate/internal/telemetry"
)

// SessionContext is the long-lived scope shared by every turn of one
// session.
type SessionContext struct {
	ID    string
	Audit audit.Dispatcher
}

// TurnContext carries the per-turn environment a dispatch runs under.
type TurnContext struct {
	ID        string
	Cwd       string
	Config    *config.Config
	Hooks     *hooks.Config
	Gate      *readiness.Gate
	Telemetry telemetry.Sink
}

// ToolInvocation is one tool call as handed to the dispatcher.
type ToolInvocation struct {
	ToolName string
	CallID   string
	Payload  ToolPayload
	Session  *SessionContext
	Turn     *TurnContext
}

// ToolOutput is what a handler produces on completion.
type ToolOutput struct {
	Content string
	Success bool
}

const logPreviewLimit = 200

// LogPreview returns a truncated copy of the output content for telemetry
// and audit records.
func (o *ToolOutput) LogPreview() string {
	if len(o.Content) > logPreviewLimit {
		return o.Content[:logPreviewLimit]
	}
	return o.Content
}

// ToolResponse pairs the originating call id with the produced output.
type ToolResponse struct {
	CallID string
	Output ToolOutput
}

// IntoResponse assembles the final response for a completed dispatch.
func (o ToolOutput) IntoResponse(callID string) ToolResponse {
	return ToolResponse{CallID: callID, Output: o}
}
