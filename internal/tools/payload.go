package tools

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/toolgate/toolgate/internal/audit"
)

// ToolKind identifies which payload shapes a handler accepts.
type ToolKind int

const (
	ToolKindFunction ToolKind = iota
	ToolKindMcp
)

func (k ToolKind) String() string {
	if k == ToolKindMcp {
		return "mcp"
	}
	return "function"
}

// ToolPayload is the concrete call shape carried by one invocation. Exactly
// one variant per invocation; immutable for the lifetime of the dispatch.
type ToolPayload interface {
	isPayload()
}

// FunctionPayload carries a function-style call with raw JSON arguments.
type FunctionPayload struct {
	Arguments string
}

// CustomPayload carries an opaque free-form input.
type CustomPayload struct {
	Input string
}

// LocalShellPayload carries a structured shell invocation.
type LocalShellPayload struct {
	Command       []string
	Workdir       string
	TimeoutMs     *uint64
	SandboxPerms  string
	Justification string
}

// McpPayload addresses a tool on a named MCP server.
type McpPayload struct {
	Server       string
	Tool         string
	RawArguments string
}

func (*FunctionPayload) isPayload()   {}
func (*CustomPayload) isPayload()     {}
func (*LocalShellPayload) isPayload() {}
func (*McpPayload) isPayload()        {}

// KindMatches reports whether a handler of the given kind accepts the
// payload variant. Function handlers take function payloads, MCP handlers
// take MCP payloads; anything else is a wiring bug surfaced by the
// dispatcher as a fatal error.
func KindMatches(kind ToolKind, payload ToolPayload) bool {
	switch payload.(type) {
	case *FunctionPayload:
		return kind == ToolKindFunction
	case *McpPayload:
		return kind == ToolKindMcp
	default:
		return false
	}
}

// PayloadToolKind maps the payload variant onto the audit wire enumeration.
func PayloadToolKind(payload ToolPayload) audit.ToolKind {
	switch payload.(type) {
	case *FunctionPayload:
		return audit.ToolKindFunction
	case *CustomPayload:
		return audit.ToolKindCustom
	case *LocalShellPayload:
		return audit.ToolKindLocalShell
	case *McpPayload:
		return audit.ToolKindMcp
	default:
		return audit.ToolKindCustom
	}
}

const logPayloadLimit = 256

// LogPayload renders a short loggable preview of the payload for telemetry.
// For JSON argument payloads the command field, when present, is surfaced so
// shell-style calls are readable in logs.
func LogPayload(payload ToolPayload) string {
	var s string
	switch p := payload.(type) {
	case *FunctionPayload:
		if cmd := gjson.Get(p.Arguments, "command"); cmd.Exists() {
			s = fmt.Sprintf("command=%s", cmd.String())
		} else {
			s = p.Arguments
		}
	case *CustomPayload:
		s = p.Input
	case *LocalShellPayload:
		s = strings.Join(p.Command, " ")
	case *McpPayload:
		s = fmt.Sprintf("%s.%s %s", p.Server, p.Tool, p.RawArguments)
	}
	if len(s) > logPayloadLimit {
		s = s[:logPayloadLimit]
	}
	return s
}

func unsupportedToolCallMessage(payload ToolPayload, toolName string) string {
	if _, ok := payload.(*CustomPayload); ok {
		return fmt.Sprintf("unsupported custom tool call: %s", toolName)
	}
	return fmt.Sprintf("unsupported call: %s", toolName)
}
