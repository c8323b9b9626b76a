package tools

import (
	"encoding/json"
	"strings"

	"github.com/bytedance/sonic"
)

// HookToolInputJSON renders the payload as the tool_input document handed to
// policy hooks. Inputs are normalized so hook scripts can match on a single
// string "command" field regardless of how the caller shaped the arguments:
//
//   - an array-valued "command" is joined with single spaces
//   - a string "cmd" is copied to "command" when "command" is absent
//   - local shell payloads become {"command": "<joined argv>"}
//
// Unparseable function arguments degrade to JSON null rather than failing
// the dispatch.
func HookToolInputJSON(payload ToolPayload) json.RawMessage {
	switch p := payload.(type) {
	case *FunctionPayload:
		return normalizeArguments(p.Arguments)
	case *CustomPayload:
		raw, err := sonic.Marshal(p.Input)
		if err != nil {
			return json.RawMessage("null")
		}
		return raw
	case *LocalShellPayload:
		raw, err := sonic.Marshal(map[string]string{
			"command": strings.Join(p.Command, " "),
		})
		if err != nil {
			return json.RawMessage("null")
		}
		return raw
	case *McpPayload:
		// MCP arguments are the remote tool's own schema; they carry no
		// shell command to normalize and are forwarded as parsed.
		return rawArgumentsJSON(p.RawArguments)
	default:
		return json.RawMessage("null")
	}
}

func rawArgumentsJSON(arguments string) json.RawMessage {
	trimmed := strings.TrimSpace(arguments)
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		return json.RawMessage("null")
	}
	return json.RawMessage(trimmed)
}

func normalizeArguments(arguments string) json.RawMessage {
	var doc map[string]any
	if err := sonic.UnmarshalString(arguments, &doc); err != nil || doc == nil {
		trimmed := strings.TrimSpace(arguments)
		if trimmed != "" && json.Valid([]byte(trimmed)) {
			return json.RawMessage(trimmed)
		}
		return json.RawMessage("null")
	}

	if cmd, ok := doc["command"]; ok {
		if parts, ok := cmd.([]any); ok {
			doc["command"] = joinCommandVector(parts)
		}
	} else if alias, ok := doc["cmd"].(string); ok {
		doc["command"] = alias
	}

	raw, err := sonic.Marshal(doc)
	if err != nil {
		return json.RawMessage("null")
	}
	return raw
}

// joinCommandVector joins the string elements of an array-valued command
// with single spaces. Non-string elements are dropped, not stringified.
func joinCommandVector(parts []any) string {
	strs := make([]string, 0, len(parts))
	for _, part := range parts {
		if s, ok := part.(string); ok {
			strs = append(strs, s)
		}
	}
	return strings.Join(strs, " ")
}
