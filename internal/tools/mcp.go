package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/mark3labs/mcp-go/mcp"
)

// ToolCaller is the slice of the MCP client the handler needs. The client
// types from mcp-go satisfy it.
type ToolCaller interface {
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// McpHandler routes MCP payloads to a connected server. The handler is
// registered once per advertised remote tool; the payload names the server
// and tool it targets.
type McpHandler struct {
	client   ToolCaller
	readOnly map[string]bool
}

// NewMcpHandler wraps an MCP client. Tools named in readOnlyTools are
// classified as non-mutating; everything else is treated as mutating.
func NewMcpHandler(c ToolCaller, readOnlyTools []string) *McpHandler {
	ro := make(map[string]bool, len(readOnlyTools))
	for _, name := range readOnlyTools {
		ro[name] = true
	}
	return &McpHandler{client: c, readOnly: ro}
}

func (h *McpHandler) Kind() ToolKind { return ToolKindMcp }

func (h *McpHandler) IsMutating(inv *ToolInvocation) bool {
	p, ok := inv.Payload.(*McpPayload)
	if !ok {
		return true
	}
	return !h.readOnly[p.Tool]
}

func (h *McpHandler) Handle(ctx context.Context, inv *ToolInvocation) (ToolOutput, error) {
	p, ok := inv.Payload.(*McpPayload)
	if !ok {
		return ToolOutput{}, fmt.Errorf("tool %s requires MCP arguments", inv.ToolName)
	}

	req := mcp.CallToolRequest{}
	req.Request.Method = "tools/call"
	req.Params.Name = p.Tool
	if p.RawArguments != "" {
		req.Params.Arguments = json.RawMessage(p.RawArguments)
	}

	result, err := h.client.CallTool(ctx, req)
	if err != nil {
		return ToolOutput{}, fmt.Errorf("calling MCP tool %s on %s: %w", p.Tool, p.Server, err)
	}

	content, err := sonic.MarshalString(result)
	if err != nil {
		return ToolOutput{}, fmt.Errorf("encoding MCP result for %s: %w", p.Tool, err)
	}
	return ToolOutput{Content: content, Success: !result.IsError}, nil
}
