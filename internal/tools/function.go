package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
)

// MutationClassifier decides whether one function call may mutate the
// environment, given the raw JSON arguments. A nil classifier means every
// call is treated as mutating.
type MutationClassifier func(arguments string) bool

// FunctionHandler adapts an invokable tool into the dispatch pipeline.
type FunctionHandler struct {
	tool     tool.InvokableTool
	classify MutationClassifier
}

func NewFunctionHandler(t tool.InvokableTool, classify MutationClassifier) *FunctionHandler {
	return &FunctionHandler{tool: t, classify: classify}
}

func (h *FunctionHandler) Kind() ToolKind { return ToolKindFunction }

func (h *FunctionHandler) IsMutating(inv *ToolInvocation) bool {
	p, ok := inv.Payload.(*FunctionPayload)
	if !ok || h.classify == nil {
		return true
	}
	return h.classify(p.Arguments)
}

func (h *FunctionHandler) Handle(ctx context.Context, inv *ToolInvocation) (ToolOutput, error) {
	p, ok := inv.Payload.(*FunctionPayload)
	if !ok {
		return ToolOutput{}, fmt.Errorf("tool %s requires function arguments", inv.ToolName)
	}
	content, err := h.tool.InvokableRun(ctx, p.Arguments)
	if err != nil {
		return ToolOutput{}, fmt.Errorf("calling tool %s: %w", inv.ToolName, err)
	}
	return ToolOutput{Content: content, Success: true}, nil
}
