package tools

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/toolgate/toolgate/internal/audit"
	"github.com/toolgate/toolgate/internal/hooks"
	"github.com/toolgate/toolgate/internal/telemetry"
)

// Dispatch runs one tool call end to end: handler resolution, payload kind
// check, policy hook gate, admission gating for mutating calls, telemetry
// wrapped execution, and the audit event. The audit event is emitted exactly
// once per call, whether or not the tool ran.
func Dispatch(ctx context.Context, registry *Registry, inv *ToolInvocation) (ToolResponse, error) {
	tags := sandboxTags(inv)
	sink := inv.Turn.Telemetry

	handler, ok := registry.Lookup(inv.ToolName)
	if !ok {
		msg := unsupportedToolCallMessage(inv.Payload, inv.ToolName)
		sink.ToolResult(inv.ToolName, inv.CallID, LogPayload(inv.Payload), 0, false, msg, tags)
		emitAuditEvent(ctx, inv, auditOutcome{mutating: false, message: msg})
		return ToolResponse{}, NewRespondToModel("%s", msg)
	}

	if !KindMatches(handler.Kind(), inv.Payload) {
		msg := "tool " + inv.ToolName + " invoked with incompatible payload"
		sink.ToolResult(inv.ToolName, inv.CallID, LogPayload(inv.Payload), 0, false, msg, tags)
		emitAuditEvent(ctx, inv, auditOutcome{mutating: false, message: msg})
		return ToolResponse{}, NewFatal("%s", msg)
	}

	mutating := handler.IsMutating(inv)

	if rules := preHookRules(inv); len(rules) > 0 {
		start := time.Now()
		err := hooks.RunPreToolUse(ctx, rules, hooks.Request{
			ToolName:       inv.ToolName,
			ToolInput:      HookToolInputJSON(inv.Payload),
			ToolUseID:      inv.CallID,
			SessionID:      inv.Session.ID,
			CWD:            inv.Turn.Cwd,
			TranscriptPath: inv.Turn.Config.TranscriptPath(),
		})
		if err != nil {
			reason := err.Error()
			sink.ToolResult(inv.ToolName, inv.CallID, LogPayload(inv.Payload), time.Since(start), false, reason, tags)
			emitAuditEvent(ctx, inv, auditOutcome{
				mutating: mutating,
				duration: time.Since(start),
				message:  reason,
			})
			return ToolResponse{}, NewRespondToModel("%s", reason)
		}
	}

	var (
		cellMu sync.Mutex
		cell   *ToolOutput
	)
	start := time.Now()
	_, success, runErr := sink.WrapToolResult(ctx, inv.ToolName, inv.CallID, LogPayload(inv.Payload), tags,
		func(ctx context.Context) (string, bool, error) {
			if mutating {
				if err := inv.Turn.Gate.WaitReady(ctx); err != nil {
					return "", false, err
				}
			}
			call := *inv
			out, err := handler.Handle(ctx, &call)
			if err != nil {
				return "", false, err
			}
			cellMu.Lock()
			cell = &out
			cellMu.Unlock()
			return out.LogPreview(), out.Success, nil
		})
	elapsed := time.Since(start)

	outcome := auditOutcome{
		executed: true,
		success:  success && runErr == nil,
		mutating: mutating,
		duration: elapsed,
	}
	if runErr != nil {
		outcome.message = runErr.Error()
	} else {
		cellMu.Lock()
		if cell != nil {
			outcome.message = cell.LogPreview()
		}
		cellMu.Unlock()
	}
	emitAuditEvent(ctx, inv, outcome)

	if runErr != nil {
		return ToolResponse{}, NewRespondToModel("%s", runErr.Error())
	}

	cellMu.Lock()
	out := cell
	cellMu.Unlock()
	if out == nil {
		return ToolResponse{}, NewFatal("tool produced no output")
	}
	return out.IntoResponse(inv.CallID), nil
}

func sandboxTags(inv *ToolInvocation) []telemetry.Tag {
	policy := inv.Turn.Config.SandboxPolicy
	return []telemetry.Tag{
		{Key: "sandbox", Value: policy.MechanismTag()},
		{Key: "sandbox_policy", Value: policy.Tag()},
	}
}

func preHookRules(inv *ToolInvocation) []hooks.HookRule {
	if inv.Turn.Hooks == nil {
		return nil
	}
	return inv.Turn.Hooks.PreToolUse
}

type auditOutcome struct {
	executed bool
	success  bool
	mutating bool
	duration time.Duration
	message  string
}

func emitAuditEvent(ctx context.Context, inv *ToolInvocation, outcome auditOutcome) {
	if inv.Session.Audit == nil {
		return
	}
	policy := inv.Turn.Config.SandboxPolicy
	inv.Session.Audit.Dispatch(ctx, audit.Event{
		EventID:       uuid.New(),
		SessionID:     inv.Session.ID,
		CWD:           inv.Turn.Cwd,
		TriggeredAt:   time.Now().UTC(),
		TurnID:        inv.Turn.ID,
		CallID:        inv.CallID,
		ToolName:      inv.ToolName,
		ToolKind:      PayloadToolKind(inv.Payload),
		ToolInput:     HookToolInputJSON(inv.Payload),
		Executed:      outcome.executed,
		Success:       outcome.success,
		DurationMs:    audit.DurationMs(outcome.duration),
		Mutating:      outcome.mutating,
		Sandbox:       policy.MechanismTag(),
		SandboxPolicy: policy.Tag(),
		OutputPreview: outcome.message,
	})
}
