package tools

import (
	"context"
	"log/slog"

	"github.com/cloudwego/eino/schema"
)

// ToolHandler executes one named tool. Implementations declare which payload
// kind they accept and whether a given call may mutate the environment.
type ToolHandler interface {
	Kind() ToolKind

	// IsMutating classifies the call; unknown calls must classify as
	// mutating so admission gating stays conservative.
	IsMutating(inv *ToolInvocation) bool

	Handle(ctx context.Context, inv *ToolInvocation) (ToolOutput, error)
}

// ConfiguredToolSpec is one advertised tool definition plus its dispatch
// capabilities.
type ConfiguredToolSpec struct {
	Spec                  *schema.ToolInfo
	SupportsParallelCalls bool
}

// Registry resolves tool names to handlers. Immutable once built.
type Registry struct {
	handlers map[string]ToolHandler
}

// Lookup returns the handler registered under name, if any.
func (r *Registry) Lookup(name string) (ToolHandler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered tool names in no particular order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// Builder accumulates handlers and advertised specs before the registry is
// frozen for a session.
type Builder struct {
	handlers map[string]ToolHandler
	specs    []ConfiguredToolSpec
}

func NewBuilder() *Builder {
	return &Builder{handlers: make(map[string]ToolHandler)}
}

// RegisterHandler binds name to handler. Re-registering a name replaces the
// previous handler and logs a warning.
func (b *Builder) RegisterHandler(name string, handler ToolHandler) {
	if _, exists := b.handlers[name]; exists {
		slog.Warn("duplicate tool handler registration", "tool", name)
	}
	b.handlers[name] = handler
}

// PushSpec advertises a tool definition that does not tolerate parallel
// dispatch.
func (b *Builder) PushSpec(spec *schema.ToolInfo) {
	b.specs = append(b.specs, ConfiguredToolSpec{Spec: spec})
}

// PushSpecWithParallelSupport advertises a tool definition that may be
// dispatched concurrently with other calls.
func (b *Builder) PushSpecWithParallelSupport(spec *schema.ToolInfo) {
	b.specs = append(b.specs, ConfiguredToolSpec{Spec: spec, SupportsParallelCalls: true})
}

// Build freezes the accumulated state into the advertised spec list and a
// registry. The builder must not be used afterwards.
func (b *Builder) Build() ([]ConfiguredToolSpec, *Registry) {
	return b.specs, &Registry{handlers: b.handlers}
}
