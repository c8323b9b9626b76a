// Package sdk provides programmatic access to the tool-call mediation
// pipeline: load configuration, register tools, and dispatch calls through
// the policy hook gate without going through the CLI.
package sdk

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/toolgate/toolgate/internal/audit"
	"github.com/toolgate/toolgate/internal/config"
	"github.com/toolgate/toolgate/internal/hooks"
	"github.com/toolgate/toolgate/internal/readiness"
	"github.com/toolgate/toolgate/internal/telemetry"
	"github.com/toolgate/toolgate/internal/tools"
)

// Options for creating a Toolgate (all optional - will use config defaults)
type Options struct {
	ConfigFile string           // Override config file path
	HooksFiles []string         // Additional hooks config files
	SessionID  string           // Session id (random when empty)
	Telemetry  telemetry.Sink   // Metrics sink (slog when nil)
	Audit      audit.Dispatcher // Audit sink (config-driven when nil)
}

// Toolgate mediates tool calls for one session.
type Toolgate struct {
	cfg     *config.Config
	hooks   *hooks.Config
	session *tools.SessionContext
	sink    telemetry.Sink

	builder  *tools.Builder
	registry *tools.Registry
	specs    []tools.ConfiguredToolSpec

	nats *audit.NATSDispatcher
}

// New loads configuration and hook rules and prepares an empty tool
// registry. Register tools, then dispatch calls through a Turn.
func New(ctx context.Context, opts *Options) (*Toolgate, error) {
	if opts == nil {
		opts = &Options{}
	}

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	paths := append(append([]string{}, cfg.HooksPaths...), opts.HooksFiles...)
	hookCfg, err := hooks.LoadConfig(paths...)
	if err != nil {
		return nil, fmt.Errorf("loading hooks config: %w", err)
	}
	if err := hooks.ValidateConfig(hookCfg); err != nil {
		return nil, fmt.Errorf("invalid hooks config: %w", err)
	}

	tg := &Toolgate{
		cfg:     cfg,
		hooks:   hookCfg,
		sink:    opts.Telemetry,
		builder: tools.NewBuilder(),
	}
	if tg.sink == nil {
		tg.sink = telemetry.NewSlogSink(slog.Default())
	}

	dispatcher := opts.Audit
	if dispatcher == nil {
		if cfg.Audit.NATSURL != "" {
			nats, err := audit.NewNATSDispatcher(cfg.Audit)
			if err != nil {
				return nil, fmt.Errorf("connecting audit sink: %w", err)
			}
			tg.nats = nats
			dispatcher = nats
		} else {
			dispatcher = audit.NopDispatcher{}
		}
	}

	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	tg.session = &tools.SessionContext{ID: sessionID, Audit: dispatcher}
	return tg, nil
}

// RegisterFunction registers an invokable tool under name. The tool's own
// definition is advertised; classify may be nil to treat every call as
// mutating.
func (tg *Toolgate) RegisterFunction(ctx context.Context, name string, t tool.InvokableTool, classify tools.MutationClassifier) error {
	if tg.registry != nil {
		return fmt.Errorf("registry is sealed; register tools before the first call")
	}
	info, err := t.Info(ctx)
	if err != nil {
		return fmt.Errorf("reading tool info for %s: %w", name, err)
	}
	tg.builder.RegisterHandler(name, tools.NewFunctionHandler(t, classify))
	tg.builder.PushSpec(info)
	return nil
}

// RegisterMCPTool registers one remote tool reachable through caller. The
// registered name is what callers use; readOnly marks tools safe to run
// without admission gating. A non-nil info is advertised through Specs, for
// embedders that mirror the remote server's tool listing.
func (tg *Toolgate) RegisterMCPTool(name string, caller tools.ToolCaller, info *schema.ToolInfo, readOnly []string) error {
	if tg.registry != nil {
		return fmt.Errorf("registry is sealed; register tools before the first call")
	}
	tg.builder.RegisterHandler(name, tools.NewMcpHandler(caller, readOnly))
	if info != nil {
		tg.builder.PushSpec(info)
	}
	return nil
}

// Specs returns the advertised tool definitions. Sealing happens on the
// first call.
func (tg *Toolgate) Specs() []tools.ConfiguredToolSpec {
	tg.seal()
	return tg.specs
}

func (tg *Toolgate) seal() {
	if tg.registry == nil {
		tg.specs, tg.registry = tg.builder.Build()
	}
}

// Close releases the audit connection, if any.
func (tg *Toolgate) Close() {
	if tg.nats != nil {
		tg.nats.Close()
	}
}

// Turn scopes a batch of tool calls to one working directory and one
// admission gate.
type Turn struct {
	tg   *Toolgate
	turn *tools.TurnContext
}

// BeginTurn starts a turn whose mutating calls may run immediately.
func (tg *Toolgate) BeginTurn(cwd string) *Turn {
	return tg.beginTurn(cwd, readiness.NewReadyGate())
}

// BeginHeldTurn starts a turn whose mutating calls wait until Admit is
// called. Non-mutating calls run immediately.
func (tg *Toolgate) BeginHeldTurn(cwd string) *Turn {
	return tg.beginTurn(cwd, readiness.NewGate())
}

func (tg *Toolgate) beginTurn(cwd string, gate *readiness.Gate) *Turn {
	tg.seal()
	return &Turn{
		tg: tg,
		turn: &tools.TurnContext{
			ID:        uuid.New().String(),
			Cwd:       cwd,
			Config:    tg.cfg,
			Hooks:     tg.hooks,
			Gate:      gate,
			Telemetry: tg.sink,
		},
	}
}

// Admit releases mutating calls held by this turn's gate.
func (t *Turn) Admit() {
	t.turn.Gate.SignalReady()
}

// CallTool dispatches one call through the full pipeline: hook gate,
// admission gate, execution, telemetry and audit. A minted call id ties the
// response to the audit record.
func (t *Turn) CallTool(ctx context.Context, toolName string, payload tools.ToolPayload) (tools.ToolResponse, error) {
	return tools.Dispatch(ctx, t.tg.registry, &tools.ToolInvocation{
		ToolName: toolName,
		CallID:   uuid.New().String(),
		Payload:  payload,
		Session:  t.tg.session,
		Turn:     t.turn,
	})
}
