package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bytedance/sonic"
	"github.com/nats-io/nats.go"

	"github.com/toolgate/toolgate/internal/config"
)

const defaultSubject = "toolgate.audit"

// NATSDispatcher publishes audit events to a NATS subject so records leave
// the process before the tool response is returned.
type NATSDispatcher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSDispatcher connects to the configured NATS server. The connection
// lives for the session; Close releases it.
func NewNATSDispatcher(cfg config.AuditConfig) (*NATSDispatcher, error) {
	opts := []nats.Option{}
	if cfg.Username != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	conn, err := nats.Connect(cfg.NATSURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	subject := cfg.Subject
	if subject == "" {
		subject = defaultSubject
	}

	return &NATSDispatcher{conn: conn, subject: subject}, nil
}

func (d *NATSDispatcher) Dispatch(ctx context.Context, event Event) {
	payload, err := sonic.Marshal(&event)
	if err != nil {
		slog.Warn("encoding audit event", "call_id", event.CallID, "error", err)
		return
	}

	// Publish is buffered; Flush hands the record to the server before the
	// dispatch returns to its caller.
	if err := d.conn.Publish(d.subject, payload); err != nil {
		slog.Warn("publishing audit event", "call_id", event.CallID, "error", err)
		return
	}
	if err := d.conn.FlushWithContext(ctx); err != nil {
		slog.Warn("flushing audit event", "call_id", event.CallID, "error", err)
	}
}

func (d *NATSDispatcher) Close() {
	if d.conn != nil {
		d.conn.Close()
	}
}
