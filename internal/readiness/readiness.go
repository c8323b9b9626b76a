// Package readiness provides the admission gate that mutating tool calls
// wait on before executing. The gate is signaled ready by logic outside the
// dispatch path (end of review, user confirmation, environment sync); the
// dispatcher only ever waits.
package readiness

import (
	"context"
	"sync"
)

// Gate is a one-way readiness latch shared by all mutating tool calls in a
// turn. Zero value is not usable; construct with NewGate.
type Gate struct {
	once  sync.Once
	ready chan struct{}
}

func NewGate() *Gate {
	return &Gate{ready: make(chan struct{})}
}

// NewReadyGate returns a gate that is already open. Used when no admission
// condition applies to the turn.
func NewReadyGate() *Gate {
	g := NewGate()
	g.SignalReady()
	return g
}

// SignalReady opens the gate. Safe to call more than once.
func (g *Gate) SignalReady() {
	g.once.Do(func() { close(g.ready) })
}

// WaitReady blocks until the gate opens or the context is done.
func (g *Gate) WaitReady(ctx context.Context) error {
	select {
	case <-g.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready reports whether the gate has been opened, without blocking.
func (g *Gate) Ready() bool {
	select {
	case <-g.ready:
		return true
	default:
		return false
	}
}
