package audit

import (
	"context"
	"sync"
)

// NopDispatcher drops events. Used when no audit backend is configured.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(context.Context, Event) {}

// Recorder keeps dispatched events in memory, for tests and embedders.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Dispatch(_ context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of everything dispatched so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
