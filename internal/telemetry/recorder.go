package telemetry

import (
	"context"
	"sync"
	"time"
)

// Record is one captured sink entry.
type Record struct {
	ToolName string
	CallID   string
	Payload  string
	Duration time.Duration
	Success  bool
	Message  string
	Tags     []Tag
}

// Recorder is a Sink that keeps records in memory. Used by tests and by
// embedders that drain records into their own metrics pipeline.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) ToolResult(toolName, callID, payload string, duration time.Duration, success bool, message string, tags []Tag) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Record{
		ToolName: toolName,
		CallID:   callID,
		Payload:  payload,
		Duration: duration,
		Success:  success,
		Message:  message,
		Tags:     tags,
	})
}

func (r *Recorder) WrapToolResult(ctx context.Context, toolName, callID, payload string, tags []Tag, fn func(context.Context) (string, bool, error)) (string, bool, error) {
	start := time.Now()
	preview, success, err := fn(ctx)
	duration := time.Since(start)

	if err != nil {
		r.ToolResult(toolName, callID, payload, duration, false, err.Error(), tags)
	} else {
		r.ToolResult(toolName, callID, payload, duration, success, preview, tags)
	}
	return preview, success, err
}

// Records returns a copy of everything recorded so far.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}
