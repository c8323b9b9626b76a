package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRecorderCapturesResult(t *testing.T) {
	r := NewRecorder()
	tags := []Tag{{Key: "sandbox", Value: "none"}}
	r.ToolResult("shell", "c1", "command=ls", 25*time.Millisecond, true, "ok", tags)

	recs := r.Records()
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	rec := recs[0]
	if rec.ToolName != "shell" || rec.CallID != "c1" || !rec.Success || rec.Message != "ok" {
		t.Fatalf("record = %+v", rec)
	}
	if len(rec.Tags) != 1 || rec.Tags[0].Key != "sandbox" {
		t.Fatalf("tags = %+v", rec.Tags)
	}
}

func TestWrapToolResultRecordsError(t *testing.T) {
	r := NewRecorder()
	wantErr := errors.New("exploded")

	_, _, err := r.WrapToolResult(context.Background(), "shell", "c1", "", nil,
		func(context.Context) (string, bool, error) {
			return "", false, wantErr
		})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want passthrough", err)
	}

	recs := r.Records()
	if len(recs) != 1 || recs[0].Success || recs[0].Message != "exploded" {
		t.Fatalf("records = %+v", recs)
	}
}

func TestWrapToolResultRecordsPreview(t *testing.T) {
	r := NewRecorder()

	preview, success, err := r.WrapToolResult(context.Background(), "shell", "c1", "", nil,
		func(context.Context) (string, bool, error) {
			return "listing", true, nil
		})
	if err != nil || !success || preview != "listing" {
		t.Fatalf("got %q %v %v", preview, success, err)
	}
	if recs := r.Records(); recs[0].Message != "listing" || !recs[0].Success {
		t.Fatalf("records = %+v", recs)
	}
}
