package trace

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Transcripts and model output are clipped before storage; the review UI
// only needs a preview.
const clipLen = 500

// writeOp is one pending trace write queued behind the drain goroutine.
type writeOp interface {
	write(s *Store) error
}

type runStart struct {
	runID, sessionID string
}

func (op runStart) write(s *Store) error { return s.InsertRun(op.runID, op.sessionID) }

type runFinish struct {
	runID                        string
	durationMs                   float64
	transcript, feedback, status string
}

func (op runFinish) write(s *Store) error {
	return s.FinishRun(op.runID, op.durationMs, op.transcript, op.feedback, op.status)
}

type spanRecord struct {
	span Span
}

func (op spanRecord) write(s *Store) error { return s.InsertSpan(op.span) }

// Tracer records one rehearsal session's runs and stage spans
// asynchronously via a buffered channel, so tracing never blocks the
// capture or evaluation path. All methods are nil-safe (no-op on nil
// receiver), letting callers trace unconditionally whether or not a
// trace store is configured.
type Tracer struct {
	store     *Store
	sessionID string
	ops       chan writeOp
	done      chan struct{}
}

// NewTracer creates a tracer bound to a session, or nil when no store is
// configured. Must call Close when done.
func NewTracer(store *Store, sessionID string) *Tracer {
	if store == nil {
		return nil
	}
	t := &Tracer{
		store:     store,
		sessionID: sessionID,
		ops:       make(chan writeOp, 64),
		done:      make(chan struct{}),
	}
	go t.drain()
	return t
}

func (t *Tracer) drain() {
	defer close(t.done)
	for op := range t.ops {
		if err := op.write(t.store); err != nil {
			slog.Warn("trace write failed", "error", err)
		}
	}
}

// StartRun begins a new run and returns its ID.
func (t *Tracer) StartRun() string {
	if t == nil {
		return ""
	}
	id := uuid.NewString()
	t.ops <- runStart{runID: id, sessionID: t.sessionID}
	return id
}

// EndRun finalizes a run.
func (t *Tracer) EndRun(runID string, durationMs float64, transcript, feedback, status string) {
	if t == nil {
		return
	}
	t.ops <- runFinish{
		runID:      runID,
		durationMs: durationMs,
		transcript: clip(transcript),
		feedback:   clip(feedback),
		status:     status,
	}
}

// RecordSpan records a completed pipeline stage.
func (t *Tracer) RecordSpan(runID, name string, startedAt time.Time, durationMs float64, input, output, status, errMsg string) {
	if t == nil {
		return
	}
	t.ops <- spanRecord{span: Span{
		ID:         uuid.NewString(),
		RunID:      runID,
		Name:       name,
		StartedAt:  startedAt,
		DurationMs: durationMs,
		Input:      clip(input),
		Output:     clip(output),
		Status:     status,
		Error:      errMsg,
	}}
}

// Close drains pending writes and stops the background goroutine.
func (t *Tracer) Close() {
	if t == nil {
		return
	}
	close(t.ops)
	<-t.done
}

func clip(s string) string {
	if len(s) <= clipLen {
		return s
	}
	return s[:clipLen]
}
