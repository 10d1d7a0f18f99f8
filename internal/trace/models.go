package trace

import "time"

// Session is one rehearsal sitting: a user working through a generated
// question set or a presentation outline.
type Session struct {
	ID        string     `json:"id"`
	Label     string     `json:"label"` // practice mode or submit surface
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	RunCount  int        `json:"run_count,omitempty"`
}

// Run is one answer making its way through the pipeline: capture,
// transcription, evaluation, persistence.
type Run struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs float64   `json:"duration_ms,omitempty"`
	Transcript string    `json:"transcript,omitempty"`
	Feedback   string    `json:"feedback,omitempty"`
	Status     string    `json:"status"`
	SpanCount  int       `json:"span_count,omitempty"`
}

// Span is one pipeline stage within a run.
type Span struct {
	ID         string    `json:"id"`
	RunID      string    `json:"run_id"`
	Name       string    `json:"name"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs float64   `json:"duration_ms"`
	Input      string    `json:"input,omitempty"`
	Output     string    `json:"output,omitempty"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
}
