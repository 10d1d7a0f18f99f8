// Package capture implements the speech capture driver: one start-to-stop
// cycle produces a final transcript and a whole-second duration, through
// either live segment recognition or record-then-transcribe. Both
// strategies normalize into the same Result.
package capture

import (
	"context"
	"sync"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/domain"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/metrics"
)

// Status is the lifecycle state of a capture session.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusArmed      Status = "armed"
	StatusActive     Status = "active"
	StatusStopping   Status = "stopping"
	StatusFinalizing Status = "finalizing"
	StatusComplete   Status = "complete"
	StatusFailed     Status = "failed"
)

// Result is the normalized output of one capture session.
type Result struct {
	Transcript      string
	DurationSeconds int
	// MediaRef references the recorded blob for record-then-transcribe
	// sessions; empty for live sessions.
	MediaRef string
}

// Strategy is one way of turning speech into a Result. Feed receives raw
// audio while the session is active; Stop finalizes.
type Strategy interface {
	Start(ctx context.Context) error
	Feed(ctx context.Context, chunk []byte) error
	Stop(ctx context.Context) (Result, error)
	// Discard abandons the session without finalizing, releasing any
	// resources the strategy minted.
	Discard()
}

// Session is one start-to-stop capture cycle.
type Session struct {
	Mode     domain.CaptureMode
	strategy Strategy
	timer    Timer

	mu     sync.Mutex
	status Status
}

// Status returns the session's current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) setStatus(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

// Elapsed is the non-destructive running duration, for a live indicator.
func (s *Session) Elapsed() int {
	return int(s.timer.Elapsed().Seconds())
}

// Driver owns at most one capture session at a time and enforces the
// busy rules: no second session while one is active, and for
// record-then-transcribe, no new session while an upload is pending. The
// most recent finished session is retained until it is superseded by a
// new start or discarded by Abort, so its playback media can be released.
type Driver struct {
	newStrategy func(mode domain.CaptureMode) (Strategy, error)

	mu       sync.Mutex
	current  *Session
	last     *Session // finished session whose resources are still live
	starting bool     // a Start call holds the slot while its strategy spins up
	pending  bool     // a transcription upload is in flight
}

// NewDriver creates a driver. newStrategy builds the strategy for a mode
// or returns a classified error when the mode is unsupported.
func NewDriver(newStrategy func(mode domain.CaptureMode) (Strategy, error)) *Driver {
	return &Driver{newStrategy: newStrategy}
}

// Start begins a new capture session. Starting while a session is active
// is rejected and leaves the running session untouched.
func (d *Driver) Start(ctx context.Context, mode domain.CaptureMode) (*Session, error) {
	// Reserve the slot before letting go of the lock; a concurrent Start
	// must lose even while this one's strategy is still spinning up.
	d.mu.Lock()
	if d.current != nil || d.starting {
		d.mu.Unlock()
		return nil, domain.E(domain.KindSessionActive, "a capture session is already active", nil)
	}
	if d.pending {
		d.mu.Unlock()
		return nil, domain.E(domain.KindBusy, "a transcription upload is still in flight", nil)
	}
	d.starting = true
	d.mu.Unlock()

	strategy, err := d.newStrategy(mode)
	if err != nil {
		d.clearStarting()
		return nil, err
	}

	session := &Session{Mode: mode, strategy: strategy, status: StatusArmed}
	if err = strategy.Start(ctx); err != nil {
		session.setStatus(StatusFailed)
		d.clearStarting()
		return nil, err
	}
	session.timer.Start()
	session.setStatus(StatusActive)

	d.mu.Lock()
	d.current = session
	d.starting = false
	superseded := d.last
	d.last = nil
	d.mu.Unlock()

	// A new take replaces the previous one; its media goes with it.
	if superseded != nil {
		superseded.strategy.Discard()
	}

	metrics.CapturesActive.Inc()
	metrics.CapturesTotal.WithLabelValues(string(mode)).Inc()
	return session, nil
}

func (d *Driver) clearStarting() {
	d.mu.Lock()
	d.starting = false
	d.mu.Unlock()
}

// Feed passes an audio chunk to the active session.
func (d *Driver) Feed(ctx context.Context, chunk []byte) error {
	session := d.active()
	if session == nil {
		return domain.E(domain.KindCapture, "no active capture session", nil)
	}
	return session.strategy.Feed(ctx, chunk)
}

// Stop finalizes the active session and returns its result. Stopping with
// no active session returns a zero Result and no transcript mutation.
// On failure the driver is back at idle, ready for a new attempt.
func (d *Driver) Stop(ctx context.Context) (Result, error) {
	d.mu.Lock()
	session := d.current
	d.current = nil
	if session != nil {
		d.pending = true
	}
	d.mu.Unlock()

	if session == nil {
		return Result{}, nil
	}
	defer func() {
		d.mu.Lock()
		d.pending = false
		d.last = session
		d.mu.Unlock()
		metrics.CapturesActive.Dec()
	}()

	session.setStatus(StatusStopping)
	duration := session.timer.Stop()
	session.setStatus(StatusFinalizing)

	result, err := session.strategy.Stop(ctx)
	result.DurationSeconds = duration
	if err != nil {
		session.setStatus(StatusFailed)
		return result, err
	}
	session.setStatus(StatusComplete)
	return result, nil
}

// Abort discards the active session and the retained finished one,
// releasing their resources. Used when the question changes mid-capture
// and at connection teardown.
func (d *Driver) Abort() {
	d.mu.Lock()
	session := d.current
	finished := d.last
	d.current, d.last = nil, nil
	d.mu.Unlock()

	if finished != nil {
		finished.strategy.Discard()
	}
	if session == nil {
		return
	}
	session.timer.Stop()
	session.strategy.Discard()
	session.setStatus(StatusIdle)
	metrics.CapturesActive.Dec()
}

// Active reports whether a session is currently capturing.
func (d *Driver) Active() bool {
	return d.active() != nil
}

func (d *Driver) active() *Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}
