// Package device models access to the speaker's capture hardware. A
// Manager performs one acquisition per view lifetime and hands out a
// shared Stream; callers never open hardware themselves.
package device

import (
	"context"
	"errors"
	"sync"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/domain"
)

// State is the terminal outcome of an acquisition.
type State string

const (
	StateGranted     State = "granted"
	StateDenied      State = "denied"
	StateUnsupported State = "unsupported"
)

// Tracks is the set of live hardware tracks behind a stream. Stop releases
// them; implementations may assume it is called at most once.
type Tracks interface {
	Stop()
}

// SourceProvider opens the underlying capture hardware. Open returns a
// classified error for refusal (KindPermissionDenied) or a missing
// capability (KindUnsupported).
type SourceProvider interface {
	Open(ctx context.Context) (Tracks, error)
}

// Manager acquires the capture stream once and caches the outcome. A
// denial is terminal for the manager's lifetime; only a fresh Manager
// (the reload analog) re-prompts.
type Manager struct {
	provider SourceProvider

	mu     sync.Mutex
	done   bool
	state  State
	stream *Stream
	err    error
}

// NewManager creates a manager over the given provider. A nil provider
// means the environment lacks capture entirely.
func NewManager(provider SourceProvider) *Manager {
	return &Manager{provider: provider}
}

// Acquire requests combined audio+video access. The first call performs
// the acquisition; every later call returns the cached outcome.
func (m *Manager) Acquire(ctx context.Context) (*Stream, State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done {
		return m.stream, m.state, m.err
	}
	m.done = true

	if m.provider == nil {
		m.state = StateUnsupported
		m.err = domain.E(domain.KindUnsupported, "no capture device available", nil)
		return nil, m.state, m.err
	}

	tracks, err := m.provider.Open(ctx)
	if err != nil {
		switch domain.KindOf(err) {
		case domain.KindUnsupported:
			m.state = StateUnsupported
		default:
			m.state = StateDenied
			if domain.KindOf(err) == "" {
				err = domain.E(domain.KindPermissionDenied, "capture access refused", err)
			}
		}
		m.err = err
		return nil, m.state, m.err
	}

	m.state = StateGranted
	m.stream = newStream(tracks)
	return m.stream, m.state, nil
}

// Teardown stops the acquired stream, if any. Safe to call whenever the
// owning view goes away, including after a denial.
func (m *Manager) Teardown() {
	m.mu.Lock()
	stream := m.stream
	m.mu.Unlock()
	stream.Stop()
}

// ErrRecorderAttached is returned when a second recorder tries to attach
// to a stream that already has one.
var ErrRecorderAttached = errors.New("a recorder is already attached to this stream")
