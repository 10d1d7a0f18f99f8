package device

import "sync"

// Stream is a live capture stream shared read-only by its consumers (the
// preview surface, the active recorder). It does not own its consumers;
// it owns only the hardware tracks, which it stops exactly once.
type Stream struct {
	tracks Tracks

	mu       sync.Mutex
	stopped  bool
	recorder bool
}

func newStream(tracks Tracks) *Stream {
	return &Stream{tracks: tracks}
}

// Attach claims the stream's single recorder slot. Only one recorder may
// be attached at a time.
func (s *Stream) Attach() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recorder {
		return ErrRecorderAttached
	}
	s.recorder = true
	return nil
}

// Detach releases the recorder slot. A detach without an attach is a no-op.
func (s *Stream) Detach() {
	s.mu.Lock()
	s.recorder = false
	s.mu.Unlock()
}

// Stop releases the hardware tracks. Double-stop is tolerated as a no-op,
// and a nil stream may be stopped safely.
func (s *Stream) Stop() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	s.tracks.Stop()
}

// Live reports whether the stream's tracks are still running.
func (s *Stream) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stopped
}
