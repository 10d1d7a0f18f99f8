package capture

import (
	"sync"
	"time"
)

// Timer measures elapsed wall-clock time for one capture session using
// the monotonic clock.
type Timer struct {
	mu      sync.Mutex
	start   time.Time
	running bool
}

// Start records the start instant. Restarting a running timer resets it.
func (t *Timer) Start() {
	t.mu.Lock()
	t.start = time.Now()
	t.running = true
	t.mu.Unlock()
}

// Elapsed returns the time since Start without affecting the final
// duration, for live display while recording. Zero when not running.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return 0
	}
	return time.Since(t.start)
}

// Stop returns the elapsed whole seconds and clears the timer. Stopping a
// timer that was never started returns 0.
func (t *Timer) Stop() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return 0
	}
	elapsed := time.Since(t.start)
	t.running = false
	t.start = time.Time{}
	return int(elapsed.Seconds())
}
