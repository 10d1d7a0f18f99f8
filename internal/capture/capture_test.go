package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/domain"
)

func TestDriverStopWithoutStartReturnsZeroResult(t *testing.T) {
	driver := NewDriver(func(domain.CaptureMode) (Strategy, error) {
		t.Fatal("strategy factory should not run without a start")
		return nil, nil
	})

	result, err := driver.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, Result{}, result)
}

func TestDriverRejectsSecondStartWhileActive(t *testing.T) {
	driver := NewDriver(factoryFor(&fakeStrategy{}))

	_, err := driver.Start(context.Background(), domain.CaptureLive)
	require.NoError(t, err)
	require.True(t, driver.Active())

	_, err = driver.Start(context.Background(), domain.CaptureLive)
	require.Error(t, err)
	require.Equal(t, domain.KindSessionActive, domain.KindOf(err))
	// the running session survives the rejected start
	require.True(t, driver.Active())
}

func TestDriverConcurrentStartAdmitsOne(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	strategy := &fakeStrategy{onStart: func() { close(entered); <-release }}
	driver := NewDriver(factoryFor(strategy))

	done := make(chan error, 1)
	go func() {
		_, startErr := driver.Start(context.Background(), domain.CaptureLive)
		done <- startErr
	}()

	// the slot is held from the moment the first Start is admitted, not
	// from when its strategy finishes spinning up
	<-entered
	_, err := driver.Start(context.Background(), domain.CaptureLive)
	require.Equal(t, domain.KindSessionActive, domain.KindOf(err))

	close(release)
	require.NoError(t, <-done)
	require.True(t, driver.Active())
}

func TestDriverRejectsStartWhileUploadPending(t *testing.T) {
	release := make(chan struct{})
	stopping := make(chan struct{})
	strategy := &fakeStrategy{
		stopResult: Result{Transcript: "done"},
		onStop: func() {
			close(stopping)
			<-release
		},
	}
	driver := NewDriver(factoryFor(strategy))

	_, err := driver.Start(context.Background(), domain.CaptureRecord)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, stopErr := driver.Stop(context.Background())
		require.NoError(t, stopErr)
	}()

	<-stopping
	_, err = driver.Start(context.Background(), domain.CaptureRecord)
	require.Error(t, err)
	require.Equal(t, domain.KindBusy, domain.KindOf(err))

	close(release)
	<-done

	// finalization over, a new session is allowed again
	_, err = driver.Start(context.Background(), domain.CaptureRecord)
	require.NoError(t, err)
}

func TestDriverFeedWithoutSessionFails(t *testing.T) {
	driver := NewDriver(factoryFor(&fakeStrategy{}))
	err := driver.Feed(context.Background(), []byte{1, 2})
	require.Equal(t, domain.KindCapture, domain.KindOf(err))
}

func TestDriverStopSetsDurationAndStatus(t *testing.T) {
	strategy := &fakeStrategy{stopResult: Result{Transcript: "hello"}}
	driver := NewDriver(factoryFor(strategy))

	session, err := driver.Start(context.Background(), domain.CaptureLive)
	require.NoError(t, err)
	require.Equal(t, StatusActive, session.Status())

	result, err := driver.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, "hello", result.Transcript)
	require.GreaterOrEqual(t, result.DurationSeconds, 0)
	require.Equal(t, StatusComplete, session.Status())
	require.False(t, driver.Active())
}

func TestDriverStopFailureLeavesDriverIdle(t *testing.T) {
	strategy := &fakeStrategy{stopErr: domain.E(domain.KindCapture, "no speech detected", nil)}
	driver := NewDriver(factoryFor(strategy))

	session, err := driver.Start(context.Background(), domain.CaptureLive)
	require.NoError(t, err)

	_, err = driver.Stop(context.Background())
	require.Equal(t, domain.KindCapture, domain.KindOf(err))
	require.Equal(t, StatusFailed, session.Status())
	require.False(t, driver.Active())

	// ready for a fresh attempt
	_, err = driver.Start(context.Background(), domain.CaptureLive)
	require.NoError(t, err)
}

func TestDriverStartFailsWhenStrategyStartFails(t *testing.T) {
	strategy := &fakeStrategy{startErr: errors.New("mic gone")}
	driver := NewDriver(factoryFor(strategy))

	_, err := driver.Start(context.Background(), domain.CaptureLive)
	require.Error(t, err)
	require.False(t, driver.Active())
}

func TestDriverAbortDiscardsSession(t *testing.T) {
	strategy := &fakeStrategy{}
	driver := NewDriver(factoryFor(strategy))

	_, err := driver.Start(context.Background(), domain.CaptureLive)
	require.NoError(t, err)

	driver.Abort()
	require.True(t, strategy.discarded)
	require.False(t, driver.Active())

	// aborting again is a no-op
	driver.Abort()
}

func TestTimerStopWithoutStartReturnsZero(t *testing.T) {
	var timer Timer
	require.Equal(t, 0, timer.Stop())
	require.Equal(t, time.Duration(0), timer.Elapsed())
}

func TestTimerElapsedIsNonDestructive(t *testing.T) {
	var timer Timer
	timer.Start()
	_ = timer.Elapsed()
	_ = timer.Elapsed()
	require.GreaterOrEqual(t, timer.Stop(), 0)
	// a stopped timer reads zero again
	require.Equal(t, 0, timer.Stop())
}

func factoryFor(s *fakeStrategy) func(domain.CaptureMode) (Strategy, error) {
	return func(domain.CaptureMode) (Strategy, error) { return s, nil }
}

type fakeStrategy struct {
	startErr   error
	stopResult Result
	stopErr    error
	onStart    func()
	onStop     func()
	fed        [][]byte
	discarded  bool
}

func (f *fakeStrategy) Start(ctx context.Context) error {
	if f.onStart != nil {
		f.onStart()
	}
	return f.startErr
}

func (f *fakeStrategy) Feed(ctx context.Context, chunk []byte) error {
	f.fed = append(f.fed, chunk)
	return nil
}

func (f *fakeStrategy) Stop(ctx context.Context) (Result, error) {
	if f.onStop != nil {
		f.onStop()
	}
	return f.stopResult, f.stopErr
}

func (f *fakeStrategy) Discard() { f.discarded = true }
