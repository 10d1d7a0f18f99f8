package capture

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/domain"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/media"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/pipeline"
)

func TestRecordStopConcatenatesAndUploadsOnce(t *testing.T) {
	handles := media.NewHandleRegistry()
	fake := &fakeTranscriber{transcript: "  the answer  "}
	strategy := NewRecordStrategy(RecordConfig{
		Transcriber:         fake,
		Handles:             handles,
		SupportedContainers: []string{"audio/webm;codecs=opus"},
	})

	require.NoError(t, strategy.Start(context.Background()))
	require.NoError(t, strategy.Feed(context.Background(), []byte("ab")))
	require.NoError(t, strategy.Feed(context.Background(), []byte("cd")))

	result, err := strategy.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, "the answer", result.Transcript)
	require.NotEmpty(t, result.MediaRef)

	require.Equal(t, 1, fake.calls)
	require.Equal(t, []byte("abcd"), fake.blob)
	require.Equal(t, "recording.webm", fake.filename)
	require.Equal(t, "audio/webm;codecs=opus", fake.contentType)

	blob, contentType, ok := handles.Get(result.MediaRef)
	require.True(t, ok)
	require.Equal(t, []byte("abcd"), blob)
	require.Equal(t, "audio/webm;codecs=opus", contentType)
}

func TestRecordFeedCopiesCallerBuffer(t *testing.T) {
	strategy := NewRecordStrategy(RecordConfig{Handles: media.NewHandleRegistry()})
	buf := []byte{1, 2, 3}
	require.NoError(t, strategy.Feed(context.Background(), buf))
	buf[0] = 9
	require.Equal(t, []byte{1, 2, 3}, strategy.chunks[0])
}

func TestRecordStopWithNothingRecordedFails(t *testing.T) {
	strategy := NewRecordStrategy(RecordConfig{Handles: media.NewHandleRegistry()})
	_, err := strategy.Stop(context.Background())
	require.Equal(t, domain.KindCapture, domain.KindOf(err))
}

func TestRecordTranscriptionFailureKeepsMedia(t *testing.T) {
	handles := media.NewHandleRegistry()
	fake := &fakeTranscriber{err: errors.New("503 from backend")}
	strategy := NewRecordStrategy(RecordConfig{
		Transcriber: fake,
		Handles:     handles,
	})

	require.NoError(t, strategy.Feed(context.Background(), []byte("take")))

	result, err := strategy.Stop(context.Background())
	require.Equal(t, domain.KindTranscription, domain.KindOf(err))
	require.Empty(t, result.Transcript)
	require.NotEmpty(t, result.MediaRef)

	// the speaker keeps their recording even though transcription failed
	blob, _, ok := handles.Get(result.MediaRef)
	require.True(t, ok)
	require.Equal(t, []byte("take"), blob)
}

func TestDriverSecondTakeReleasesPreviousHandle(t *testing.T) {
	handles := media.NewHandleRegistry()
	fake := &fakeTranscriber{transcript: "take"}
	driver := NewDriver(func(domain.CaptureMode) (Strategy, error) {
		return NewRecordStrategy(RecordConfig{Transcriber: fake, Handles: handles}), nil
	})
	ctx := context.Background()

	_, err := driver.Start(ctx, domain.CaptureRecord)
	require.NoError(t, err)
	require.NoError(t, driver.Feed(ctx, []byte("one")))
	first, err := driver.Stop(ctx)
	require.NoError(t, err)

	_, err = driver.Start(ctx, domain.CaptureRecord)
	require.NoError(t, err)
	require.NoError(t, driver.Feed(ctx, []byte("two")))
	second, err := driver.Stop(ctx)
	require.NoError(t, err)

	require.NotEqual(t, first.MediaRef, second.MediaRef)
	require.Equal(t, 1, handles.Len())
	_, _, ok := handles.Get(first.MediaRef)
	require.False(t, ok)

	// teardown releases the final take too
	driver.Abort()
	require.Equal(t, 0, handles.Len())
}

func TestDriverFailedUploadMediaReleasedWhenSuperseded(t *testing.T) {
	handles := media.NewHandleRegistry()
	fake := &fakeTranscriber{err: errors.New("503 from backend")}
	driver := NewDriver(func(domain.CaptureMode) (Strategy, error) {
		return NewRecordStrategy(RecordConfig{Transcriber: fake, Handles: handles}), nil
	})
	ctx := context.Background()

	_, err := driver.Start(ctx, domain.CaptureRecord)
	require.NoError(t, err)
	require.NoError(t, driver.Feed(ctx, []byte("one")))
	first, err := driver.Stop(ctx)
	require.Equal(t, domain.KindTranscription, domain.KindOf(err))
	require.NotEmpty(t, first.MediaRef)
	require.Equal(t, 1, handles.Len())

	// the kept recording is released once a fresh take begins
	_, err = driver.Start(ctx, domain.CaptureRecord)
	require.NoError(t, err)
	require.Equal(t, 0, handles.Len())
	driver.Abort()
}

func TestRecordDiscardReleasesHandle(t *testing.T) {
	handles := media.NewHandleRegistry()
	fake := &fakeTranscriber{transcript: "take"}
	strategy := NewRecordStrategy(RecordConfig{Transcriber: fake, Handles: handles})

	require.NoError(t, strategy.Feed(context.Background(), []byte("one")))
	_, err := strategy.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, handles.Len())

	strategy.Discard()
	require.Equal(t, 0, handles.Len())
}

func TestRecordContainerNegotiation(t *testing.T) {
	strategy := NewRecordStrategy(RecordConfig{
		SupportedContainers: []string{"audio/ogg", "audio/webm"},
	})
	require.Equal(t, "audio/webm", strategy.Container())

	strategy = NewRecordStrategy(RecordConfig{})
	require.Equal(t, media.DefaultContainer, strategy.Container())
}

type fakeTranscriber struct {
	transcript  string
	err         error
	calls       int
	blob        []byte
	filename    string
	contentType string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, blob []byte, filename, contentType string) (*pipeline.TranscriptionResult, error) {
	f.calls++
	f.blob = blob
	f.filename = filename
	f.contentType = contentType
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.TranscriptionResult{Transcript: f.transcript}, nil
}
