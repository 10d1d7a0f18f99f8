package capture

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/domain"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/media"
)

func TestLiveStopFlushesTrailingSpeech(t *testing.T) {
	var got [][]float32
	var partials []string
	strategy := NewLiveStrategy(LiveConfig{
		Recognizer: RecognizerFunc(func(ctx context.Context, samples []float32) (string, error) {
			got = append(got, samples)
			return "  hello world  ", nil
		}),
		SampleRate: 16000,
		OnPartial:  func(acc string) { partials = append(partials, acc) },
	})

	require.NoError(t, strategy.Start(context.Background()))
	require.NoError(t, strategy.Feed(context.Background(), loudPCM(1600)))

	result, err := strategy.Stop(context.Background())
	require.NoError(t, err)
	require.Equal(t, "hello world", result.Transcript)
	require.Len(t, got, 1)
	require.Equal(t, []string{"hello world"}, partials)
}

func TestLiveNoSpeechIsRecoverableCaptureError(t *testing.T) {
	strategy := NewLiveStrategy(LiveConfig{
		Recognizer: RecognizerFunc(func(ctx context.Context, samples []float32) (string, error) {
			t.Fatal("recognizer should not run on silence")
			return "", nil
		}),
		SampleRate: 16000,
	})

	require.NoError(t, strategy.Feed(context.Background(), make([]byte, 3200))) // silence

	_, err := strategy.Stop(context.Background())
	require.Equal(t, domain.KindCapture, domain.KindOf(err))
	require.Contains(t, err.Error(), "no speech")
}

func TestLiveAccumulatesSegmentsInOrder(t *testing.T) {
	strategy := NewLiveStrategy(LiveConfig{SampleRate: 16000})
	replies := []string{"first part", "", "  second  part "}
	i := 0
	strategy.cfg.Recognizer = RecognizerFunc(func(ctx context.Context, samples []float32) (string, error) {
		text := replies[i]
		i++
		return text, nil
	})

	for range replies {
		require.NoError(t, strategy.recognizeSegment(context.Background(), media.Segment{Samples: []float32{0.5}}))
	}

	// the empty recognition contributed nothing; earlier text is intact
	require.Equal(t, "first part second part", strategy.accumulated())
}

func TestLiveRecognitionFailureClearsTranscript(t *testing.T) {
	boom := errors.New("backend gone")
	calls := 0
	strategy := NewLiveStrategy(LiveConfig{
		Recognizer: RecognizerFunc(func(ctx context.Context, samples []float32) (string, error) {
			calls++
			if calls == 1 {
				return "partial text", nil
			}
			return "", boom
		}),
		SampleRate: 16000,
	})

	require.NoError(t, strategy.recognizeSegment(context.Background(), media.Segment{Samples: []float32{0.5}}))
	require.Equal(t, "partial text", strategy.accumulated())

	err := strategy.recognizeSegment(context.Background(), media.Segment{Samples: []float32{0.5}})
	require.Equal(t, domain.KindCapture, domain.KindOf(err))
	require.ErrorIs(t, err, boom)
	require.Empty(t, strategy.accumulated())
}

func TestLiveDiscardDropsBufferedState(t *testing.T) {
	strategy := NewLiveStrategy(LiveConfig{
		Recognizer: RecognizerFunc(func(ctx context.Context, samples []float32) (string, error) {
			return "kept", nil
		}),
		SampleRate: 16000,
	})
	require.NoError(t, strategy.recognizeSegment(context.Background(), media.Segment{Samples: []float32{0.5}}))

	strategy.Discard()
	require.Empty(t, strategy.accumulated())
}

// loudPCM builds n full-scale 16-bit samples, loud enough to read as speech.
func loudPCM(n int) []byte {
	buf := make([]byte, n*2)
	for i := range n {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(20000)))
	}
	return buf
}
