package capture

import (
	"context"
	"strings"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/domain"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/media"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/metrics"
)

// Recognizer turns one completed speech segment into text.
type Recognizer interface {
	Recognize(ctx context.Context, samples []float32) (string, error)
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, samples []float32) (string, error)

func (f RecognizerFunc) Recognize(ctx context.Context, samples []float32) (string, error) {
	return f(ctx, samples)
}

// LiveConfig configures a live capture strategy.
type LiveConfig struct {
	Recognizer Recognizer
	Endpoint   media.EndpointConfig
	SampleRate int // rate of incoming PCM chunks
	// OnPartial is invoked with the accumulated transcript after each
	// finalized segment. May be nil.
	OnPartial func(accumulated string)
}

// LiveStrategy transcribes speech segment by segment while the speaker is
// still talking. Each finalized segment is appended to the accumulated
// transcript; earlier text is never overwritten.
type LiveStrategy struct {
	cfg      LiveConfig
	detector *media.EndpointDetector
	parts    []string
}

// NewLiveStrategy creates a live strategy. The recognizer must be
// non-nil; a missing recognition backend is an unsupported-capability
// condition reported at driver construction, not here.
func NewLiveStrategy(cfg LiveConfig) *LiveStrategy {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Endpoint.SampleRate == 0 {
		cfg.Endpoint = media.DefaultEndpointConfig()
	}
	return &LiveStrategy{cfg: cfg, detector: media.NewEndpointDetector(cfg.Endpoint)}
}

// Start begins listening.
func (l *LiveStrategy) Start(ctx context.Context) error {
	return nil
}

// Feed consumes a PCM chunk. When the endpoint detector closes a segment,
// it is recognized immediately and the final text appended.
func (l *LiveStrategy) Feed(ctx context.Context, chunk []byte) error {
	metrics.AudioChunks.Inc()

	samples := media.DecodePCM(chunk)
	samples = media.Resample(samples, l.cfg.SampleRate, l.cfg.Endpoint.SampleRate)

	seg, ok := l.detector.Feed(samples)
	if !ok {
		return nil
	}
	return l.recognizeSegment(ctx, seg)
}

// Stop flushes any trailing speech, recognizes it, and returns the final
// space-joined transcript. An entirely silent session is a recoverable
// no-speech error that leaves the driver idle.
func (l *LiveStrategy) Stop(ctx context.Context) (Result, error) {
	if seg, ok := l.detector.Flush(); ok {
		if err := l.recognizeSegment(ctx, seg); err != nil {
			return Result{}, err
		}
	}

	transcript := l.accumulated()
	if transcript == "" {
		return Result{}, domain.E(domain.KindCapture, "no speech detected", nil)
	}
	return Result{Transcript: transcript}, nil
}

// Discard drops accumulated text and buffered audio.
func (l *LiveStrategy) Discard() {
	l.detector.Flush()
	l.parts = nil
}

func (l *LiveStrategy) recognizeSegment(ctx context.Context, seg media.Segment) error {
	metrics.SpeechSegments.Inc()

	text, err := l.cfg.Recognizer.Recognize(ctx, seg.Samples)
	if err != nil {
		// Transient recognition failure ends the session but must not
		// crash the caller; accumulated text is dropped with it.
		l.parts = nil
		return domain.E(domain.KindCapture, "live recognition failed", err)
	}
	if text = strings.TrimSpace(text); text == "" {
		return nil
	}

	l.parts = append(l.parts, text)
	if l.cfg.OnPartial != nil {
		l.cfg.OnPartial(l.accumulated())
	}
	return nil
}

// accumulated space-joins the finalized segments with duplicate
// whitespace collapsed.
func (l *LiveStrategy) accumulated() string {
	return strings.Join(strings.Fields(strings.Join(l.parts, " ")), " ")
}
