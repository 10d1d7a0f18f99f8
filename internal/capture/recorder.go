package capture

import (
	"bytes"
	"context"
	"strings"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/domain"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/media"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/metrics"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/pipeline"
)

// RecordConfig configures a record-then-transcribe strategy.
type RecordConfig struct {
	Transcriber pipeline.Transcriber
	Handles     *media.HandleRegistry
	// Containers the client can encode; the strategy negotiates one.
	SupportedContainers []string
}

// RecordStrategy buffers the whole take as ordered binary fragments, then
// concatenates them into one playable blob, mints a local playback handle,
// and uploads the bytes for transcription in a single request.
type RecordStrategy struct {
	cfg       RecordConfig
	container string
	chunks    [][]byte
	handle    *media.Handle
}

// NewRecordStrategy creates a record strategy, negotiating the container
// up front.
func NewRecordStrategy(cfg RecordConfig) *RecordStrategy {
	return &RecordStrategy{
		cfg:       cfg,
		container: media.NegotiateContainer(cfg.SupportedContainers),
	}
}

// Container is the negotiated recording container.
func (r *RecordStrategy) Container() string { return r.container }

// Start begins buffering.
func (r *RecordStrategy) Start(ctx context.Context) error {
	return nil
}

// Feed appends one encoded media fragment to the take.
func (r *RecordStrategy) Feed(ctx context.Context, chunk []byte) error {
	metrics.AudioChunks.Inc()
	// Fragments arrive already encoded; keep our own copy, the caller
	// reuses its read buffer.
	c := make([]byte, len(chunk))
	copy(c, chunk)
	r.chunks = append(r.chunks, c)
	return nil
}

// Stop concatenates the fragments, mints the playback handle, and uploads
// once. On transcription failure the media handle survives (the speaker
// keeps their recording) while the transcript is cleared.
func (r *RecordStrategy) Stop(ctx context.Context) (Result, error) {
	if len(r.chunks) == 0 {
		return Result{}, domain.E(domain.KindCapture, "nothing was recorded", nil)
	}

	blob := bytes.Join(r.chunks, nil)
	r.chunks = nil

	// The handle outlives the strategy; the driver discards it when the
	// take is superseded or the session torn down.
	r.handle = r.cfg.Handles.Mint(blob, r.container)

	tr, err := r.cfg.Transcriber.Transcribe(ctx, blob, "recording"+extensionFor(r.container), r.container)
	if err != nil {
		if domain.KindOf(err) == "" {
			err = domain.E(domain.KindTranscription, "transcription upload failed", err)
		}
		return Result{MediaRef: r.handle.ID}, err
	}

	// The uploaded transcript replaces any previous text for this attempt.
	return Result{
		Transcript: strings.TrimSpace(tr.Transcript),
		MediaRef:   r.handle.ID,
	}, nil
}

// Discard abandons the take and releases the playback handle.
func (r *RecordStrategy) Discard() {
	r.chunks = nil
	r.handle.Release()
	r.handle = nil
}

func extensionFor(container string) string {
	switch {
	case strings.HasPrefix(container, "audio/webm"), strings.HasPrefix(container, "video/webm"):
		return ".webm"
	case strings.HasPrefix(container, "audio/wav"):
		return ".wav"
	default:
		return ".bin"
	}
}
