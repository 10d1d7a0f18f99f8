// Package ws is the live transport for capture sessions: clients stream
// audio frames in, transcripts and session events come back out.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/capture"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/device"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/domain"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/media"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/pipeline"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/probe"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/trace"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16384,
	WriteBufferSize: 16384,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandlerConfig holds the shared backends for all capture connections.
type HandlerConfig struct {
	Transcriber   pipeline.Transcriber
	Handles       *media.HandleRegistry
	Endpoint      media.EndpointConfig
	Capabilities  probe.Capabilities
	MaxConcurrent int
	TraceStore    *trace.Store
}

// Handler manages WebSocket capture connections with admission control.
type Handler struct {
	cfg HandlerConfig
	sem chan struct{}
}

// NewHandler creates a capture handler with shared backends and a
// concurrency limit.
func NewHandler(cfg HandlerConfig) *Handler {
	maxConc := cfg.MaxConcurrent
	if maxConc <= 0 {
		maxConc = 100
	}
	return &Handler{cfg: cfg, sem: make(chan struct{}, maxConc)}
}

// connMetadata is the first text frame sent by the client. The permission
// field reports the client's own hardware outcome; the server treats it
// as the device acquisition result for the connection's lifetime.
type connMetadata struct {
	Mode         string   `json:"mode"` // "speech-to-text" or "media-recording"
	PracticeMode string   `json:"practice_mode"`
	Question     string   `json:"question"`
	SampleRate   int      `json:"sample_rate"`
	Containers   []string `json:"containers"`
	Permission   string   `json:"permission"` // "granted", "denied", "unsupported"
}

// control is a client text frame after metadata.
type control struct {
	Type string `json:"type"` // "start", "stop", "abort"
}

// event is a server-to-client message.
type event struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Transcript string `json:"transcript,omitempty"`
	DurationS  int    `json:"duration_s,omitempty"`
	MediaRef   string `json:"media_ref,omitempty"`
	ElapsedS   int    `json:"elapsed_s,omitempty"`
}

// ServeHTTP upgrades the connection and runs the capture session loop.
// Returns 503 at capacity.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case h.sem <- struct{}{}:
		defer func() { <-h.sem }()
	default:
		http.Error(w, "at capacity", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.runConnection(conn)
}

func (h *Handler) runConnection(conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	meta, err := readMetadata(conn)
	if err != nil {
		slog.Error("read metadata", "error", err)
		return
	}

	sessionID := uuid.NewString()
	tracer := trace.NewTracer(h.cfg.TraceStore, sessionID)
	defer tracer.Close()
	if h.cfg.TraceStore != nil {
		if err = h.cfg.TraceStore.CreateSession(sessionID, meta.PracticeMode); err != nil {
			slog.Warn("trace session create", "error", err)
		}
		defer h.cfg.TraceStore.EndSession(sessionID)
	}

	send := newEventSender(conn)

	// One device acquisition per connection; a denial is terminal until
	// the client reconnects.
	manager := device.NewManager(clientReportedProvider(meta.Permission))
	defer manager.Teardown()

	stream, state, err := manager.Acquire(ctx)
	if state != device.StateGranted {
		send(event{Type: "error", Kind: string(domain.KindOf(err)), Text: err.Error()})
		// Keep the connection open so the client can show its warning and
		// close cleanly, but accept no capture traffic.
		drainUntilClose(conn)
		return
	}

	mode := domain.CaptureMode(meta.Mode)
	if mode == "" {
		mode = domain.CaptureLive
	}
	sampleRate := meta.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}

	driver := capture.NewDriver(h.newStrategy(sampleRate, meta.Containers, send, tracer))

	slog.Info("capture connection open",
		"session_id", sessionID,
		"mode", mode,
		"practice_mode", meta.PracticeMode,
		"sample_rate", sampleRate,
	)

	h.processFrames(ctx, conn, mode, driver, stream, send)

	driver.Abort()
	slog.Info("capture connection closed", "session_id", sessionID)
}

// newStrategy builds the per-session strategy factory handed to the
// capture driver.
func (h *Handler) newStrategy(sampleRate int, containers []string, send func(event), tracer *trace.Tracer) func(domain.CaptureMode) (capture.Strategy, error) {
	return func(mode domain.CaptureMode) (capture.Strategy, error) {
		switch mode {
		case domain.CaptureLive:
			if !h.cfg.Capabilities.LiveCapture {
				return nil, domain.E(domain.KindUnsupported, "live transcription is not available", nil)
			}
			endpoint := h.cfg.Endpoint
			if endpoint.SampleRate == 0 {
				endpoint = media.DefaultEndpointConfig()
			}
			return capture.NewLiveStrategy(capture.LiveConfig{
				Recognizer: h.segmentRecognizer(tracer, endpoint.SampleRate),
				Endpoint:   endpoint,
				SampleRate: sampleRate,
				OnPartial: func(accumulated string) {
					send(event{Type: "partial_transcript", Transcript: accumulated})
				},
			}), nil
		case domain.CaptureRecord:
			if !h.cfg.Capabilities.RecordCapture {
				return nil, domain.E(domain.KindUnsupported, "upload transcription is not available", nil)
			}
			return capture.NewRecordStrategy(capture.RecordConfig{
				Transcriber:         h.cfg.Transcriber,
				Handles:             h.cfg.Handles,
				SupportedContainers: containers,
			}), nil
		default:
			return nil, domain.E(domain.KindUnsupported, "unknown capture mode "+string(mode), nil)
		}
	}
}

// segmentRecognizer wraps the shared transcriber for live segments,
// encoding each one as WAV at the endpoint detector's rate and recording
// a trace span per round trip.
func (h *Handler) segmentRecognizer(tracer *trace.Tracer, sampleRate int) capture.Recognizer {
	return capture.RecognizerFunc(func(ctx context.Context, samples []float32) (string, error) {
		start := time.Now()
		wav := media.SamplesToWAV(samples, sampleRate)
		result, err := h.cfg.Transcriber.Transcribe(ctx, wav, "segment.wav", "audio/wav")

		runID := tracer.StartRun()
		status, errMsg, text := "ok", "", ""
		if err != nil {
			status, errMsg = "error", err.Error()
		} else {
			text = result.Transcript
		}
		tracer.RecordSpan(runID, "transcribe", start, float64(time.Since(start).Milliseconds()), "", text, status, errMsg)
		tracer.EndRun(runID, float64(time.Since(start).Milliseconds()), text, "", status)

		if err != nil {
			return "", err
		}
		return result.Transcript, nil
	})
}

// processFrames reads frames until the connection closes. Binary frames
// are audio; text frames are control messages.
func (h *Handler) processFrames(ctx context.Context, conn *websocket.Conn, mode domain.CaptureMode, driver *capture.Driver, stream *device.Stream, send func(event)) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			slog.Info("connection closed", "error", err)
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if err = driver.Feed(ctx, data); err != nil {
				h.reportCaptureError(driver, send, err)
			}
		case websocket.TextMessage:
			var ctl control
			if err = json.Unmarshal(data, &ctl); err != nil {
				send(event{Type: "error", Text: "malformed control frame"})
				continue
			}
			h.handleControl(ctx, ctl, mode, driver, stream, send)
		}
	}
}

func (h *Handler) handleControl(ctx context.Context, ctl control, mode domain.CaptureMode, driver *capture.Driver, stream *device.Stream, send func(event)) {
	switch ctl.Type {
	case "start":
		if err := stream.Attach(); err != nil {
			send(event{Type: "error", Kind: string(domain.KindCapture), Text: err.Error()})
			return
		}
		if _, err := driver.Start(ctx, mode); err != nil {
			stream.Detach()
			send(event{Type: "error", Kind: string(domain.KindOf(err)), Text: err.Error()})
			return
		}
		send(event{Type: "capture_started"})
	case "stop":
		result, err := driver.Stop(ctx)
		stream.Detach()
		if err != nil {
			// A failed transcription still hands back the media reference
			// so the recording itself is not lost.
			send(event{
				Type:     "error",
				Kind:     string(domain.KindOf(err)),
				Text:     err.Error(),
				MediaRef: result.MediaRef,
			})
			return
		}
		send(event{
			Type:       "capture_complete",
			Transcript: result.Transcript,
			DurationS:  result.DurationSeconds,
			MediaRef:   result.MediaRef,
		})
	case "abort":
		driver.Abort()
		stream.Detach()
		send(event{Type: "capture_aborted"})
	default:
		send(event{Type: "error", Text: "unknown control type " + ctl.Type})
	}
}

func (h *Handler) reportCaptureError(driver *capture.Driver, send func(event), err error) {
	slog.Error("capture frame", "error", err)
	// Recoverable capture errors end the session and leave the driver
	// idle for a fresh start.
	if domain.KindOf(err) == domain.KindCapture {
		driver.Abort()
	}
	send(event{Type: "error", Kind: string(domain.KindOf(err)), Text: err.Error()})
}

func newEventSender(conn *websocket.Conn) func(event) {
	var mu sync.Mutex
	return func(ev event) {
		mu.Lock()
		defer mu.Unlock()
		raw, err := json.Marshal(ev)
		if err != nil {
			return
		}
		if err = conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			slog.Error("write event", "error", err)
		}
	}
}

func readMetadata(conn *websocket.Conn) (*connMetadata, error) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var meta connMetadata
	if err = json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func drainUntilClose(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// clientReportedProvider maps the client's reported hardware outcome to a
// device source provider.
func clientReportedProvider(permission string) device.SourceProvider {
	switch permission {
	case "denied":
		return deniedProvider{}
	case "unsupported":
		return nil
	default:
		return grantedProvider{}
	}
}

type grantedProvider struct{}

func (grantedProvider) Open(ctx context.Context) (device.Tracks, error) {
	return noopTracks{}, nil
}

type deniedProvider struct{}

func (deniedProvider) Open(ctx context.Context) (device.Tracks, error) {
	return nil, domain.E(domain.KindPermissionDenied, "client reported microphone/camera access refused", nil)
}

// noopTracks stands in for hardware tracks that live on the client side;
// disposal is the client's job, the server only mirrors the lifecycle.
type noopTracks struct{}

func (noopTracks) Stop() {}
