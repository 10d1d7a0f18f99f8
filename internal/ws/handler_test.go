package ws

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/media"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/pipeline"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/probe"
)

func TestRecordCaptureOverWebSocket(t *testing.T) {
	handles := media.NewHandleRegistry()
	transcriber := &fakeTranscriber{transcript: "the whole answer"}

	conn := dialHandler(t, NewHandler(HandlerConfig{
		Transcriber:  transcriber,
		Handles:      handles,
		Endpoint:     media.DefaultEndpointConfig(),
		Capabilities: probe.Capabilities{LiveCapture: true, RecordCapture: true},
	}))
	defer conn.Close()

	sendJSON(t, conn, map[string]interface{}{
		"mode":       "media-recording",
		"permission": "granted",
		"containers": []string{"audio/webm"},
	})
	sendJSON(t, conn, map[string]string{"type": "start"})
	require.Equal(t, "capture_started", readEvent(t, conn).Type)

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("frag-one")))
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("frag-two")))
	sendJSON(t, conn, map[string]string{"type": "stop"})

	ev := readEvent(t, conn)
	require.Equal(t, "capture_complete", ev.Type)
	require.Equal(t, "the whole answer", ev.Transcript)
	require.NotEmpty(t, ev.MediaRef)

	require.Equal(t, 1, transcriber.calls)
	require.Equal(t, []byte("frag-onefrag-two"), transcriber.blob)
	blob, _, ok := handles.Get(ev.MediaRef)
	require.True(t, ok)
	require.Equal(t, []byte("frag-onefrag-two"), blob)
}

func TestDeniedPermissionIsTerminalEvent(t *testing.T) {
	conn := dialHandler(t, NewHandler(HandlerConfig{
		Handles:      media.NewHandleRegistry(),
		Capabilities: probe.Capabilities{LiveCapture: true, RecordCapture: true},
	}))
	defer conn.Close()

	sendJSON(t, conn, map[string]string{"mode": "media-recording", "permission": "denied"})

	ev := readEvent(t, conn)
	require.Equal(t, "error", ev.Type)
	require.Equal(t, "permission_denied", ev.Kind)
}

func TestUnsupportedCapabilityRejectsStart(t *testing.T) {
	conn := dialHandler(t, NewHandler(HandlerConfig{
		Handles:      media.NewHandleRegistry(),
		Capabilities: probe.Capabilities{}, // transcription backend down
	}))
	defer conn.Close()

	sendJSON(t, conn, map[string]string{"mode": "media-recording", "permission": "granted"})
	sendJSON(t, conn, map[string]string{"type": "start"})

	ev := readEvent(t, conn)
	require.Equal(t, "error", ev.Type)
	require.Equal(t, "unsupported_capability", ev.Kind)
}

func TestAbortDiscardsSession(t *testing.T) {
	transcriber := &fakeTranscriber{transcript: "unused"}
	handles := media.NewHandleRegistry()
	conn := dialHandler(t, NewHandler(HandlerConfig{
		Transcriber:  transcriber,
		Handles:      handles,
		Capabilities: probe.Capabilities{RecordCapture: true},
	}))
	defer conn.Close()

	sendJSON(t, conn, map[string]string{"mode": "media-recording", "permission": "granted"})
	sendJSON(t, conn, map[string]string{"type": "start"})
	require.Equal(t, "capture_started", readEvent(t, conn).Type)

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("frag")))
	sendJSON(t, conn, map[string]string{"type": "abort"})
	require.Equal(t, "capture_aborted", readEvent(t, conn).Type)

	require.Equal(t, 0, transcriber.calls)
	require.Equal(t, 0, handles.Len())
}

func TestUnknownControlTypeIsReported(t *testing.T) {
	conn := dialHandler(t, NewHandler(HandlerConfig{
		Handles:      media.NewHandleRegistry(),
		Capabilities: probe.Capabilities{RecordCapture: true},
	}))
	defer conn.Close()

	sendJSON(t, conn, map[string]string{"mode": "media-recording", "permission": "granted"})
	sendJSON(t, conn, map[string]string{"type": "rewind"})

	ev := readEvent(t, conn)
	require.Equal(t, "error", ev.Type)
	require.Contains(t, ev.Text, "unknown control type")
}

func TestSegmentRecognizerEncodesAtEndpointRate(t *testing.T) {
	transcriber := &fakeTranscriber{transcript: "ok"}
	h := NewHandler(HandlerConfig{
		Transcriber: transcriber,
		Endpoint:    media.EndpointConfig{SampleRate: 8000},
	})

	rec := h.segmentRecognizer(nil, h.cfg.Endpoint.SampleRate)
	_, err := rec.Recognize(context.Background(), []float32{0.1, 0.2, 0.3})
	require.NoError(t, err)

	// bytes 24-27 of a RIFF header hold the sample rate
	require.GreaterOrEqual(t, len(transcriber.blob), 28)
	rate := binary.LittleEndian.Uint32(transcriber.blob[24:28])
	require.Equal(t, uint32(8000), rate)
}

func dialHandler(t *testing.T, handler *Handler) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func sendJSON(t *testing.T, conn *websocket.Conn, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, raw))
}

func readEvent(t *testing.T, conn *websocket.Conn) event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev event
	require.NoError(t, json.Unmarshal(raw, &ev))
	return ev
}

type fakeTranscriber struct {
	transcript string
	calls      int
	blob       []byte
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, blob []byte, filename, contentType string) (*pipeline.TranscriptionResult, error) {
	f.calls++
	f.blob = blob
	return &pipeline.TranscriptionResult{Transcript: f.transcript}, nil
}
