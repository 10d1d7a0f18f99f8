package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/domain"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/media"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/metrics"
)

// Transcriber turns recorded media into text.
type Transcriber interface {
	Transcribe(ctx context.Context, blob []byte, filename, contentType string) (*TranscriptionResult, error)
}

// TranscriptionResult holds the transcription output.
type TranscriptionResult struct {
	Transcript string  `json:"transcript"`
	LatencyMs  float64 `json:"latency_ms"`
}

// TranscriberRouter dispatches to a named transcription backend.
type TranscriberRouter struct {
	*Router[Transcriber]
}

// NewTranscriberRouter creates a router with registered backends and a fallback.
func NewTranscriberRouter(backends map[string]Transcriber, fallback string) *TranscriberRouter {
	return &TranscriberRouter{Router: NewRouter(backends, fallback)}
}

// Transcribe routes to the named backend and transcribes the media blob.
func (r *TranscriberRouter) Transcribe(ctx context.Context, blob []byte, filename, contentType, backend string) (*TranscriptionResult, error) {
	b, err := r.Route(backend)
	if err != nil {
		return nil, domain.E(domain.KindUnsupported, "no transcription backend", err)
	}
	return b.Transcribe(ctx, blob, filename, contentType)
}

// Default adapts the router to the plain Transcriber interface for callers
// that never pick a backend by name.
func (r *TranscriberRouter) Default() Transcriber {
	return transcriberFunc(func(ctx context.Context, blob []byte, filename, contentType string) (*TranscriptionResult, error) {
		return r.Transcribe(ctx, blob, filename, contentType, "")
	})
}

type transcriberFunc func(ctx context.Context, blob []byte, filename, contentType string) (*TranscriptionResult, error)

func (f transcriberFunc) Transcribe(ctx context.Context, blob []byte, filename, contentType string) (*TranscriptionResult, error) {
	return f(ctx, blob, filename, contentType)
}

// MultipartTranscriptionClient uploads one binary media field to a
// whisper-compatible HTTP endpoint and returns the transcript. The apiKey
// is optional; backends that run locally ignore it.
type MultipartTranscriptionClient struct {
	url      string
	endpoint string
	label    string
	apiKey   string
	client   *http.Client
}

// NewTranscriptionClient creates a client for a whisper.cpp style server
// (/inference endpoint).
func NewTranscriptionClient(url, apiKey string, poolSize int) *MultipartTranscriptionClient {
	return &MultipartTranscriptionClient{
		url:      url,
		endpoint: "/inference",
		label:    "whisper",
		apiKey:   apiKey,
		client:   NewPooledHTTPClient(poolSize, 60*time.Second),
	}
}

// Warmup sends a second of silence to verify the backend is reachable and
// the credentials are accepted. Used at startup for capability probing.
func (c *MultipartTranscriptionClient) Warmup(ctx context.Context) error {
	silence := media.SamplesToWAV(make([]float32, 16000), 16000)
	_, err := c.Transcribe(ctx, silence, "warmup.wav", "audio/wav")
	return err
}

// Transcribe uploads the blob as a single multipart field and returns the
// transcript. Non-2xx statuses are mapped to the transcription error
// taxonomy so callers can show the right hint.
func (c *MultipartTranscriptionClient) Transcribe(ctx context.Context, blob []byte, filename, contentType string) (*TranscriptionResult, error) {
	start := time.Now()

	body, formType, err := buildMultipartMedia(blob, filename, contentType)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url+c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", c.label, err)
	}
	req.Header.Set("Content-Type", formType)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.Errors.WithLabelValues("transcribe", "http").Inc()
		return nil, domain.E(domain.KindTranscription, c.label+" request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.Errors.WithLabelValues("transcribe", "status").Inc()
		return nil, c.statusError(resp)
	}

	var decoded struct {
		Transcript string `json:"transcript"`
		Text       string `json:"text"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, domain.E(domain.KindTranscription, "decode "+c.label+" response", err)
	}
	transcript := decoded.Transcript
	if transcript == "" {
		transcript = decoded.Text
	}

	latency := time.Since(start)
	metrics.StageDuration.WithLabelValues("transcribe").Observe(latency.Seconds())

	return &TranscriptionResult{
		Transcript: transcript,
		LatencyMs:  float64(latency.Milliseconds()),
	}, nil
}

// statusError converts a non-2xx response into a classified error. The
// body is expected to carry {"error": "..."} but may be anything.
func (c *MultipartTranscriptionClient) statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	serviceMsg := string(raw)
	var decoded struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &decoded) == nil && decoded.Error != "" {
		serviceMsg = decoded.Error
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return domain.E(domain.KindTranscription,
			fmt.Sprintf("%s rejected credentials; check the transcription API key configuration: %s", c.label, serviceMsg), nil)
	case resp.StatusCode == http.StatusBadRequest:
		return domain.E(domain.KindTranscription,
			fmt.Sprintf("%s rejected the upload: %s", c.label, serviceMsg), nil)
	default:
		return domain.E(domain.KindTranscription,
			fmt.Sprintf("%s status %d: %s", c.label, resp.StatusCode, serviceMsg), nil)
	}
}

func buildMultipartMedia(blob []byte, filename, contentType string) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err = part.Write(blob); err != nil {
		return nil, "", fmt.Errorf("write media: %w", err)
	}
	if err = writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close writer: %w", err)
	}

	return &body, writer.FormDataContentType(), nil
}
