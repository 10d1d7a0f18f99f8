package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/metrics"
)

// LLMChatClient produces a chat completion from a user message.
type LLMChatClient interface {
	Chat(ctx context.Context, userMessage, systemPrompt, model string, onToken TokenCallback) (*LLMResult, error)
}

// LLMResult holds the complete LLM response with timing.
type LLMResult struct {
	Text               string  `json:"text"`
	LatencyMs          float64 `json:"latency_ms"`
	TimeToFirstTokenMs float64 `json:"ttft_ms"`
}

// TokenCallback is called for each streamed token. May be nil.
type TokenCallback func(token string)

type streamResult struct {
	text string
	ttft time.Time
}

// OpenAIChatClient streams from an OpenAI-compatible /v1/chat/completions
// endpoint. Used as a raw bypass engine for providers the agents SDK does
// not cover (local servers, proxies).
type OpenAIChatClient struct {
	apiKey    string
	url       string
	model     string
	maxTokens int
	client    *http.Client
}

// NewOpenAIChatClient creates a client for an OpenAI-compatible chat API.
func NewOpenAIChatClient(apiKey, url, model string, maxTokens, poolSize int) *OpenAIChatClient {
	return &OpenAIChatClient{
		apiKey:    apiKey,
		url:       url,
		model:     model,
		maxTokens: maxTokens,
		client:    NewPooledHTTPClient(poolSize, 120*time.Second),
	}
}

// Chat sends the messages and streams the response.
func (c *OpenAIChatClient) Chat(ctx context.Context, userMessage, systemPrompt, model string, onToken TokenCallback) (*LLMResult, error) {
	start := time.Now()

	useModel := c.model
	if model != "" {
		useModel = model
	}

	messages := []map[string]string{}
	if systemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": systemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": userMessage})

	body, err := json.Marshal(map[string]any{
		"model":      useModel,
		"messages":   messages,
		"max_tokens": c.maxTokens,
		"stream":     true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.Errors.WithLabelValues("llm", "http").Inc()
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.Errors.WithLabelValues("llm", "status").Inc()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("chat status %d: %s", resp.StatusCode, errBody)
	}

	sr := consumeChatStream(resp.Body, onToken)

	latency := time.Since(start)
	metrics.StageDuration.WithLabelValues("llm").Observe(latency.Seconds())

	ttft := float64(0)
	if !sr.ttft.IsZero() {
		ttft = float64(sr.ttft.Sub(start).Milliseconds())
	}

	return &LLMResult{
		Text:               sr.text,
		LatencyMs:          float64(latency.Milliseconds()),
		TimeToFirstTokenMs: ttft,
	}, nil
}

func consumeChatStream(body io.Reader, onToken TokenCallback) streamResult {
	var sr streamResult
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			return sr
		}
		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if json.Unmarshal([]byte(data), &chunk) != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		token := chunk.Choices[0].Delta.Content
		if token == "" {
			continue
		}
		if sr.ttft.IsZero() {
			sr.ttft = time.Now()
		}
		if onToken != nil {
			onToken(token)
		}
		sr.text += token
	}

	return sr
}
