package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/nlpodyssey/openai-agents-go/modelsettings"
	"github.com/openai/openai-go/v2/packages/param"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/metrics"
)

// engineEntry holds one registered backend. Exactly one of provider or raw
// is set.
type engineEntry struct {
	provider agents.ModelProvider
	raw      LLMChatClient
	model    string // default model when the caller passes none
}

// AgentLLM routes chat requests to the right provider through the
// openai-agents-go SDK. Engines registered via RegisterRaw bypass the SDK
// and use a direct HTTP client instead.
type AgentLLM struct {
	engines   map[string]engineEntry
	fallback  string
	maxTokens int
}

// NewAgentLLM creates an AgentLLM with the given fallback engine and max tokens.
func NewAgentLLM(fallback string, maxTokens int) *AgentLLM {
	return &AgentLLM{
		engines:   make(map[string]engineEntry),
		fallback:  fallback,
		maxTokens: maxTokens,
	}
}

// Register adds an SDK provider and default model for the given engine name.
func (a *AgentLLM) Register(engine string, provider agents.ModelProvider, defaultModel string) {
	a.engines[engine] = engineEntry{provider: provider, model: defaultModel}
}

// RegisterRaw adds a direct HTTP client for engines that bypass the SDK.
func (a *AgentLLM) RegisterRaw(engine string, client LLMChatClient, defaultModel string) {
	a.engines[engine] = engineEntry{raw: client, model: defaultModel}
}

// Engines returns the names of all registered backends.
func (a *AgentLLM) Engines() []string {
	names := make([]string, 0, len(a.engines))
	for name := range a.engines {
		names = append(names, name)
	}
	return names
}

// Chat streams a completion from the resolved engine. Raw clients bypass
// the SDK entirely.
func (a *AgentLLM) Chat(ctx context.Context, userMessage, systemPrompt, model, engine string, onToken TokenCallback) (*LLMResult, error) {
	entry, ok := a.engines[engine]
	if !ok {
		entry, ok = a.engines[a.fallback]
	}
	if !ok {
		return nil, fmt.Errorf("no llm engine %q", engine)
	}
	if model == "" {
		model = entry.model
	}

	if entry.raw != nil {
		return entry.raw.Chat(ctx, userMessage, systemPrompt, model, onToken)
	}
	return a.runAgent(ctx, entry.provider, userMessage, systemPrompt, model, onToken)
}

func (a *AgentLLM) runAgent(ctx context.Context, provider agents.ModelProvider, userMessage, systemPrompt, model string, onToken TokenCallback) (*LLMResult, error) {
	agent := agents.New("coach").
		WithInstructions(systemPrompt).
		WithModel(model).
		WithModelSettings(modelsettings.ModelSettings{
			MaxTokens: param.NewOpt(int64(a.maxTokens)),
		})

	runner := agents.Runner{Config: agents.RunConfig{
		ModelProvider:   provider,
		MaxTurns:        1,
		TracingDisabled: true,
	}}

	start := time.Now()

	events, errCh, err := runner.RunStreamedChan(ctx, agent, userMessage)
	if err != nil {
		return nil, fmt.Errorf("llm stream start: %w", err)
	}

	var text strings.Builder
	var firstToken time.Time
	for ev := range events {
		raw, ok := ev.(agents.RawResponsesStreamEvent)
		if !ok || raw.Data.Type != "response.output_text.delta" {
			continue
		}
		if firstToken.IsZero() {
			firstToken = time.Now()
		}
		if onToken != nil {
			onToken(raw.Data.Delta)
		}
		text.WriteString(raw.Data.Delta)
	}

	if streamErr := <-errCh; streamErr != nil {
		metrics.Errors.WithLabelValues("llm", "stream").Inc()
		return nil, fmt.Errorf("llm stream: %w", streamErr)
	}

	latency := time.Since(start)
	metrics.StageDuration.WithLabelValues("llm").Observe(latency.Seconds())

	ttft := float64(0)
	if !firstToken.IsZero() {
		ttft = float64(firstToken.Sub(start).Milliseconds())
	}

	return &LLMResult{
		Text:               text.String(),
		LatencyMs:          float64(latency.Milliseconds()),
		TimeToFirstTokenMs: ttft,
	}, nil
}
