// Package generate is the boundary to the external model for question and
// outline generation. No caching, no retries: a failure or an empty
// result surfaces immediately to the caller.
package generate

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/domain"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/metrics"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/pipeline"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/prompts"
)

// ErrEmptyGeneration marks a well-formed model response that contained
// zero usable items. Distinct from a transport or service failure.
var ErrEmptyGeneration = errors.New("generation returned no items")

// ChatModel is the LLM surface the proxy needs.
type ChatModel interface {
	Chat(ctx context.Context, userMessage, systemPrompt, model, engine string, onToken pipeline.TokenCallback) (*pipeline.LLMResult, error)
}

// Proxy formats structured parameters into prompts and parses the model's
// structured replies.
type Proxy struct {
	llm    ChatModel
	model  string
	engine string
}

// NewProxy creates a generation proxy over the given LLM router.
func NewProxy(llm ChatModel, model, engine string) *Proxy {
	return &Proxy{llm: llm, model: model, engine: engine}
}

// Questions generates the ordered question set for an interview session.
func (p *Proxy) Questions(ctx context.Context, settings domain.InterviewSettings) ([]string, error) {
	questions, err := p.askQuestions(ctx, prompts.Questions(settings))
	if err != nil {
		return nil, err
	}
	slog.Info("questions generated", "count", len(questions), "role", settings.Role)
	return questions, nil
}

// Replacement generates a single question to swap in at the current
// index. Both the skip and regenerate entry points land here; on an empty
// result the caller keeps the previous question.
func (p *Proxy) Replacement(ctx context.Context, settings domain.InterviewSettings, previous string) (string, error) {
	questions, err := p.askQuestions(ctx, prompts.ReplacementQuestion(settings, previous))
	if err != nil {
		return "", err
	}
	return questions[0], nil
}

// Outline generates a presentation outline.
func (p *Proxy) Outline(ctx context.Context, settings domain.PresentationSettings) (string, error) {
	start := time.Now()
	result, err := p.llm.Chat(ctx, prompts.Outline(settings), prompts.GenerationSystem, p.model, p.engine, nil)
	if err != nil {
		metrics.Errors.WithLabelValues("generate", "llm").Inc()
		return "", domain.E(domain.KindGeneration, "outline generation failed", err)
	}
	metrics.StageDuration.WithLabelValues("generate").Observe(time.Since(start).Seconds())

	var decoded struct {
		Outline string `json:"outline"`
	}
	if err = pipeline.DecodeStructured(result.Text, &decoded); err != nil {
		return "", domain.E(domain.KindGeneration, "outline response malformed", err)
	}
	if strings.TrimSpace(decoded.Outline) == "" {
		metrics.GenerationEmpty.Inc()
		return "", domain.E(domain.KindGeneration, "empty outline", ErrEmptyGeneration)
	}
	return decoded.Outline, nil
}

func (p *Proxy) askQuestions(ctx context.Context, prompt string) ([]string, error) {
	start := time.Now()
	result, err := p.llm.Chat(ctx, prompt, prompts.GenerationSystem, p.model, p.engine, nil)
	if err != nil {
		metrics.Errors.WithLabelValues("generate", "llm").Inc()
		return nil, domain.E(domain.KindGeneration, "question generation failed", err)
	}
	metrics.StageDuration.WithLabelValues("generate").Observe(time.Since(start).Seconds())

	var decoded struct {
		Questions []string `json:"questions"`
	}
	if err = pipeline.DecodeStructured(result.Text, &decoded); err != nil {
		return nil, domain.E(domain.KindGeneration, "question response malformed", err)
	}

	questions := decoded.Questions[:0]
	for _, q := range decoded.Questions {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		metrics.GenerationEmpty.Inc()
		return nil, domain.E(domain.KindGeneration, "the model returned zero questions", ErrEmptyGeneration)
	}
	return questions, nil
}
