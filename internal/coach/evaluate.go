// Package coach sequences the evaluation of a finished capture and the
// persistence of the resulting attempt.
package coach

import (
	"context"
	"time"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/domain"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/metrics"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/pipeline"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/prompts"
)

// ChatModel is the LLM surface the evaluators need.
type ChatModel interface {
	Chat(ctx context.Context, userMessage, systemPrompt, model, engine string, onToken pipeline.TokenCallback) (*pipeline.LLMResult, error)
}

// Evaluator scores answer content and analyzes delivery through the
// external model.
type Evaluator struct {
	llm    ChatModel
	model  string
	engine string
}

// NewEvaluator creates an evaluator over the given LLM router.
func NewEvaluator(llm ChatModel, model, engine string) *Evaluator {
	return &Evaluator{llm: llm, model: model, engine: engine}
}

// Evaluate submits the answer for content scoring and returns the parsed
// result, score clamped to [0,100].
func (e *Evaluator) Evaluate(ctx context.Context, question, transcript, role, difficulty string) (*domain.Evaluation, error) {
	start := time.Now()
	result, err := e.llm.Chat(ctx, prompts.Evaluate(question, transcript, role, difficulty), prompts.EvaluationSystem, e.model, e.engine, nil)
	if err != nil {
		metrics.Errors.WithLabelValues("evaluate", "llm").Inc()
		return nil, domain.E(domain.KindEvaluation, "content evaluation failed", err)
	}
	metrics.StageDuration.WithLabelValues("evaluate").Observe(time.Since(start).Seconds())

	var ev domain.Evaluation
	if err = pipeline.DecodeStructured(result.Text, &ev); err != nil {
		metrics.Errors.WithLabelValues("evaluate", "decode").Inc()
		return nil, domain.E(domain.KindEvaluation, "evaluation response malformed", err)
	}
	if ev.Score < 0 {
		ev.Score = 0
	}
	if ev.Score > 100 {
		ev.Score = 100
	}
	return &ev, nil
}

// Analyze submits the answer for communication analysis. The returned
// words-per-minute is always the locally recomputed figure, and a zero
// duration yields the designated unavailable pace message.
func (e *Evaluator) Analyze(ctx context.Context, transcript string, durationSeconds int, role, difficulty string) (*domain.CommunicationAnalysis, error) {
	start := time.Now()
	result, err := e.llm.Chat(ctx, prompts.Communication(transcript, durationSeconds, role, difficulty), prompts.EvaluationSystem, e.model, e.engine, nil)
	if err != nil {
		metrics.Errors.WithLabelValues("analyze", "llm").Inc()
		return nil, domain.E(domain.KindEvaluation, "communication analysis failed", err)
	}
	metrics.StageDuration.WithLabelValues("analyze").Observe(time.Since(start).Seconds())

	var ca domain.CommunicationAnalysis
	if err = pipeline.DecodeStructured(result.Text, &ca); err != nil {
		metrics.Errors.WithLabelValues("analyze", "decode").Inc()
		return nil, domain.E(domain.KindEvaluation, "analysis response malformed", err)
	}

	ca.WordsPerMinute = WordsPerMinute(WordCount(transcript), durationSeconds)
	if durationSeconds <= 0 {
		ca.PaceFeedback = PaceUnavailable
	}
	return &ca, nil
}
