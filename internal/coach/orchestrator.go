package coach

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/domain"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/metrics"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/store"
	"github.com/Frankemsinwa/career-confidence-sub000/internal/trace"
)

// Submission is one finished capture handed over for evaluation and
// persistence.
type Submission struct {
	Question        string
	Transcript      string
	DurationSeconds int
	MediaRef        string
	Mode            domain.PracticeMode
	Role            string
	Difficulty      string
}

// Report carries the per-step outcomes of one submission. The attempt is
// persisted even when both evaluation steps failed.
type Report struct {
	Attempt       domain.Attempt
	EvaluationErr error
	AnalysisErr   error
}

// Degraded reports whether the attempt was persisted without a content
// evaluation.
func (r Report) Degraded() bool { return r.EvaluationErr != nil }

// Orchestrator sequences a submission: content evaluation first,
// communication analysis second (best-effort), persistence always last
// and exactly once. Resubmitting the same answer produces a second
// attempt record; deduplication is deliberately out of scope.
type Orchestrator struct {
	evaluator *Evaluator
	repo      store.Repository
	tracer    *trace.Tracer
}

// NewOrchestrator creates an orchestrator. tracer may be nil.
func NewOrchestrator(evaluator *Evaluator, repo store.Repository, tracer *trace.Tracer) *Orchestrator {
	return &Orchestrator{evaluator: evaluator, repo: repo, tracer: tracer}
}

// Submit runs the pipeline for one submission. The returned error is
// non-nil only when persistence itself failed; evaluation failures are
// reported through the Report and degrade the stored attempt instead.
func (o *Orchestrator) Submit(ctx context.Context, sub Submission) (Report, error) {
	start := time.Now()
	runID := o.tracer.StartRun()

	attempt := domain.Attempt{
		ID:              uuid.NewString(),
		Timestamp:       time.Now().UTC(),
		Question:        sub.Question,
		Transcript:      sub.Transcript,
		DurationSeconds: sub.DurationSeconds,
		MediaRef:        sub.MediaRef,
		PracticeMode:    sub.Mode,
	}
	report := Report{}

	// Step 1: content evaluation. A failure degrades the attempt to an
	// absent evaluation but never blocks persistence.
	evalStart := time.Now()
	evaluation, err := o.evaluator.Evaluate(ctx, sub.Question, sub.Transcript, sub.Role, sub.Difficulty)
	o.recordSpan(runID, "evaluate", evalStart, sub.Transcript, evalOutput(evaluation), err)
	if err != nil {
		slog.Warn("content evaluation failed", "error", err)
		report.EvaluationErr = err
		attempt.EvaluationError = "evaluation unavailable"
		metrics.AttemptsDegraded.Inc()
	} else {
		attempt.Evaluation = evaluation
	}

	// Step 2: communication analysis, best-effort and independent. Skipped
	// outright when there is nothing to analyze.
	if sub.Transcript != "" || sub.DurationSeconds > 0 {
		analyzeStart := time.Now()
		analysis, aErr := o.evaluator.Analyze(ctx, sub.Transcript, sub.DurationSeconds, sub.Role, sub.Difficulty)
		o.recordSpan(runID, "analyze", analyzeStart, sub.Transcript, analysisOutput(analysis), aErr)
		if aErr != nil {
			slog.Warn("communication analysis failed", "error", aErr)
			report.AnalysisErr = aErr
		} else {
			attempt.Communication = analysis
		}
	}

	// Step 3: persistence, exactly once, regardless of steps 1 and 2.
	persistStart := time.Now()
	err = o.repo.Append(ctx, store.CollectionFor(sub.Mode), attempt)
	o.recordSpan(runID, "persist", persistStart, attempt.ID, "", err)
	if err != nil {
		metrics.Errors.WithLabelValues("persist", "store").Inc()
		o.tracer.EndRun(runID, float64(time.Since(start).Milliseconds()), sub.Transcript, "", "error")
		return report, fmt.Errorf("persist attempt: %w", err)
	}
	metrics.AttemptsTotal.WithLabelValues(string(sub.Mode)).Inc()

	report.Attempt = attempt
	slog.Info("attempt persisted",
		"id", attempt.ID,
		"mode", attempt.PracticeMode,
		"duration_s", attempt.DurationSeconds,
		"degraded", report.Degraded(),
	)
	o.tracer.EndRun(runID, float64(time.Since(start).Milliseconds()), sub.Transcript, evalOutput(attempt.Evaluation), "ok")
	return report, nil
}

func (o *Orchestrator) recordSpan(runID, name string, start time.Time, input, output string, err error) {
	status, errMsg := "ok", ""
	if err != nil {
		status, errMsg = "error", err.Error()
	}
	o.tracer.RecordSpan(runID, name, start, float64(time.Since(start).Milliseconds()), input, output, status, errMsg)
}

func evalOutput(ev *domain.Evaluation) string {
	if ev == nil {
		return ""
	}
	return fmt.Sprintf("score=%d", ev.Score)
}

func analysisOutput(ca *domain.CommunicationAnalysis) string {
	if ca == nil {
		return ""
	}
	return fmt.Sprintf("wpm=%d", ca.WordsPerMinute)
}
