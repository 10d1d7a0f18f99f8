package domain

import "time"

// Evaluation is the content score produced by the external model.
type Evaluation struct {
	Score            int      `json:"score"` // 0-100
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	DetailedFeedback string   `json:"detailed_feedback,omitempty"`
}

// CommunicationAnalysis is the delivery feedback produced by the external
// model. WordsPerMinute is always recomputed locally; the model's own
// arithmetic is not trusted for that figure.
type CommunicationAnalysis struct {
	Clarity        string `json:"clarity"`
	Confidence     string `json:"confidence"`
	PaceFeedback   string `json:"pace_feedback"`
	WordsPerMinute int    `json:"words_per_minute"`
}

// Attempt is one persisted record of a rehearsal answer plus its
// feedback. Once appended to the progress store it is immutable; nothing
// ever mutates or deletes it.
//
// Evaluation is absent (nil) when the scoring call failed; EvaluationError
// then carries the reason. A nil evaluation is distinct from a zero score.
type Attempt struct {
	ID              string                 `json:"id"`
	Timestamp       time.Time              `json:"timestamp"`
	Question        string                 `json:"question"`
	Transcript      string                 `json:"transcript"`
	Evaluation      *Evaluation            `json:"evaluation,omitempty"`
	EvaluationError string                 `json:"evaluation_error,omitempty"`
	Communication   *CommunicationAnalysis `json:"communication,omitempty"`
	DurationSeconds int                    `json:"recording_duration_seconds"`
	MediaRef        string                 `json:"media_ref,omitempty"`
	PracticeMode    PracticeMode           `json:"practice_mode"`
}
