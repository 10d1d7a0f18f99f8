// Package prompts formats the natural-language instructions sent to the
// external model. Every prompt demands bare JSON so responses parse into
// a fixed schema.
package prompts

import (
	"fmt"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/domain"
)

// GenerationSystem instructs the model when generating questions or outlines.
const GenerationSystem = "You are an experienced interview and presentation coach. " +
	"Respond with JSON only, no markdown fences, no commentary."

// EvaluationSystem instructs the model when scoring an answer.
const EvaluationSystem = "You are a strict but fair interview coach scoring a candidate's answer. " +
	"Respond with JSON only, no markdown fences, no commentary."

// Questions asks for a numbered set of interview questions.
func Questions(s domain.InterviewSettings) string {
	return fmt.Sprintf(
		"Generate %d %s interview questions for a %s role at %s difficulty. "+
			`Return JSON of the shape {"questions": ["..."]}.`,
		s.QuestionCount, s.InterviewType, s.Role, s.Difficulty)
}

// ReplacementQuestion asks for a single fresh question to swap in for one
// the user skipped or asked to regenerate.
func ReplacementQuestion(s domain.InterviewSettings, previous string) string {
	return fmt.Sprintf(
		"Generate one new %s interview question for a %s role at %s difficulty. "+
			"It must differ from this question: %q. "+
			`Return JSON of the shape {"questions": ["..."]}.`,
		s.InterviewType, s.Role, s.Difficulty, previous)
}

// Outline asks for a presentation outline.
func Outline(s domain.PresentationSettings) string {
	return fmt.Sprintf(
		"Create a presentation outline on %q for an audience of %s, "+
			"sized for %d minutes of speaking. "+
			`Return JSON of the shape {"outline": "..."}.`,
		s.Topic, s.Audience, s.TimeFrameMins)
}

// Evaluate asks for a content score of a transcribed answer.
func Evaluate(question, transcript, role, difficulty string) string {
	return fmt.Sprintf(
		"Question asked: %q\nCandidate role: %s\nDifficulty: %s\n"+
			"Candidate's transcribed answer:\n%s\n\n"+
			"Score the answer's content from 0 to 100 and list strengths and weaknesses. "+
			`Return JSON of the shape {"score": 0, "strengths": ["..."], "weaknesses": ["..."], "detailed_feedback": "..."}.`,
		question, role, difficulty, transcript)
}

// Communication asks for delivery feedback on a transcribed answer.
func Communication(transcript string, durationSeconds int, role, difficulty string) string {
	return fmt.Sprintf(
		"A candidate for a %s role (%s difficulty) spoke for %d seconds. Transcript:\n%s\n\n"+
			"Assess the delivery: clarity, confidence, and speaking pace. "+
			`Return JSON of the shape {"clarity": "...", "confidence": "...", "pace_feedback": "...", "words_per_minute": 0}.`,
		role, difficulty, durationSeconds, transcript)
}
