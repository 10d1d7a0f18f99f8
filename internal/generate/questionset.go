package generate

import (
	"fmt"
	"sync"
)

// QuestionSet is the ordered sequence of questions for one interview
// session. Entries are mutable only by index replacement; the set is
// never reordered and nothing is ever removed.
type QuestionSet struct {
	mu        sync.RWMutex
	questions []string
}

// NewQuestionSet wraps a freshly generated, non-empty question list.
func NewQuestionSet(questions []string) (*QuestionSet, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyGeneration
	}
	qs := make([]string, len(questions))
	copy(qs, questions)
	return &QuestionSet{questions: qs}, nil
}

// Len returns the number of questions.
func (q *QuestionSet) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.questions)
}

// At returns the question at index i.
func (q *QuestionSet) At(i int) (string, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if i < 0 || i >= len(q.questions) {
		return "", fmt.Errorf("question index %d out of range [0,%d)", i, len(q.questions))
	}
	return q.questions[i], nil
}

// ReplaceAt swaps the entry at index i for the given question. A blank
// replacement is rejected so an empty generation can never blank out the
// question being shown.
func (q *QuestionSet) ReplaceAt(i int, question string) error {
	if question == "" {
		return ErrEmptyGeneration
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if i < 0 || i >= len(q.questions) {
		return fmt.Errorf("question index %d out of range [0,%d)", i, len(q.questions))
	}
	q.questions[i] = question
	return nil
}

// All returns a copy of the questions in order.
func (q *QuestionSet) All() []string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]string, len(q.questions))
	copy(out, q.questions)
	return out
}
