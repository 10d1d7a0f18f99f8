// Package store is the append-only progress store: every finished
// submission becomes one immutable Attempt record under a named
// collection, one collection per practice mode. Backends are injected so
// orchestration logic never sees the persistence mechanism.
package store

import (
	"context"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/domain"
)

// Collection names mirror the browser app's local-storage keys.
const (
	InterviewProgress    = "interview_progress"
	PresentationProgress = "presentation_progress"
)

// CollectionFor maps a practice mode to its collection name.
func CollectionFor(mode domain.PracticeMode) string {
	if mode == domain.ModePresentation {
		return PresentationProgress
	}
	return InterviewProgress
}

// Repository is an append-only collection of attempts. Append never
// overwrites; LoadAll returns attempts in insertion order.
type Repository interface {
	Append(ctx context.Context, collection string, attempt domain.Attempt) error
	LoadAll(ctx context.Context, collection string) ([]domain.Attempt, error)
}
