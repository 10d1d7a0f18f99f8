package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Frankemsinwa/career-confidence-sub000/internal/domain"
)

func TestCollectionFor(t *testing.T) {
	require.Equal(t, InterviewProgress, CollectionFor(domain.ModeInterview))
	require.Equal(t, PresentationProgress, CollectionFor(domain.ModePresentation))
}

func TestMemoryRoundTripPreservesAttempt(t *testing.T) {
	repo := NewMemoryRepository()
	attempt := sampleAttempt("a-1")

	require.NoError(t, repo.Append(context.Background(), InterviewProgress, attempt))

	loaded, err := repo.LoadAll(context.Background(), InterviewProgress)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, attempt, loaded[0])
}

func TestMemoryAbsentEvaluationSurvivesRoundTrip(t *testing.T) {
	repo := NewMemoryRepository()
	degraded := sampleAttempt("a-2")
	degraded.Evaluation = nil
	degraded.EvaluationError = "evaluation unavailable"

	require.NoError(t, repo.Append(context.Background(), InterviewProgress, degraded))

	loaded, err := repo.LoadAll(context.Background(), InterviewProgress)
	require.NoError(t, err)
	// nil stays nil: a missing evaluation must not come back as a zero score
	require.Nil(t, loaded[0].Evaluation)
	require.Equal(t, "evaluation unavailable", loaded[0].EvaluationError)
}

func TestMemoryAppendsPreserveOrderAndIsolation(t *testing.T) {
	repo := NewMemoryRepository()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Append(context.Background(), InterviewProgress, sampleAttempt(id)))
	}
	require.NoError(t, repo.Append(context.Background(), PresentationProgress, sampleAttempt("p")))

	interview, err := repo.LoadAll(context.Background(), InterviewProgress)
	require.NoError(t, err)
	require.Len(t, interview, 3)
	require.Equal(t, "a", interview[0].ID)
	require.Equal(t, "c", interview[2].ID)

	presentation, err := repo.LoadAll(context.Background(), PresentationProgress)
	require.NoError(t, err)
	require.Len(t, presentation, 1)
}

func TestMemoryLoadAllEmptyCollection(t *testing.T) {
	repo := NewMemoryRepository()
	loaded, err := repo.LoadAll(context.Background(), InterviewProgress)
	require.NoError(t, err)
	require.Empty(t, loaded)
}

func TestSQLiteRoundTrip(t *testing.T) {
	repo, err := OpenSQLite(filepath.Join(t.TempDir(), "attempts.db"))
	require.NoError(t, err)
	defer repo.Close()

	attempt := sampleAttempt("s-1")
	require.NoError(t, repo.Append(context.Background(), InterviewProgress, attempt))
	require.NoError(t, repo.Append(context.Background(), InterviewProgress, sampleAttempt("s-2")))

	loaded, err := repo.LoadAll(context.Background(), InterviewProgress)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, attempt, loaded[0])
	require.Equal(t, "s-2", loaded[1].ID)

	other, err := repo.LoadAll(context.Background(), PresentationProgress)
	require.NoError(t, err)
	require.Empty(t, other)
}

func sampleAttempt(id string) domain.Attempt {
	return domain.Attempt{
		ID:         id,
		Timestamp:  time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Question:   "Tell me about yourself",
		Transcript: "I build backend services",
		Evaluation: &domain.Evaluation{
			Score:      70,
			Strengths:  []string{"concise"},
			Weaknesses: []string{"few specifics"},
		},
		Communication: &domain.CommunicationAnalysis{
			Clarity:        "clear",
			Confidence:     "steady",
			PaceFeedback:   "a touch fast",
			WordsPerMinute: 160,
		},
		DurationSeconds: 42,
		PracticeMode:    domain.ModeInterview,
	}
}
