// Package domain holds the shared types and error taxonomy of the
// rehearsal coaching gateway.
package domain

// PracticeMode tags which rehearsal flow produced an attempt.
type PracticeMode string

const (
	ModeInterview    PracticeMode = "interview"
	ModePresentation PracticeMode = "presentation"
)

// CaptureMode selects the speech capture strategy for a session.
type CaptureMode string

const (
	// CaptureLive transcribes speech segment by segment while recording.
	CaptureLive CaptureMode = "speech-to-text"
	// CaptureRecord buffers the whole take and transcribes it in one upload.
	CaptureRecord CaptureMode = "media-recording"
)

// InterviewSettings is the user-supplied configuration for an interview
// rehearsal. Immutable once a session is active.
type InterviewSettings struct {
	Role          string `json:"role"`
	InterviewType string `json:"interview_type"`
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"question_count"`
}

// PresentationSettings is the user-supplied configuration for a
// presentation rehearsal.
type PresentationSettings struct {
	Topic         string `json:"topic"`
	Audience      string `json:"audience"`
	TimeFrameMins int    `json:"time_frame_mins"`
}
