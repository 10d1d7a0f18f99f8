package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so callers can route them to the right
// user-facing notification without string matching.
type ErrorKind string

const (
	// KindPermissionDenied: hardware access refused. Terminal for the
	// session; only a fresh acquisition re-prompts.
	KindPermissionDenied ErrorKind = "permission_denied"
	// KindUnsupported: the environment lacks a required capability.
	// Disables that feature path only.
	KindUnsupported ErrorKind = "unsupported_capability"
	// KindCapture: recoverable recording/listening failure. The session
	// aborts and the driver returns to idle.
	KindCapture ErrorKind = "capture_error"
	// KindTranscription: upload-based transcription failed. Recorded media
	// is retained, transcript text is cleared.
	KindTranscription ErrorKind = "transcription_failure"
	// KindGeneration: question/outline call failed or returned empty.
	KindGeneration ErrorKind = "generation_failure"
	// KindEvaluation: scoring call failed. Degrade to a placeholder, the
	// attempt is still persisted.
	KindEvaluation ErrorKind = "evaluation_failure"
	// KindConfiguration: missing credentials or similar. Fatal at startup.
	KindConfiguration ErrorKind = "configuration_error"
	// KindBusy: a previous transcription upload is still in flight.
	KindBusy ErrorKind = "busy"
	// KindSessionActive: a capture session is already running.
	KindSessionActive ErrorKind = "session_active"
)

// Error is a classified failure with an optional wrapped cause.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a classified error wrapping cause (cause may be nil).
func E(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// KindOf extracts the ErrorKind from err, or "" if err is not classified.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
