package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrResolution marks failures to obtain video or playlist metadata
	ErrResolution = errors.New("resolution failed")
	// ErrTranscription marks failures of the remote speech-to-text call
	ErrTranscription = errors.New("transcription failed")
	// ErrMissingToken is returned when no API token is configured for the backend
	ErrMissingToken = errors.New("missing API token")
	// ErrDeclined is returned when the user does not confirm a billed playlist run
	ErrDeclined = errors.New("transcription declined by user")
)

// ResolutionError reports that a video or playlist could not be resolved
type ResolutionError struct {
	URL    string
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("resolving %s", e.URL)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrResolution) match any ResolutionError
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

// TranscriptionError reports that the remote model did not return a transcript
type TranscriptionError struct {
	AudioURL string
	Reason   string
	Err      error
}

func (e *TranscriptionError) Error() string {
	msg := "transcribing audio"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrTranscription) match any TranscriptionError
func (e *TranscriptionError) Is(target error) bool {
	return target == ErrTranscription
}

func resolutionErr(url, reason string, err error) error {
	return &ResolutionError{URL: url, Reason: reason, Err: err}
}

func transcriptionErr(audioURL, reason string, err error) error {
	return &TranscriptionError{AudioURL: audioURL, Reason: reason, Err: err}
}
