package internal

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolutionErrorMatching(t *testing.T) {
	cause := errors.New("video unavailable")
	err := fmt.Errorf("outer: %w", resolutionErr("https://youtu.be/abc", "yt-dlp failed", cause))

	assert.ErrorIs(t, err, ErrResolution)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrTranscription)

	var resErr *ResolutionError
	if assert.ErrorAs(t, err, &resErr) {
		assert.Equal(t, "https://youtu.be/abc", resErr.URL)
	}
	assert.Contains(t, err.Error(), "yt-dlp failed")
	assert.Contains(t, err.Error(), "video unavailable")
}

func TestTranscriptionErrorMatching(t *testing.T) {
	err := transcriptionErr("https://audio", "", ErrMissingToken)

	assert.ErrorIs(t, err, ErrTranscription)
	assert.ErrorIs(t, err, ErrMissingToken)
	assert.NotErrorIs(t, err, ErrResolution)
	assert.Equal(t, "transcribing audio: missing API token", err.Error())
}

func TestVideoFailureUnwrap(t *testing.T) {
	f := VideoFailure{Index: 2, URL: "u", Err: resolutionErr("u", "gone", nil)}

	assert.ErrorIs(t, f, ErrResolution)
	assert.Equal(t, "video 3 (u): resolving u: gone", f.Error())
}
