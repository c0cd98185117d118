package internal

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeOpenAIClient struct {
	uploads   []string
	languages []string
	replies   []string
	err       error
}

func (f *fakeOpenAIClient) CreateTranscription(ctx context.Context, file *os.File, language string) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	f.uploads = append(f.uploads, filepath.Base(file.Name())+":"+string(data))
	f.languages = append(f.languages, language)
	if f.err != nil {
		return "", f.err
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

type fakeCommandRunner struct {
	calls [][]string
}

func (r *fakeCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	switch name {
	case "ffprobe":
		return []byte("120.5\n"), nil
	case "ffmpeg":
		output := args[len(args)-1]
		return nil, os.WriteFile(output, []byte("chunk"), 0644)
	}
	return nil, errors.New("unexpected command " + name)
}

func audioServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWhisperTranscribeSingleUpload(t *testing.T) {
	srv := audioServer(t, "audio-bytes")
	tempDir := t.TempDir()
	client := &fakeOpenAIClient{replies: []string{" hello world "}}
	w := NewWhisper(client, NewAudio(&fakeCommandRunner{}, tempDir, nil), WhisperConfig{Language: "en", TempDir: tempDir}, nil)

	text, err := w.Transcribe(context.Background(), srv.URL+"/videoplayback?mime=audio%2Fwebm")
	require.NoError(t, err)
	assert.Equal(t, " hello world ", text, "single upload is returned unchanged")
	require.Len(t, client.uploads, 1)
	assert.True(t, strings.HasSuffix(client.uploads[0], ".webm:audio-bytes"), client.uploads[0])
	assert.Equal(t, []string{"en"}, client.languages)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "downloaded audio should be removed")
}

func TestWhisperTranscribeSplitsLargeAudio(t *testing.T) {
	srv := audioServer(t, strings.Repeat("a", 25))
	tempDir := t.TempDir()
	runner := &fakeCommandRunner{}
	client := &fakeOpenAIClient{replies: []string{"one", "two", "three"}}
	w := NewWhisper(client, NewAudio(runner, tempDir, nil), WhisperConfig{TempDir: tempDir}, nil)
	w.whisperLimit = 10

	text, err := w.Transcribe(context.Background(), srv.URL+"/a.m4a")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree", text)
	assert.Len(t, client.uploads, 3)
	assert.Equal(t, "ffprobe", runner.calls[0][0])
	assert.Len(t, runner.calls, 4)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "chunks should be removed")
}

func TestWhisperTranscribeMissingKey(t *testing.T) {
	w := NewWhisper(nil, nil, WhisperConfig{}, nil)

	_, err := w.Transcribe(context.Background(), "https://audio")
	assert.ErrorIs(t, err, ErrTranscription)
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestWhisperTranscribeDownloadFailure(t *testing.T) {
	srv := audioServer(t, "")
	w := NewWhisper(&fakeOpenAIClient{}, nil, WhisperConfig{TempDir: t.TempDir()}, nil)

	_, err := w.Transcribe(context.Background(), srv.URL+"/missing")
	require.ErrorIs(t, err, ErrTranscription)
	assert.Contains(t, err.Error(), "404")
}

func TestWhisperTranscribeAPIError(t *testing.T) {
	srv := audioServer(t, "x")
	apiErr := errors.New("rate limited")
	w := NewWhisper(&fakeOpenAIClient{err: apiErr}, nil, WhisperConfig{TempDir: t.TempDir()}, nil)

	_, err := w.Transcribe(context.Background(), srv.URL+"/a.mp3")
	assert.ErrorIs(t, err, ErrTranscription)
	assert.ErrorIs(t, err, apiErr)
}

func TestAudioExtension(t *testing.T) {
	tests := map[string]string{
		"https://rr1.googlevideo.com/videoplayback?mime=audio%2Fwebm&x=1": ".webm",
		"https://rr1.googlevideo.com/videoplayback?mime=audio%2Fmp4":       ".m4a",
		"https://cdn.example.com/file.ogg":                                 ".ogg",
		"https://cdn.example.com/file.bin":                                 ".mp3",
		"::not a url":                                                      ".mp3",
	}
	for in, want := range tests {
		assert.Equal(t, want, audioExtension(in), in)
	}
}

func TestAudioSplit(t *testing.T) {
	tempDir := t.TempDir()
	runner := &fakeCommandRunner{}
	core, logs := observer.New(zap.DebugLevel)
	audio := NewAudio(runner, tempDir, zap.New(core))

	chunks, err := audio.Split(context.Background(), "/downloads/talk.m4a", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(tempDir, "talk_part00.m4a"),
		filepath.Join(tempDir, "talk_part01.m4a"),
		filepath.Join(tempDir, "talk_part02.m4a"),
	}, chunks)

	require.Len(t, runner.calls, 4)
	assert.Equal(t, []string{"-ss", "41", "-t", "41"}, runner.calls[2][3:7], "second part starts after the first")

	split := logs.FilterMessage("splitting audio").All()
	require.Len(t, split, 1)
	assert.Equal(t, int64(3), split[0].ContextMap()["parts"])
	assert.Equal(t, 3, logs.FilterMessage("wrote audio part").Len())
}

func TestAudioSplitFailureCleansUp(t *testing.T) {
	tempDir := t.TempDir()
	runner := &failingSecondCut{}
	audio := NewAudio(runner, tempDir, nil)

	_, err := audio.Split(context.Background(), "/downloads/talk.mp3", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cutting part 2 of 3")
	assert.Contains(t, err.Error(), "Invalid data found")

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type failingSecondCut struct {
	fakeCommandRunner
}

func (r *failingSecondCut) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if name == "ffmpeg" && len(r.calls) == 2 {
		r.calls = append(r.calls, append([]string{name}, args...))
		return []byte("talk.mp3: Invalid data found when processing input\n"), errors.New("exit status 1")
	}
	return r.fakeCommandRunner.Run(ctx, name, args...)
}
