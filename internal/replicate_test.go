package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/replicate/replicate-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createPredictionBody struct {
	Version string         `json:"version"`
	Input   map[string]any `json:"input"`
}

func testReplicateConfig(baseURL string) ReplicateConfig {
	return ReplicateConfig{
		APIToken:     "r8_test",
		Version:      "v123",
		BaseURL:      baseURL,
		Language:     "en",
		ModelSize:    "tiny",
		PollInterval: time.Millisecond,
	}
}

func TestReplicateTranscribeWaitsForPrediction(t *testing.T) {
	var polls atomic.Int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Authorization"), "r8_test")

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/predictions":
			var body createPredictionBody
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "v123", body.Version)
			assert.Equal(t, "https://audio/1", body.Input["audio"])
			assert.Equal(t, "en", body.Input["language"])
			assert.Equal(t, "tiny", body.Input["model"])

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"p1","status":"starting","urls":{"get":"` + srv.URL + `/predictions/p1"}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/predictions/p1":
			if polls.Add(1) < 2 {
				_, _ = w.Write([]byte(`{"id":"p1","status":"processing"}`))
				return
			}
			_, _ = w.Write([]byte(`{"id":"p1","status":"succeeded","output":{"transcription":" We developed a new type of 3D deep learning approach.","segments":[]}}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewReplicateClient(testReplicateConfig(srv.URL))
	text, err := client.Transcribe(context.Background(), "https://audio/1")
	require.NoError(t, err)
	assert.Equal(t, " We developed a new type of 3D deep learning approach.", text, "model text is kept as is")
	assert.EqualValues(t, 2, polls.Load())
}

func TestReplicateTranscribeLooksUpLatestVersion(t *testing.T) {
	var lookups atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/models/openai/whisper":
			lookups.Add(1)
			_, _ = w.Write([]byte(`{"latest_version":{"id":"latest-1"}}`))
		case "/predictions":
			var body createPredictionBody
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "latest-1", body.Version)
			_, _ = w.Write([]byte(`{"id":"p","status":"succeeded","output":"plain text output"}`))
		}
	}))
	defer srv.Close()

	cfg := testReplicateConfig(srv.URL)
	cfg.Version = ""
	client := NewReplicateClient(cfg)

	for range 2 {
		text, err := client.Transcribe(context.Background(), "https://audio")
		require.NoError(t, err)
		assert.Equal(t, "plain text output", text)
	}
	assert.EqualValues(t, 1, lookups.Load())
}

func TestReplicateTranscribeMissingToken(t *testing.T) {
	client := NewReplicateClient(ReplicateConfig{Version: "v"})

	_, err := client.Transcribe(context.Background(), "https://audio")
	assert.ErrorIs(t, err, ErrTranscription)
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestReplicateTranscribeAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"title":"Unauthenticated","detail":"You did not pass a valid authentication token"}`))
	}))
	defer srv.Close()

	_, err := NewReplicateClient(testReplicateConfig(srv.URL)).Transcribe(context.Background(), "https://audio")
	require.ErrorIs(t, err, ErrTranscription)
	assert.Contains(t, err.Error(), "authentication failed")

	var apiErr *replicate.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestReplicateTranscribeModelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"p","status":"failed","error":"audio could not be decoded"}`))
	}))
	defer srv.Close()

	_, err := NewReplicateClient(testReplicateConfig(srv.URL)).Transcribe(context.Background(), "https://audio")
	require.ErrorIs(t, err, ErrTranscription)
	assert.Contains(t, err.Error(), "audio could not be decoded")
}

func TestReplicateTranscribeCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"p","status":"processing"}`))
	}))
	defer srv.Close()

	cfg := testReplicateConfig(srv.URL)
	cfg.Timeout = 20 * time.Millisecond
	_, err := NewReplicateClient(cfg).Transcribe(context.Background(), "https://audio")
	require.ErrorIs(t, err, ErrTranscription)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExtractTranscription(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"whisper object", `{"transcription":"hello","detected_language":"english"}`, "hello", false},
		{"leading space kept", `{"transcription":" hello"}`, " hello", false},
		{"bare string", `"hi there"`, "hi there", false},
		{"empty transcription", `{"transcription":""}`, "", false},
		{"null", `null`, "", true},
		{"unexpected", `[1,2]`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractTranscription(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReplicateTranscribeBadModelName(t *testing.T) {
	cfg := testReplicateConfig("http://127.0.0.1:1")
	cfg.Version = ""
	cfg.Model = "whisper"

	_, err := NewReplicateClient(cfg).Transcribe(context.Background(), "https://audio")
	require.ErrorIs(t, err, ErrTranscription)
	assert.Contains(t, err.Error(), "owner/name")
}
